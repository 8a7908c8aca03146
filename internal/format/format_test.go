package format

import (
	"fmt"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lpio/internal/parallel"
	"github.com/born-ml/lpio/internal/table"
)

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "+1.000000"},
		{-2.5, "-2.500000"},
		{0, "+0.000000"},
		{math.Copysign(0, -1), "-0.000000"},
		{1e20, "+100000000000000000000.000000"},
		{-1e-9, "-0.000000"},
		{math.Inf(1), "+inf"},
		{math.Inf(-1), "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendFloat(nil, tt.in)))
		})
	}
}

func TestAppendFloat_MatchesPrintf(t *testing.T) {
	for _, f := range []float64{3, -3, 0.1, 123456.789, -0.000001, 7.25e-7} {
		assert.Equal(t, fmt.Sprintf("%+f", f), string(AppendFloat(nil, f)))
	}
}

func TestFloatsNullIsZero(t *testing.T) {
	a := table.Vector("i", 2.0, math.NaN(), -1)
	a.SetNull(2)

	got := New(parallel.Sequential()).Floats(a)
	assert.Equal(t, []string{"+2.000000", "+0.000000", "+0.000000"}, got.Data())
	assert.Equal(t, []string{"i"}, got.Dims())
}

func TestInts(t *testing.T) {
	a := table.Vector("i", int64(0), 17, -1)
	a.SetNull(1)

	got := New(parallel.Sequential()).Ints(a)
	assert.Equal(t, []string{"0", "0", "-1"}, got.Data())
}

func TestJoinBroadcast(t *testing.T) {
	p := New(parallel.Sequential())
	con := table.Vector("con", "a", "b")
	terms, err := table.FromSlice([]string{"con", "t"}, table.Shape{2, 2}, []string{"1", "2", "3", "4"})
	require.NoError(t, err)

	got, err := p.Join(Lit("c"), con, Lit(":"), terms)
	require.NoError(t, err)
	assert.Equal(t, []string{"con", "t"}, got.Dims())
	assert.Equal(t, []string{"ca:1", "ca:2", "cb:3", "cb:4"}, got.Data())

	_, err = p.Join(con, table.Vector("con", "x"))
	require.ErrorIs(t, err, table.ErrShapeMismatch)
}

func TestJoinTransposed(t *testing.T) {
	p := New(parallel.Sequential())
	a, err := table.FromSlice([]string{"i", "j"}, table.Shape{2, 2}, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	b, err := table.FromSlice([]string{"j", "i"}, table.Shape{2, 2}, []string{"1", "2", "3", "4"})
	require.NoError(t, err)

	got, err := p.Join(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b3", "c2", "d4"}, got.Data())
}

func TestWhere(t *testing.T) {
	a := table.Vector("i", "x", "y", "z")
	mask := table.NotEqual(table.Vector("i", int64(1), -1, 2), -1)

	got, err := Where(a, mask)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "", "z"}, got.Data())
	assert.Equal(t, []string{"x", "y", "z"}, a.Data(), "input is not modified")

	_, err = Where(a, table.NewMask([]string{"j"}, table.Shape{3}))
	require.ErrorIs(t, err, table.ErrShapeMismatch)
}

func TestReduceConcat(t *testing.T) {
	a, err := table.FromSlice([]string{"con", "t"}, table.Shape{3, 3}, []string{
		"a", "", "b",
		"", "", "",
		"c", "d", "e",
	})
	require.NoError(t, err)

	got, err := ReduceConcat(a, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"con"}, got.Dims())
	assert.Equal(t, []string{"ab", "", "cde"}, got.Data())

	first, err := ReduceConcat(a, "con")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac", "d", "be"}, first.Data())

	_, err = ReduceConcat(a, "missing")
	require.ErrorIs(t, err, table.ErrDimMismatch)
}

func TestReduceConcatEmptyTermAxis(t *testing.T) {
	a, err := table.New[string]([]string{"con", "t"}, table.Shape{2, 0})
	require.NoError(t, err)

	got, err := ReduceConcat(a, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, got.Data())
}

func TestParallelMatchesSequential(t *testing.T) {
	n := 10000
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)*0.37 - 1000
	}
	a := table.Vector("i", data...)

	seq := New(parallel.Sequential()).Floats(a)
	par := New(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}).Floats(a)
	assert.Equal(t, seq.Data(), par.Data())

	token := regexp.MustCompile(`^[+-]\d+\.\d{6}$`)
	for _, s := range par.Data() {
		require.Regexp(t, token, s)
	}
}
