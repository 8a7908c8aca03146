package format

import (
	"math"
	"strconv"

	"github.com/born-ml/lpio/internal/parallel"
	"github.com/born-ml/lpio/internal/table"
)

// Formatter runs the elementwise conversions with a shared parallelism config.
type Formatter struct {
	cfg parallel.Config
}

// New creates a Formatter.
func New(cfg parallel.Config) *Formatter {
	return &Formatter{cfg: cfg}
}

// AppendFloat appends f with an explicit sign and six fractional digits (printf "%+f").
// Infinities render as "+inf" and "-inf".
func AppendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(dst, "+inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	case math.IsNaN(f):
		return append(dst, "+nan"...)
	}
	if !math.Signbit(f) {
		dst = append(dst, '+')
	}
	return strconv.AppendFloat(dst, f, 'f', 6, 64)
}

// Floats renders every cell with AppendFloat. Null cells render as zero.
func (p *Formatter) Floats(a *table.Array[float64]) *table.Array[string] {
	out := mustNew[string](a.Dims(), a.Shape())
	src, dst := a.Data(), out.Data()

	parallel.ForChunks(len(src), func(s, e int) {
		buf := make([]byte, 0, 32)
		for i := s; i < e; i++ {
			v := src[i]
			if a.IsNull(i) {
				v = 0
			}
			buf = AppendFloat(buf[:0], v)
			dst[i] = string(buf)
		}
	}, p.cfg)

	return out
}

// Ints renders every cell as a plain decimal integer. Null cells render as "0".
func (p *Formatter) Ints(a *table.Array[int64]) *table.Array[string] {
	out := mustNew[string](a.Dims(), a.Shape())
	src, dst := a.Data(), out.Data()

	parallel.For(len(src), func(i int) {
		v := src[i]
		if a.IsNull(i) {
			v = 0
		}
		dst[i] = strconv.FormatInt(v, 10)
	}, p.cfg)

	return out
}

// Lit wraps a constant string so it broadcasts across every cell in Join.
func Lit(s string) *table.Array[string] {
	return table.Scalar(s)
}

// mustNew allocates an array whose dims and shape come from an existing, already validated array.
func mustNew[T table.Elem](dims []string, shape table.Shape) *table.Array[T] {
	a, err := table.New[T](dims, shape)
	if err != nil {
		panic(err)
	}
	return a
}
