package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lpio/internal/blob"
	"github.com/born-ml/lpio/internal/model"
	"github.com/born-ml/lpio/internal/table"
)

var compressions = []Compression{CompressionNone, CompressionLZ4, CompressionZstd}

func writerOptions(c Compression) WriterOptions {
	opts := DefaultWriterOptions()
	opts.Compression = c
	return opts
}

func encodeDataset(t *testing.T, ds *table.Dataset, c Compression) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, writerOptions(c)))
	return buf.Bytes()
}

// mixedDataset holds every element type, nulls, a scalar and a zero-length array.
func mixedDataset(t *testing.T) *table.Dataset {
	t.Helper()
	ds := table.NewDataset()

	f, err := table.FromSlice([]string{"a", "b"}, table.Shape{2, 3}, []float64{1.5, -2, math.Inf(1), math.Inf(-1), math.Copysign(0, -1), math.NaN()})
	require.NoError(t, err)
	f.SetNull(1)
	ds.Set("floats", f)

	ints := table.Vector("i", int64(-1), 0, math.MaxInt64, math.MinInt64)
	ints.SetNull(1)
	ds.Set("ints", ints)

	bools := table.Vector("k", true, false, true)
	bools.SetNull(2)
	ds.Set("bools", bools)

	strs := table.Vector("s", "<=", "", "≥ unicode", strings.Repeat("x", 300))
	strs.SetNull(1)
	ds.Set("strings", strs)

	ds.Set("scalar", table.Scalar(int64(42)))
	empty, err := table.New[float64]([]string{"none"}, table.Shape{0})
	require.NoError(t, err)
	ds.Set("empty", empty)

	ds.SetAttr("name", "mixed")
	ds.SetAttr("note", "")
	return ds
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			ds := mixedDataset(t)
			got, err := DecodeBytes(encodeDataset(t, ds, c), DefaultReaderOptions())
			require.NoError(t, err)
			assert.True(t, ds.Equal(got))
			assert.Equal(t, ds.Names(), got.Names())

			f, err := table.Field[float64](got, "floats")
			require.NoError(t, err)
			assert.True(t, math.Signbit(f.At(4)), "negative zero keeps its sign")
			assert.True(t, f.IsNull(5), "NaN stays null")
		})
	}
}

func TestEncode_CompressesLargeTables(t *testing.T) {
	ds := table.NewDataset()
	zeros, err := table.New[float64]([]string{"i"}, table.Shape{10_000})
	require.NoError(t, err)
	ds.Set("zeros", zeros)

	raw := encodeDataset(t, ds, CompressionNone)
	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		b := encodeDataset(t, ds, c)
		assert.Less(t, len(b), len(raw)/10, c.String())

		info, err := ReadInfo(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, c, info.Compression)
		require.Len(t, info.Header.Tables, 1)
		assert.True(t, info.Header.Tables[0].Compressed)
		assert.Equal(t, int64(80_000), info.Header.Tables[0].RawSize)

		got, err := DecodeBytes(b, DefaultReaderOptions())
		require.NoError(t, err)
		assert.True(t, ds.Equal(got))
	}
}

func TestEncode_Layout(t *testing.T) {
	b := encodeDataset(t, mixedDataset(t), CompressionNone)

	assert.Equal(t, MagicBytes, string(b[0:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(b[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[8:12]))

	info, err := ReadInfo(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Zero(t, info.DataOffset()%HeaderAlignment)
	assert.Equal(t, int64(len(b)), info.DataOffset()+info.DataSize)
	assert.Equal(t, lpioVersion, info.Header.LpioVersion)
	assert.Equal(t, "mixed", info.Header.Attrs["name"])

	// Tables are laid out back to back in dataset order.
	var offset int64
	for _, tm := range info.Header.Tables {
		assert.Equal(t, offset, tm.Offset, tm.Name)
		offset += tm.Size
	}
	assert.Equal(t, info.DataSize, offset)
}

func TestDecode_Corruption(t *testing.T) {
	good := encodeDataset(t, mixedDataset(t), CompressionNone)
	info, err := ReadInfo(bytes.NewReader(good))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrInvalidMagic},
		{"bad version", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:8], 9); return b }, ErrUnsupportedVersion},
		{"both compression flags", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:12], FlagCompressedLZ4|FlagCompressedZstd)
			return b
		}, ErrCorruptPayload},
		{"huge header", func(b []byte) []byte { binary.LittleEndian.PutUint64(b[16:24], MaxHeaderSize+1); return b }, ErrHeaderTooLarge},
		{"flipped data byte", func(b []byte) []byte { b[info.DataOffset()] ^= 0xFF; return b }, ErrChecksumMismatch},
		{"truncated data", func(b []byte) []byte { return b[:len(b)-1] }, ErrTruncated},
		{"truncated fixed header", func(b []byte) []byte { return b[:10] }, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(bytes.Clone(good))
			_, err := DecodeBytes(b, DefaultReaderOptions())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_SkipChecksum(t *testing.T) {
	ds := table.NewDataset()
	ds.Set("v", table.Vector("i", 1.0, 2.0))
	b := encodeDataset(t, ds, CompressionNone)

	// Corrupt the stored checksum only.
	b[ChecksumOffset] ^= 0xFF
	_, err := DecodeBytes(b, DefaultReaderOptions())
	require.ErrorIs(t, err, ErrChecksumMismatch)

	opts := DefaultReaderOptions()
	opts.SkipChecksumValidation = true
	got, err := DecodeBytes(b, opts)
	require.NoError(t, err)
	assert.True(t, ds.Equal(got))
}

// assemble lays out a snapshot from a hand-written header and data section.
func assemble(t *testing.T, c Compression, tables []TableMeta, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(Header{FormatVersion: FormatVersion, Tables: tables})
	require.NoError(t, err)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], c.flags())
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := sha256.Sum256(data)
	copy(fixed[ChecksumOffset:], sum[:])

	b := append(fixed, headerJSON...)
	b = append(b, make([]byte, alignedDataOffset(int64(len(headerJSON)))-int64(len(b)))...)
	return append(b, data...)
}

func TestDecode_InflatedRawSize(t *testing.T) {
	raw := make([]byte, 64)
	lz4Block, ok := compressPayload(raw, CompressionLZ4)
	require.True(t, ok)
	zstdBlock, ok := compressPayload(raw, CompressionZstd)
	require.True(t, ok)

	tests := []struct {
		name    string
		c       Compression
		block   []byte
		shape   []int
		rawSize int64
		level   ValidationLevel
	}{
		{"zstd beyond cell limit", CompressionZstd, zstdBlock, []int{1 << 37}, 8 << 37, ValidationStrict},
		{"lz4 beyond cell limit", CompressionLZ4, lz4Block, []int{1 << 37}, 8 << 37, ValidationStrict},
		{"zstd beyond cell limit unvalidated", CompressionZstd, zstdBlock, []int{1 << 37}, 8 << 37, ValidationNone},
		{"negative raw size unvalidated", CompressionZstd, zstdBlock, []int{8}, -1, ValidationNone},
		{"zstd short block", CompressionZstd, zstdBlock, []int{1 << 28}, 8 << 28, ValidationStrict},
		{"lz4 short block", CompressionLZ4, lz4Block, []int{1 << 28}, 8 << 28, ValidationStrict},
		{"string table beyond cell limit", CompressionZstd, zstdBlock, []int{1 << 33}, 1 << 34, ValidationStrict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dtype := table.Float64.String()
			if strings.HasPrefix(tt.name, "string") {
				dtype = table.String.String()
			}
			meta := TableMeta{
				Name:       "v",
				DType:      dtype,
				Dims:       []string{"i"},
				Shape:      tt.shape,
				Size:       int64(len(tt.block)),
				RawSize:    tt.rawSize,
				Compressed: true,
			}
			b := assemble(t, tt.c, []TableMeta{meta}, tt.block)

			opts := DefaultReaderOptions()
			opts.ValidationLevel = tt.level
			_, err := DecodeBytes(b, opts)
			assert.ErrorIs(t, err, ErrCorruptPayload)
		})
	}
}

func TestEncode_RejectsBadNames(t *testing.T) {
	ds := table.NewDataset()
	ds.Set("bad\x00name", table.Vector("i", 1.0))
	err := Encode(&bytes.Buffer{}, ds, DefaultWriterOptions())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidTableName)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.lpsn")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than nothing"), 0o600))

	ds := mixedDataset(t)
	require.NoError(t, WriteFile(path, ds, DefaultWriterOptions()))

	got, err := ReadFile(path, DefaultReaderOptions())
	require.NoError(t, err)
	assert.True(t, ds.Equal(got))

	info, err := ReadFileInfo(path)
	require.NoError(t, err)
	assert.Len(t, info.Header.Tables, ds.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.lpsn"), DefaultReaderOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func raggedModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.Sample()
	x, err := table.Field[int64](m.Variables, "x")
	require.NoError(t, err)

	dims := []string{"row", "d_term"}
	coeffs, err := table.FromSlice(dims, table.Shape{2, 1}, []float64{1, 1})
	require.NoError(t, err)
	vars, err := table.FromSlice(dims, table.Shape{2, 1}, []int64{x.At(0), model.Sentinel})
	require.NoError(t, err)
	_, err = m.AddConstraints("d", coeffs, vars,
		table.Vector("row", model.SignLessEqual, model.SignGreaterEqual),
		table.Vector("row", 3, 4.0))
	require.NoError(t, err)
	return m
}

func TestModel_RoundTrip(t *testing.T) {
	models := map[string]func(t *testing.T) *model.Model{
		"sample": func(*testing.T) *model.Model { return model.Sample() },
		"empty":  func(*testing.T) *model.Model { return model.New() },
		"solved": func(*testing.T) *model.Model {
			m := model.Sample()
			m.Status = "ok"
			m.ObjectiveValue = 12.5
			return m
		},
		"no valid objective terms": func(t *testing.T) *model.Model {
			m := model.Sample()
			e, err := model.NewLinearExpression(
				table.Vector(model.ObjectiveTermDim, 1.0),
				table.Vector(model.ObjectiveTermDim, model.Sentinel))
			require.NoError(t, err)
			require.NoError(t, m.SetObjective(e))
			return m
		},
		"ragged": raggedModel,
	}

	for name, build := range models {
		for _, c := range compressions {
			t.Run(name+"/"+c.String(), func(t *testing.T) {
				m := build(t)
				path := filepath.Join(t.TempDir(), "model.lpsn")
				require.NoError(t, WriteModel(path, m, writerOptions(c)))

				got, err := ReadModel(path, DefaultReaderOptions())
				require.NoError(t, err)
				assert.True(t, m.Equal(got))
				assert.NoError(t, got.Validate())
			})
		}
	}
}

func TestModel_SaveLoadBlob(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStore()
	m := model.Sample()

	require.NoError(t, SaveModel(ctx, store, "runs/sample.lpsn", m, DefaultWriterOptions()))
	got, err := LoadModel(ctx, store, "runs/sample.lpsn", DefaultReaderOptions())
	require.NoError(t, err)
	assert.True(t, m.Equal(got))

	_, err = LoadModel(ctx, store, "runs/missing.lpsn", DefaultReaderOptions())
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestModel_MissingCategory(t *testing.T) {
	ds, err := model.Pack(model.Sample())
	require.NoError(t, err)
	ds.SetAttr(model.CategoriesAttr, "variables,binaries")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds, DefaultWriterOptions()))

	_, err = DecodeModel(&buf, DefaultReaderOptions())
	assert.ErrorIs(t, err, model.ErrMissingData)
	var mk *model.MissingKeyError
	require.ErrorAs(t, err, &mk)
	assert.Equal(t, "category", mk.Kind)
	assert.Equal(t, "variables_lower_bound", mk.Key)
}

func TestModel_MissingAttribute(t *testing.T) {
	ds, err := model.Pack(model.Sample())
	require.NoError(t, err)
	stripped := table.NewDataset()
	for _, name := range ds.Names() {
		v, _ := ds.Get(name)
		stripped.Set(name, v)
	}
	for k, v := range ds.Attrs() {
		if k != "status" {
			stripped.SetAttr(k, v)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, stripped, DefaultWriterOptions()))
	_, err = DecodeModel(&buf, DefaultReaderOptions())
	assert.ErrorIs(t, err, model.ErrMissingData)
}

func TestParseCompression(t *testing.T) {
	for _, c := range compressions {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got)
	_, err = ParseCompression("gzip")
	assert.Error(t, err)
}
