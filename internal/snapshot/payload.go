package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/lpio/internal/table"
)

// cellCount multiplies shape out, reporting false once the product exceeds limit.
func cellCount(shape []int, limit int64) (int64, bool) {
	if slices.Contains(shape, 0) {
		return 0, true
	}
	n := int64(1)
	for _, d := range shape {
		if d < 0 || int64(d) > limit/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, n <= limit
}

// encodePayload serializes the values of v followed by its null bitmap.
func encodePayload(v table.Variable) (payload []byte, nullSize int, err error) {
	switch a := v.(type) {
	case *table.Array[float64]:
		payload = make([]byte, 0, a.Len()*8)
		for _, x := range a.Data() {
			payload = binary.LittleEndian.AppendUint64(payload, math.Float64bits(x))
		}
	case *table.Array[int64]:
		payload = make([]byte, 0, a.Len()*8)
		for _, x := range a.Data() {
			payload = binary.LittleEndian.AppendUint64(payload, uint64(x))
		}
	case *table.Array[bool]:
		payload = make([]byte, a.Len())
		for i, x := range a.Data() {
			if x {
				payload[i] = 1
			}
		}
	case *table.Array[string]:
		for _, x := range a.Data() {
			payload = binary.AppendUvarint(payload, uint64(len(x)))
			payload = append(payload, x...)
		}
	default:
		return nil, 0, fmt.Errorf("%w: unsupported variable %T", table.ErrTypeMismatch, v)
	}

	if nulls := v.Nulls(); nulls != nil {
		b, err := nulls.ToBytes()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to serialize null bitmap: %w", err)
		}
		payload = append(payload, b...)
		nullSize = len(b)
	}
	return payload, nullSize, nil
}

// decodePayload rebuilds a variable from its metadata and uncompressed payload.
func decodePayload(meta TableMeta, payload []byte) (table.Variable, error) {
	if int64(len(payload)) != meta.RawSize {
		return nil, fmt.Errorf("%w: table %q has %d payload bytes, want %d", ErrCorruptPayload, meta.Name, len(payload), meta.RawSize)
	}
	dt, ok := table.ParseDataType(meta.DType)
	if !ok {
		return nil, fmt.Errorf("%w: table %q has unknown dtype %q", ErrCorruptPayload, meta.Name, meta.DType)
	}
	if meta.NullSize < 0 || meta.NullSize > meta.RawSize {
		return nil, fmt.Errorf("%w: table %q null size %d outside payload", ErrCorruptPayload, meta.Name, meta.NullSize)
	}
	split := len(payload) - int(meta.NullSize)
	values, nullBytes := payload[:split], payload[split:]

	limit := int64(len(values))
	if size := dt.Size(); size > 0 {
		limit /= int64(size)
	}
	limit = min(limit, int64(table.MaxCells))
	n, ok := cellCount(meta.Shape, limit)
	if !ok {
		return nil, fmt.Errorf("%w: table %q shape %v exceeds %d value bytes", ErrCorruptPayload, meta.Name, meta.Shape, len(values))
	}

	var (
		v   table.Variable
		err error
	)
	switch dt {
	case table.Float64:
		v, err = decodeFixed(meta, values, n, 8, func(b []byte) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		})
	case table.Int64:
		v, err = decodeFixed(meta, values, n, 8, func(b []byte) int64 {
			return int64(binary.LittleEndian.Uint64(b))
		})
	case table.Bool:
		v, err = decodeFixed(meta, values, n, 1, func(b []byte) bool {
			return b[0] != 0
		})
	case table.String:
		v, err = decodeStrings(meta, values, n)
	}
	if err != nil {
		return nil, err
	}

	if len(nullBytes) > 0 {
		bm := roaring.New()
		if err := bm.UnmarshalBinary(nullBytes); err != nil {
			return nil, fmt.Errorf("%w: table %q null bitmap: %w", ErrCorruptPayload, meta.Name, err)
		}
		if err := setNulls(v, bm); err != nil {
			return nil, fmt.Errorf("%w: table %q: %w", ErrCorruptPayload, meta.Name, err)
		}
	}
	return v, nil
}

func decodeFixed[T table.Elem](meta TableMeta, values []byte, n int64, size int, decode func([]byte) T) (*table.Array[T], error) {
	if int64(len(values)) != n*int64(size) {
		return nil, fmt.Errorf("%w: table %q has %d value bytes for %d cells", ErrCorruptPayload, meta.Name, len(values), n)
	}
	data := make([]T, n)
	for i := range data {
		data[i] = decode(values[i*size:])
	}
	a, err := table.FromSlice(meta.Dims, meta.Shape, data)
	if err != nil {
		return nil, fmt.Errorf("%w: table %q: %w", ErrCorruptPayload, meta.Name, err)
	}
	return a, nil
}

func decodeStrings(meta TableMeta, values []byte, n int64) (*table.Array[string], error) {
	data := make([]string, n)
	for i := range data {
		l, k := binary.Uvarint(values)
		if k <= 0 || l > uint64(len(values)-k) {
			return nil, fmt.Errorf("%w: table %q string %d truncated", ErrCorruptPayload, meta.Name, i)
		}
		data[i] = string(values[k : k+int(l)])
		values = values[k+int(l):]
	}
	if len(values) != 0 {
		return nil, fmt.Errorf("%w: table %q has %d trailing value bytes", ErrCorruptPayload, meta.Name, len(values))
	}
	a, err := table.FromSlice(meta.Dims, meta.Shape, data)
	if err != nil {
		return nil, fmt.Errorf("%w: table %q: %w", ErrCorruptPayload, meta.Name, err)
	}
	return a, nil
}

func setNulls(v table.Variable, bm *roaring.Bitmap) error {
	switch a := v.(type) {
	case *table.Array[float64]:
		return a.SetNulls(bm)
	case *table.Array[int64]:
		return a.SetNulls(bm)
	case *table.Array[bool]:
		return a.SetNulls(bm)
	case *table.Array[string]:
		return a.SetNulls(bm)
	default:
		return fmt.Errorf("%w: unsupported variable %T", table.ErrTypeMismatch, v)
	}
}
