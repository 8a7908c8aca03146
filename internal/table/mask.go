package table

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Mask is a boolean array stored as the set of valid (true) flat indices.
type Mask struct {
	dims  []string
	shape Shape
	bits  *roaring.Bitmap
}

// NewMask creates an all-false mask.
func NewMask(dims []string, shape Shape) *Mask {
	return &Mask{
		dims:  slices.Clone(dims),
		shape: shape.Clone(),
		bits:  roaring.New(),
	}
}

// NotNull marks every non-null cell of a.
func NotNull[T Elem](a *Array[T]) *Mask {
	m := NewMask(a.dims, a.shape)
	for i := range a.data {
		if !a.IsNull(i) {
			m.bits.Add(uint32(i))
		}
	}
	return m
}

// NotEqual marks every non-null cell of a whose value differs from v.
func NotEqual[T Elem](a *Array[T], v T) *Mask {
	m := NewMask(a.dims, a.shape)
	for i, x := range a.data {
		if x != v && !a.IsNull(i) {
			m.bits.Add(uint32(i))
		}
	}
	return m
}

// Dims returns the dimension names.
func (m *Mask) Dims() []string {
	return m.dims
}

// Shape returns the mask's shape.
func (m *Mask) Shape() Shape {
	return m.shape
}

// Len returns the number of cells covered by the mask.
func (m *Mask) Len() int {
	return m.shape.NumElements()
}

// Test reports whether the cell at a flat index is valid.
func (m *Mask) Test(i int) bool {
	return m.bits.Contains(uint32(i))
}

// Count returns the number of valid cells.
func (m *Mask) Count() int {
	return int(m.bits.GetCardinality())
}

// Indices returns the valid flat indices in ascending order.
func (m *Mask) Indices() []uint32 {
	return m.bits.ToArray()
}

// And intersects two masks over identical dims.
func (m *Mask) And(other *Mask) (*Mask, error) {
	if !slices.Equal(m.dims, other.dims) || !m.shape.Equal(other.shape) {
		return nil, fmt.Errorf("%w: mask %v%v and %v%v", ErrShapeMismatch, m.dims, m.shape, other.dims, other.shape)
	}
	return &Mask{
		dims:  slices.Clone(m.dims),
		shape: m.shape.Clone(),
		bits:  roaring.And(m.bits, other.bits),
	}, nil
}

// Any reduces the given axes: a result cell is valid when any cell along the axes is valid.
func (m *Mask) Any(axes ...string) (*Mask, error) {
	drop := make([]bool, len(m.dims))
	for _, ax := range axes {
		pos := slices.Index(m.dims, ax)
		if pos < 0 {
			return nil, fmt.Errorf("%w: no dimension %q in %v", ErrDimMismatch, ax, m.dims)
		}
		drop[pos] = true
	}

	var (
		outDims  []string
		outShape Shape
	)
	for i, d := range m.dims {
		if !drop[i] {
			outDims = append(outDims, d)
			outShape = append(outShape, m.shape[i])
		}
	}
	out := NewMask(outDims, outShape)
	outStrides := outShape.ComputeStrides()

	coords := make([]int, len(m.shape))
	it := m.bits.Iterator()
	for it.HasNext() {
		unravel(int(it.Next()), m.shape, coords)
		flat, k := 0, 0
		for i, c := range coords {
			if drop[i] {
				continue
			}
			flat += c * outStrides[k]
			k++
		}
		out.bits.Add(uint32(flat))
	}
	return out, nil
}
