package table

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// MaxCells bounds the number of cells of one array; null and validity bitmaps index cells with uint32.
const MaxCells = math.MaxUint32

// Variable is the type-erased view of an Array shared by datasets and codecs.
type Variable interface {
	Dims() []string
	Shape() Shape
	DType() DataType
	Len() int
	// Nulls returns the bitmap of null cells, or nil when no cell is null.
	Nulls() *roaring.Bitmap
	CloneVariable() Variable
	EqualVariable(other Variable) bool
}

// Array is a dense row-major array with named dimensions and a null bitmap.
// A cell is null when its index is in the bitmap; float cells holding NaN are null as well.
type Array[T Elem] struct {
	dims  []string
	shape Shape
	data  []T
	nulls *roaring.Bitmap
}

// New creates a zero-filled array.
func New[T Elem](dims []string, shape Shape) (*Array[T], error) {
	if err := checkDims(dims, shape); err != nil {
		return nil, err
	}
	return &Array[T]{
		dims:  slices.Clone(dims),
		shape: shape.Clone(),
		data:  make([]T, shape.NumElements()),
	}, nil
}

// FromSlice wraps data without copying. len(data) must match the shape.
func FromSlice[T Elem](dims []string, shape Shape, data []T) (*Array[T], error) {
	if err := checkDims(dims, shape); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return &Array[T]{
		dims:  slices.Clone(dims),
		shape: shape.Clone(),
		data:  data,
	}, nil
}

// Vector is shorthand for a one-dimensional array.
func Vector[T Elem](dim string, data ...T) *Array[T] {
	return &Array[T]{
		dims:  []string{dim},
		shape: Shape{len(data)},
		data:  data,
	}
}

// Scalar creates a zero-dimensional array. Scalars broadcast against any dims.
func Scalar[T Elem](v T) *Array[T] {
	return &Array[T]{data: []T{v}}
}

func checkDims(dims []string, shape Shape) error {
	if len(dims) != len(shape) {
		return fmt.Errorf("%w: %d dims for shape %v", ErrDimMismatch, len(dims), shape)
	}
	if err := shape.Validate(); err != nil {
		return fmt.Errorf("invalid shape: %w", err)
	}
	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if _, ok := seen[d]; ok {
			return fmt.Errorf("%w: dimension %q repeated", ErrDimMismatch, d)
		}
		seen[d] = struct{}{}
	}
	if shape.NumElements() > MaxCells {
		return ErrTooLarge
	}
	return nil
}

// Dims returns the dimension names.
func (a *Array[T]) Dims() []string {
	return a.dims
}

// Shape returns the array's shape.
func (a *Array[T]) Shape() Shape {
	return a.shape
}

// DType returns the runtime element type.
func (a *Array[T]) DType() DataType {
	return inferDataType[T]()
}

// Len returns the number of cells.
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Data returns the underlying row-major storage.
func (a *Array[T]) Data() []T {
	return a.data
}

// DimLens returns the dimensions paired with their lengths.
func (a *Array[T]) DimLens() []Dim {
	out := make([]Dim, len(a.dims))
	for i, name := range a.dims {
		out[i] = Dim{Name: name, Len: a.shape[i]}
	}
	return out
}

// Axis returns the position of a named dimension, or -1.
func (a *Array[T]) Axis(name string) int {
	return slices.Index(a.dims, name)
}

// At returns the value at a flat index, ignoring nulls.
func (a *Array[T]) At(i int) T {
	return a.data[i]
}

// Get returns the value at the given coordinates and whether the cell is non-null.
func (a *Array[T]) Get(coords ...int) (T, bool) {
	if len(coords) != len(a.shape) {
		panic(fmt.Sprintf("table: %d coordinates for %d dims", len(coords), len(a.shape)))
	}
	strides := a.shape.ComputeStrides()
	flat := 0
	for i, c := range coords {
		if c < 0 || c >= a.shape[i] {
			panic(fmt.Sprintf("table: index %d out of range for dimension %q", c, a.dims[i]))
		}
		flat += c * strides[i]
	}
	return a.data[flat], !a.IsNull(flat)
}

// Set stores v at a flat index and clears its null flag.
func (a *Array[T]) Set(i int, v T) {
	a.data[i] = v
	if a.nulls != nil {
		a.nulls.Remove(uint32(i))
	}
}

// SetNull marks the cell at a flat index as null and resets its value.
func (a *Array[T]) SetNull(i int) {
	var zero T
	a.data[i] = zero
	if a.nulls == nil {
		a.nulls = roaring.New()
	}
	a.nulls.Add(uint32(i))
}

// IsNull reports whether the cell at a flat index is null.
func (a *Array[T]) IsNull(i int) bool {
	if a.nulls != nil && a.nulls.Contains(uint32(i)) {
		return true
	}
	if f, ok := any(a.data[i]).(float64); ok {
		return math.IsNaN(f)
	}
	return false
}

// Nulls returns the explicit null bitmap, or nil.
func (a *Array[T]) Nulls() *roaring.Bitmap {
	if a.nulls == nil || a.nulls.IsEmpty() {
		return nil
	}
	return a.nulls
}

// SetNulls replaces the null bitmap. Indices outside the array are rejected.
func (a *Array[T]) SetNulls(bm *roaring.Bitmap) error {
	if bm == nil || bm.IsEmpty() {
		a.nulls = nil
		return nil
	}
	if int(bm.Maximum()) >= len(a.data) {
		return fmt.Errorf("%w: null index %d outside %d cells", ErrShapeMismatch, bm.Maximum(), len(a.data))
	}
	a.nulls = bm.Clone()
	return nil
}

// Clone returns a deep copy.
func (a *Array[T]) Clone() *Array[T] {
	c := &Array[T]{
		dims:  slices.Clone(a.dims),
		shape: a.shape.Clone(),
		data:  slices.Clone(a.data),
	}
	if a.nulls != nil {
		c.nulls = a.nulls.Clone()
	}
	return c
}

// CloneVariable implements Variable.
func (a *Array[T]) CloneVariable() Variable {
	return a.Clone()
}

// Equal reports whether both arrays have the same dims, shape, null cells and non-null values.
func (a *Array[T]) Equal(b *Array[T]) bool {
	if !slices.Equal(a.dims, b.dims) || !a.shape.Equal(b.shape) {
		return false
	}
	for i := range a.data {
		an, bn := a.IsNull(i), b.IsNull(i)
		if an != bn {
			return false
		}
		if !an && a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// EqualVariable implements Variable.
func (a *Array[T]) EqualVariable(other Variable) bool {
	b, ok := other.(*Array[T])
	if !ok {
		return false
	}
	return a.Equal(b)
}

// As asserts a Variable to a concrete array type.
func As[T Elem](v Variable) (*Array[T], error) {
	a, ok := v.(*Array[T])
	if !ok {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, v.DType(), inferDataType[T]())
	}
	return a, nil
}
