package table

import "fmt"

// Shape represents the extent of each dimension of an array.
type Shape []int

// NumElements returns the total number of cells.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
// Zero-length dimensions are allowed: a model may have no constraints.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Dim is a named dimension with its length.
type Dim struct {
	Name string
	Len  int
}

// BroadcastDims aligns named dimensions xarray-style.
//
// Rules:
//  1. Dimensions are matched by name, not by position
//  2. The result lists dimensions in order of first appearance
//  3. Equal-named dimensions must have equal length
//
// Examples:
//
//	(con:3) + ()            → (con:3)
//	(con:3) + (con:3, t:2)  → (con:3, t:2)
//	(con:3) + (con:4)       → Error
func BroadcastDims(groups ...[]Dim) ([]Dim, error) {
	var result []Dim
	index := make(map[string]int)

	for _, g := range groups {
		for _, d := range g {
			pos, ok := index[d.Name]
			if !ok {
				index[d.Name] = len(result)
				result = append(result, d)
				continue
			}
			if result[pos].Len != d.Len {
				return nil, fmt.Errorf("%w: dimension %q has length %d and %d",
					ErrShapeMismatch, d.Name, result[pos].Len, d.Len)
			}
		}
	}

	return result, nil
}

// unravel converts a flat row-major index into per-axis coordinates.
func unravel(flat int, shape Shape, coords []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 0 {
			coords[i] = 0
			continue
		}
		coords[i] = flat % shape[i]
		flat /= shape[i]
	}
}
