// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package table

import (
	"github.com/born-ml/lpio/internal/table"
)

// Elem is a constraint for array element types: float64, int64, bool, string.
type Elem = table.Elem

// DataType represents the element type of an array at runtime.
type DataType = table.DataType

// Data type constants.
const (
	Float64 DataType = table.Float64
	Int64   DataType = table.Int64
	Bool    DataType = table.Bool
	String  DataType = table.String
)

// Shape represents the length of each dimension.
type Shape = table.Shape

// Array is a dense row-major array with named dimensions and a null bitmap.
type Array[T Elem] = table.Array[T]

// Variable is the type-erased view of an Array.
type Variable = table.Variable

// Dataset is an ordered collection of named arrays with string attributes.
type Dataset = table.Dataset

// Mask marks the valid cells of an array.
type Mask = table.Mask

// Errors returned by array and dataset operations.
var (
	ErrShapeMismatch  = table.ErrShapeMismatch
	ErrDimMismatch    = table.ErrDimMismatch
	ErrTypeMismatch   = table.ErrTypeMismatch
	ErrUnknownField   = table.ErrUnknownField
	ErrDuplicateField = table.ErrDuplicateField
)

// Creation functions

// New creates a zero-filled array.
//
// Example:
//
//	rhs, err := table.New[float64]([]string{"con"}, table.Shape{3})
func New[T Elem](dims []string, shape Shape) (*Array[T], error) {
	return table.New[T](dims, shape)
}

// FromSlice wraps data without copying. len(data) must match the shape.
//
// Example:
//
//	vars, err := table.FromSlice([]string{"con", "c_term"}, table.Shape{1, 2}, []int64{0, 1})
func FromSlice[T Elem](dims []string, shape Shape, data []T) (*Array[T], error) {
	return table.FromSlice(dims, shape, data)
}

// Vector creates a one-dimensional array.
//
// Example:
//
//	upper := table.Vector("i", 10, math.Inf(1))
func Vector[T Elem](dim string, data ...T) *Array[T] {
	return table.Vector(dim, data...)
}

// Scalar creates a zero-dimensional array.
func Scalar[T Elem](v T) *Array[T] {
	return table.Scalar(v)
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return table.NewDataset()
}

// Field returns a typed field of a dataset.
//
// Example:
//
//	x, err := table.Field[int64](m.Variables, "x")
func Field[T Elem](d *Dataset, name string) (*Array[T], error) {
	return table.Field[T](d, name)
}

// As asserts a Variable to a concrete array type.
func As[T Elem](v Variable) (*Array[T], error) {
	return table.As[T](v)
}
