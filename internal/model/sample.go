package model

import (
	"math"

	"github.com/born-ml/lpio/internal/table"
)

// Sample builds a small model that exercises every masking rule:
// a null bound, a binary group, a ragged constraint group with an all-sentinel row
// and a null coefficient, and a sentinel objective term.
func Sample() *Model {
	m := New()
	m.Name = "sample"

	lower := table.Vector("i", 0, 0, 0.0)
	lower.SetNull(2)
	upper := table.Vector("i", 10, math.Inf(1), 5)
	x, err := m.AddVariables("x", lower, upper)
	if err != nil {
		panic(err)
	}
	y, err := m.AddBinaryVariables("y", []string{"j"}, table.Shape{2})
	if err != nil {
		panic(err)
	}

	x0, x1, x2 := x.At(0), x.At(1), x.At(2)
	y0 := y.At(0)
	dims := []string{"con", "c_term"}
	coeffs, _ := table.FromSlice(dims, table.Shape{3, 3}, []float64{
		2, 3, 0,
		1, 1, 1,
		1, -1, 4,
	})
	coeffs.SetNull(8)
	vars, _ := table.FromSlice(dims, table.Shape{3, 3}, []int64{
		x0, x1, Sentinel,
		Sentinel, Sentinel, Sentinel,
		x2, y0, x1,
	})
	sign := table.Vector("con", SignLessEqual, SignEqual, SignGreaterEqual)
	rhs := table.Vector("con", 10, 1, 0.0)
	if _, err := m.AddConstraints("c", coeffs, vars, sign, rhs); err != nil {
		panic(err)
	}

	obj, err := NewLinearExpression(
		table.Vector(ObjectiveTermDim, 1, 2, -1.0),
		table.Vector(ObjectiveTermDim, x0, x1, Sentinel),
	)
	if err != nil {
		panic(err)
	}
	if err := m.SetObjective(obj); err != nil {
		panic(err)
	}
	return m
}
