package model

import (
	"fmt"

	"github.com/born-ml/lpio/internal/table"
)

// ObjectiveTermDim is the term dimension of the objective.
const ObjectiveTermDim = "_term"

// LinearExpression is a sum of coefficient × variable terms.
type LinearExpression struct {
	Coeffs *table.Array[float64]
	Vars   *table.Array[int64]
}

// EmptyExpression returns an expression without terms.
func EmptyExpression() *LinearExpression {
	return &LinearExpression{
		Coeffs: table.Vector[float64](ObjectiveTermDim),
		Vars:   table.Vector[int64](ObjectiveTermDim),
	}
}

// NewLinearExpression pairs coefficients with variable labels of the same layout.
func NewLinearExpression(coeffs *table.Array[float64], vars *table.Array[int64]) (*LinearExpression, error) {
	e := &LinearExpression{Coeffs: coeffs, Vars: vars}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// ExpressionFromDataset rebuilds an expression from its "coeffs" and "vars" fields.
func ExpressionFromDataset(ds *table.Dataset) (*LinearExpression, error) {
	coeffs, err := table.Field[float64](ds, "coeffs")
	if err != nil {
		return nil, fmt.Errorf("linear expression: %w", err)
	}
	vars, err := table.Field[int64](ds, "vars")
	if err != nil {
		return nil, fmt.Errorf("linear expression: %w", err)
	}
	return NewLinearExpression(coeffs, vars)
}

// Dataset exposes the expression as a dataset with "coeffs" and "vars" fields.
func (e *LinearExpression) Dataset() *table.Dataset {
	ds := table.NewDataset()
	ds.Set("coeffs", e.Coeffs)
	ds.Set("vars", e.Vars)
	return ds
}

// TermMask marks the terms that carry a coefficient and a real variable.
func (e *LinearExpression) TermMask() *table.Mask {
	m, err := table.NotNull(e.Coeffs).And(table.NotEqual(e.Vars, Sentinel))
	if err != nil {
		// validate guarantees identical layouts
		panic(err)
	}
	return m
}

func (e *LinearExpression) validate() error {
	if e.Coeffs == nil || e.Vars == nil {
		return fmt.Errorf("%w: coeffs and vars are required", ErrMissingGroup)
	}
	return sameLayout(e.Coeffs, e.Vars)
}
