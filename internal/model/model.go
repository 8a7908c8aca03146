// Package model holds the tabular form of a linear or mixed-integer program.
//
// Every entity is a named array inside a table.Dataset:
//
//	variables              labels per variable group
//	variables_lower_bound  lower bounds per non-binary group
//	variables_upper_bound  upper bounds per non-binary group
//	binaries               labels per binary group
//	constraints            labels per constraint group
//	constraints_lhs_coeffs coefficients, constraint dims + term dims
//	constraints_lhs_vars   referenced variable labels, same dims as the coefficients
//	constraints_sign       "<=", "=" or ">="
//	constraints_rhs        right-hand side
//	objective              LinearExpression over the "_term" dim
//
// Label -1 (Sentinel) pads ragged groups and is never exported.
package model

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/born-ml/lpio/internal/table"
)

// Sentinel marks a cell that holds no variable or constraint.
const Sentinel int64 = -1

// Constraint signs.
const (
	SignLessEqual    = "<="
	SignEqual        = "="
	SignGreaterEqual = ">="
)

// Common errors.
var (
	ErrDuplicateName = errors.New("name already in use")
	ErrInvalidSign   = errors.New("invalid constraint sign")
	ErrMissingGroup  = errors.New("missing group")
)

// Model is an optimization model in tabular form.
type Model struct {
	Name           string
	Status         string
	ObjectiveValue float64
	VarCounter     int64
	ConCounter     int64

	Variables            *table.Dataset
	VariablesLowerBound  *table.Dataset
	VariablesUpperBound  *table.Dataset
	Binaries             *table.Dataset
	Constraints          *table.Dataset
	ConstraintsLHSCoeffs *table.Dataset
	ConstraintsLHSVars   *table.Dataset
	ConstraintsSign      *table.Dataset
	ConstraintsRHS       *table.Dataset
	Objective            *LinearExpression
}

// New creates an empty model.
func New() *Model {
	return &Model{
		Status:               "initialized",
		ObjectiveValue:       math.NaN(),
		Variables:            table.NewDataset(),
		VariablesLowerBound:  table.NewDataset(),
		VariablesUpperBound:  table.NewDataset(),
		Binaries:             table.NewDataset(),
		Constraints:          table.NewDataset(),
		ConstraintsLHSCoeffs: table.NewDataset(),
		ConstraintsLHSVars:   table.NewDataset(),
		ConstraintsSign:      table.NewDataset(),
		ConstraintsRHS:       table.NewDataset(),
		Objective:            EmptyExpression(),
	}
}

// NonBinaryVariables returns the variable groups that are not declared binary, in order.
func (m *Model) NonBinaryVariables() []string {
	var names []string
	for _, name := range m.Variables.Names() {
		if !m.Binaries.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

// TermDims returns the dims of coeffs that the constraint labels do not have.
func TermDims(labels, coeffs table.Variable) []string {
	var out []string
	for _, d := range coeffs.Dims() {
		if !slices.Contains(labels.Dims(), d) {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks the shape invariants the exporters rely on.
func (m *Model) Validate() error {
	if m.Objective == nil {
		return fmt.Errorf("objective: %w", ErrMissingGroup)
	}
	if err := m.Objective.validate(); err != nil {
		return fmt.Errorf("objective: %w", err)
	}

	for _, name := range m.NonBinaryVariables() {
		labels, _ := m.Variables.Get(name)
		for _, bounds := range []*table.Dataset{m.VariablesLowerBound, m.VariablesUpperBound} {
			b, ok := bounds.Get(name)
			if !ok {
				return fmt.Errorf("variable %q: %w: bounds", name, ErrMissingGroup)
			}
			if err := sameLayout(labels, b); err != nil {
				return fmt.Errorf("variable %q bounds: %w", name, err)
			}
		}
	}

	for _, name := range m.Constraints.Names() {
		if err := m.validateConstraint(name); err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
	}
	return nil
}

func (m *Model) validateConstraint(name string) error {
	labels, _ := m.Constraints.Get(name)
	parts := make(map[string]table.Variable, 4)
	for field, ds := range map[string]*table.Dataset{
		"coeffs": m.ConstraintsLHSCoeffs,
		"vars":   m.ConstraintsLHSVars,
		"sign":   m.ConstraintsSign,
		"rhs":    m.ConstraintsRHS,
	} {
		v, ok := ds.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingGroup, field)
		}
		parts[field] = v
	}

	if err := sameLayout(labels, parts["sign"]); err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	if err := sameLayout(labels, parts["rhs"]); err != nil {
		return fmt.Errorf("rhs: %w", err)
	}
	if err := sameLayout(parts["coeffs"], parts["vars"]); err != nil {
		return fmt.Errorf("lhs: %w", err)
	}

	// The non-term dims of the lhs must be the label dims, in the same order.
	coeffs := parts["coeffs"]
	var rowDims []string
	var rowShape table.Shape
	for i, d := range coeffs.Dims() {
		if slices.Contains(labels.Dims(), d) {
			rowDims = append(rowDims, d)
			rowShape = append(rowShape, coeffs.Shape()[i])
		}
	}
	if !slices.Equal(rowDims, labels.Dims()) || !rowShape.Equal(labels.Shape()) {
		return fmt.Errorf("lhs: %w: %v%v does not extend %v%v",
			table.ErrShapeMismatch, coeffs.Dims(), coeffs.Shape(), labels.Dims(), labels.Shape())
	}
	return nil
}

func sameLayout(a, b table.Variable) error {
	if !slices.Equal(a.Dims(), b.Dims()) || !a.Shape().Equal(b.Shape()) {
		return fmt.Errorf("%w: %v%v vs %v%v", table.ErrShapeMismatch, a.Dims(), a.Shape(), b.Dims(), b.Shape())
	}
	return nil
}

// Equal reports whether two models hold identical tables and attributes.
func (m *Model) Equal(o *Model) bool {
	for _, attr := range attributes {
		if attr.get(m) != attr.get(o) {
			return false
		}
	}
	for _, cat := range categories {
		if !cat.get(m).Equal(cat.get(o)) {
			return false
		}
	}
	return true
}
