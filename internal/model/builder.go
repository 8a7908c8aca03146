package model

import (
	"fmt"
	"slices"

	"github.com/born-ml/lpio/internal/table"
)

// AddVariables registers a continuous variable group and returns its labels.
// lower and upper must share dims and shape; labels are assigned row-major from VarCounter.
func (m *Model) AddVariables(name string, lower, upper *table.Array[float64]) (*table.Array[int64], error) {
	if err := m.checkVariableName(name); err != nil {
		return nil, err
	}
	if err := sameLayout(lower, upper); err != nil {
		return nil, fmt.Errorf("variable %q bounds: %w", name, err)
	}

	labels := m.nextLabels(&m.VarCounter, lower.Dims(), lower.Shape())
	m.Variables.Set(name, labels)
	m.VariablesLowerBound.Set(name, lower)
	m.VariablesUpperBound.Set(name, upper)
	return labels, nil
}

// AddBinaryVariables registers a binary variable group and returns its labels.
func (m *Model) AddBinaryVariables(name string, dims []string, shape table.Shape) (*table.Array[int64], error) {
	if err := m.checkVariableName(name); err != nil {
		return nil, err
	}
	if _, err := table.New[int64](dims, shape); err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	labels := m.nextLabels(&m.VarCounter, dims, shape)
	m.Binaries.Set(name, labels)
	return labels, nil
}

// AddConstraints registers a constraint group and returns its labels.
//
// sign and rhs carry the constraint dims; coeffs and vars carry the same dims
// plus the term dims. Use Sentinel in vars, or null coefficients, for absent terms.
func (m *Model) AddConstraints(
	name string,
	coeffs *table.Array[float64],
	vars *table.Array[int64],
	sign *table.Array[string],
	rhs *table.Array[float64],
) (*table.Array[int64], error) {
	if m.Constraints.Has(name) {
		return nil, fmt.Errorf("constraint %q: %w", name, ErrDuplicateName)
	}
	if err := sameLayout(sign, rhs); err != nil {
		return nil, fmt.Errorf("constraint %q: %w", name, err)
	}
	for i, s := range sign.Data() {
		if sign.IsNull(i) {
			continue
		}
		if !slices.Contains([]string{SignLessEqual, SignEqual, SignGreaterEqual}, s) {
			return nil, fmt.Errorf("constraint %q: %w: %q", name, ErrInvalidSign, s)
		}
	}

	labels := m.nextLabels(&m.ConCounter, sign.Dims(), sign.Shape())
	m.Constraints.Set(name, labels)
	m.ConstraintsLHSCoeffs.Set(name, coeffs)
	m.ConstraintsLHSVars.Set(name, vars)
	m.ConstraintsSign.Set(name, sign)
	m.ConstraintsRHS.Set(name, rhs)

	if err := m.validateConstraint(name); err != nil {
		for _, ds := range []*table.Dataset{
			m.Constraints, m.ConstraintsLHSCoeffs, m.ConstraintsLHSVars, m.ConstraintsSign, m.ConstraintsRHS,
		} {
			ds.Delete(name)
		}
		m.ConCounter -= int64(labels.Len())
		return nil, fmt.Errorf("constraint %q: %w", name, err)
	}
	return labels, nil
}

// SetObjective replaces the objective.
func (m *Model) SetObjective(e *LinearExpression) error {
	if e == nil {
		return fmt.Errorf("objective: %w", ErrMissingGroup)
	}
	if err := e.validate(); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	m.Objective = e
	return nil
}

func (m *Model) checkVariableName(name string) error {
	if m.Variables.Has(name) || m.Binaries.Has(name) {
		return fmt.Errorf("variable %q: %w", name, ErrDuplicateName)
	}
	return nil
}

func (m *Model) nextLabels(counter *int64, dims []string, shape table.Shape) *table.Array[int64] {
	n := shape.NumElements()
	data := make([]int64, n)
	for i := range data {
		data[i] = *counter + int64(i)
	}
	*counter += int64(n)

	labels, err := table.FromSlice(dims, shape, data)
	if err != nil {
		// callers validated dims and shape
		panic(err)
	}
	return labels
}
