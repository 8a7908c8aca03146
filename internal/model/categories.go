package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/born-ml/lpio/internal/table"
)

// Lookup errors.
var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownAttribute = errors.New("unknown attribute")
)

type category struct {
	name string
	get  func(*Model) *table.Dataset
	set  func(*Model, *table.Dataset) error
}

func datasetCategory(name string, field func(*Model) **table.Dataset) category {
	return category{
		name: name,
		get:  func(m *Model) *table.Dataset { return *field(m) },
		set: func(m *Model, ds *table.Dataset) error {
			*field(m) = ds
			return nil
		},
	}
}

// categories lists the persisted tables in snapshot order.
var categories = []category{
	datasetCategory("variables", func(m *Model) **table.Dataset { return &m.Variables }),
	datasetCategory("variables_lower_bound", func(m *Model) **table.Dataset { return &m.VariablesLowerBound }),
	datasetCategory("variables_upper_bound", func(m *Model) **table.Dataset { return &m.VariablesUpperBound }),
	datasetCategory("binaries", func(m *Model) **table.Dataset { return &m.Binaries }),
	datasetCategory("constraints", func(m *Model) **table.Dataset { return &m.Constraints }),
	datasetCategory("constraints_lhs_coeffs", func(m *Model) **table.Dataset { return &m.ConstraintsLHSCoeffs }),
	datasetCategory("constraints_lhs_vars", func(m *Model) **table.Dataset { return &m.ConstraintsLHSVars }),
	datasetCategory("constraints_sign", func(m *Model) **table.Dataset { return &m.ConstraintsSign }),
	datasetCategory("constraints_rhs", func(m *Model) **table.Dataset { return &m.ConstraintsRHS }),
	{
		name: "objective",
		get:  func(m *Model) *table.Dataset { return m.Objective.Dataset() },
		set: func(m *Model, ds *table.Dataset) error {
			e, err := ExpressionFromDataset(ds)
			if err != nil {
				return err
			}
			m.Objective = e
			return nil
		},
	},
}

type attribute struct {
	name string
	get  func(*Model) string
	set  func(*Model, string) error
}

// attributes lists the scalar model attributes stored as container attributes.
var attributes = []attribute{
	{
		name: "name",
		get:  func(m *Model) string { return m.Name },
		set:  func(m *Model, v string) error { m.Name = v; return nil },
	},
	{
		name: "status",
		get:  func(m *Model) string { return m.Status },
		set:  func(m *Model, v string) error { m.Status = v; return nil },
	},
	{
		name: "objective_value",
		get:  func(m *Model) string { return strconv.FormatFloat(m.ObjectiveValue, 'g', -1, 64) },
		set: func(m *Model, v string) (err error) {
			m.ObjectiveValue, err = strconv.ParseFloat(v, 64)
			return err
		},
	},
	{
		name: "var_counter",
		get:  func(m *Model) string { return strconv.FormatInt(m.VarCounter, 10) },
		set: func(m *Model, v string) (err error) {
			m.VarCounter, err = strconv.ParseInt(v, 10, 64)
			return err
		},
	},
	{
		name: "con_counter",
		get:  func(m *Model) string { return strconv.FormatInt(m.ConCounter, 10) },
		set: func(m *Model, v string) (err error) {
			m.ConCounter, err = strconv.ParseInt(v, 10, 64)
			return err
		},
	},
}

// Categories returns the names of the persisted tables.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Attributes returns the names of the scalar model attributes.
func Attributes() []string {
	names := make([]string, len(attributes))
	for i, a := range attributes {
		names[i] = a.name
	}
	return names
}

// Category returns the dataset of a persisted table by name.
func (m *Model) Category(name string) (*table.Dataset, error) {
	for _, c := range categories {
		if c.name == name {
			return c.get(m), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Attribute returns the string form of a scalar attribute.
func (m *Model) Attribute(name string) (string, error) {
	for _, a := range attributes {
		if a.name == name {
			return a.get(m), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// SetAttribute parses and assigns a scalar attribute.
func (m *Model) SetAttribute(name, value string) error {
	for _, a := range attributes {
		if a.name == name {
			if err := a.set(m, value); err != nil {
				return fmt.Errorf("attribute %q: %w", name, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}
