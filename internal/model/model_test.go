package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lpio/internal/table"
)

func TestSampleIsValid(t *testing.T) {
	m := Sample()
	require.NoError(t, m.Validate())

	assert.Equal(t, int64(5), m.VarCounter)
	assert.Equal(t, int64(3), m.ConCounter)
	assert.Equal(t, []string{"x"}, m.NonBinaryVariables())
}

func TestAddVariablesLabels(t *testing.T) {
	m := New()
	lb, err := table.FromSlice([]string{"i", "j"}, table.Shape{2, 2}, []float64{0, 0, 0, 0})
	require.NoError(t, err)

	x, err := m.AddVariables("x", lb, lb.Clone())
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3}, x.Data())

	y, err := m.AddBinaryVariables("y", []string{"k"}, table.Shape{2})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, y.Data())

	_, err = m.AddBinaryVariables("x", []string{"k"}, table.Shape{1})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = m.AddVariables("z", lb, table.Vector("i", 1.0))
	require.ErrorIs(t, err, table.ErrShapeMismatch)
}

func TestAddConstraintsRejectsBadInput(t *testing.T) {
	m := New()
	coeffs, err := table.FromSlice([]string{"con", "t"}, table.Shape{1, 1}, []float64{1})
	require.NoError(t, err)
	vars, err := table.FromSlice([]string{"con", "t"}, table.Shape{1, 1}, []int64{0})
	require.NoError(t, err)

	_, err = m.AddConstraints("c", coeffs, vars, table.Vector("con", "<"), table.Vector("con", 1.0))
	require.ErrorIs(t, err, ErrInvalidSign)

	wide, err := table.FromSlice([]string{"row", "t"}, table.Shape{1, 1}, []float64{1})
	require.NoError(t, err)
	_, err = m.AddConstraints("c", wide, vars, table.Vector("con", "<="), table.Vector("con", 1.0))
	require.ErrorIs(t, err, table.ErrShapeMismatch)
	assert.Equal(t, 0, m.Constraints.Len(), "failed group is rolled back")
	assert.Equal(t, int64(0), m.ConCounter)

	labels, err := m.AddConstraints("c", coeffs, vars, table.Vector("con", "<="), table.Vector("con", 1.0))
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, labels.Data())
	assert.Equal(t, []string{"t"}, TermDims(labels, coeffs))
}

func TestValidateMissingBounds(t *testing.T) {
	m := Sample()
	m.VariablesUpperBound.Delete("x")
	require.ErrorIs(t, m.Validate(), ErrMissingGroup)

	m = Sample()
	m.ConstraintsRHS.Set("c", table.Vector("con", 1.0))
	require.ErrorIs(t, m.Validate(), table.ErrShapeMismatch)
}

func TestNilObjective(t *testing.T) {
	m := Sample()
	require.ErrorIs(t, m.SetObjective(nil), ErrMissingGroup)
	assert.NotNil(t, m.Objective, "rejected objective is not stored")

	m.Objective = nil
	require.ErrorIs(t, m.Validate(), ErrMissingGroup)
	_, err := Pack(m)
	require.ErrorIs(t, err, ErrMissingGroup)
}

func TestObjectiveTermMask(t *testing.T) {
	m := Sample()
	assert.Equal(t, []uint32{0, 1}, m.Objective.TermMask().Indices())

	_, err := NewLinearExpression(table.Vector(ObjectiveTermDim, 1.0), table.Vector[int64](ObjectiveTermDim))
	require.ErrorIs(t, err, table.ErrShapeMismatch)
}

func TestAttributes(t *testing.T) {
	m := New()
	assert.True(t, math.IsNaN(m.ObjectiveValue))

	require.NoError(t, m.SetAttribute("objective_value", "12.5"))
	assert.Equal(t, 12.5, m.ObjectiveValue)

	v, err := m.Attribute("var_counter")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	require.Error(t, m.SetAttribute("var_counter", "many"))
	require.ErrorIs(t, m.SetAttribute("solver", "x"), ErrUnknownAttribute)

	_, err = m.Category("duals")
	require.ErrorIs(t, err, ErrUnknownCategory)
}
