package exprs_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/exprs"
	"github.com/gomlx/exprgraph/types"
	"github.com/gomlx/exprgraph/types/keys"
	"github.com/gomlx/exprgraph/types/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

// requireMatInDelta checks a matrix element-wise against the expected rows.
func requireMatInDelta(t *testing.T, want [][]float64, got mat.Matrix) {
	t.Helper()
	rows, cols := got.Dims()
	require.Equal(t, len(want), rows)
	for i := range want {
		require.Equal(t, len(want[i]), cols)
		for j := range want[i] {
			assert.InDelta(t, want[i][j], got.At(i, j), tolerance, "at (%d, %d)", i, j)
		}
	}
}

func newValuesX123() *exprs.Values {
	values := exprs.NewValues()
	values.Insert(keys.Symbol('x', 1), vector.New(1, 2, 3))
	return values
}

func TestValues(t *testing.T) {
	values := exprs.NewValues()
	require.Equal(t, 0, values.Len())
	xKey := keys.Symbol('x', 1)
	values.Insert(xKey, vector.New(1, 2, 3))
	require.Equal(t, 1, values.Len())
	require.True(t, values.Has(xKey))
	require.False(t, values.Has(keys.Symbol('y', 1)))

	got := values.At(xKey)
	require.True(t, got.Equals(vector.New(1, 2, 3), tolerance))

	_, err := values.Get(keys.Symbol('y', 1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "y1")
	gotten, err := values.Get(xKey)
	require.NoError(t, err)
	require.True(t, gotten.Equals(vector.New(1, 2, 3), tolerance))

	require.Panics(t, func() { values.At(keys.Symbol('y', 1)) })
	require.Panics(t, func() { values.Insert(xKey, vector.New(9)) })
	require.Panics(t, func() { values.Insert(keys.Symbol('z', 1), nil) })

	values.Insert(keys.Symbol('y', 1), vector.New(4, 5))
	require.Equal(t, []keys.Key{xKey, keys.Symbol('y', 1)}, values.Keys())
	require.Equal(t, uint64(8*5), values.Memory())
	require.Contains(t, values.String(), "x1: (1, 2, 3)")
}

func TestValueOnly(t *testing.T) {
	x := exprs.Leaf('x', 1)
	z := exprs.Apply1(square, exprs.Apply1(square, x))
	result := z.Value(newValuesX123())
	require.True(t, result.Equals(vector.New(1, 16, 81), tolerance))
}

// TestValuePassesNilJacobians checks that plain evaluation never requests
// Jacobians from the functions.
func TestValuePassesNilJacobians(t *testing.T) {
	var sawJacobian bool
	probe := func(x types.Manifold, jac *mat.Dense) types.Manifold {
		if jac != nil {
			sawJacobian = true
			jac.CloneFrom(vector.Identity(x.Dim()))
		}
		return x
	}
	e := exprs.Apply1(probe, exprs.Leaf('x', 1))
	e.Value(newValuesX123())
	require.False(t, sawJacobian)

	e.ValueAndJacobians(newValuesX123())
	require.True(t, sawJacobian)
}

// TestChainRuleEquivalence is the round-trip at the heart of the demos:
// the Jacobian obtained by explicitly multiplying the two stages' local
// Jacobians must match the one propagated through the expression chain.
func TestChainRuleEquivalence(t *testing.T) {
	// Manual: z = square(square(x)), dz/dx = dz/dy · dy/dx.
	xVec := vector.New(1, 2, 3)
	var dydx, dzdy mat.Dense
	yVec := square(xVec, &dydx).(vector.Vector)
	zVec := square(yVec, &dzdy).(vector.Vector)
	var manual mat.Dense
	manual.Mul(&dzdy, &dydx)

	require.True(t, yVec.Equals(vector.New(1, 4, 9), tolerance))
	require.True(t, zVec.Equals(vector.New(1, 16, 81), tolerance))

	// Expression chain.
	z := exprs.Apply1(square, exprs.Apply1(square, exprs.Leaf('x', 1)))
	result, jacobians := z.ValueAndJacobians(newValuesX123())

	require.True(t, result.Equals(zVec, tolerance))
	dzdx := jacobians.Of(keys.Symbol('x', 1))
	rows, cols := manual.Dims()
	gotRows, gotCols := dzdx.Dims()
	require.Equal(t, rows, gotRows)
	require.Equal(t, cols, gotCols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, manual.At(i, j), dzdx.At(i, j), tolerance)
		}
	}
	// dz/dx = diag(4x³).
	requireMatInDelta(t, [][]float64{
		{4, 0, 0},
		{0, 32, 0},
		{0, 0, 108},
	}, dzdx)
}

// TestLeafJacobianIsIdentity: the Jacobian of a leaf with respect to its
// own key.
func TestLeafJacobianIsIdentity(t *testing.T) {
	x := exprs.Leaf('x', 1)
	result, jacobians := x.ValueAndJacobians(newValuesX123())
	require.True(t, result.Equals(vector.New(1, 2, 3), tolerance))
	requireMatInDelta(t, [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}, jacobians.Of(keys.Symbol('x', 1)))
}

// TestSharedKeyAccumulates: a key feeding the root through two paths gets
// the sum of both contributions.
func TestSharedKeyAccumulates(t *testing.T) {
	x := exprs.Leaf('x', 1)
	doubled := exprs.Apply2(add, x, x)
	result, jacobians := doubled.ValueAndJacobians(newValuesX123())
	require.True(t, result.Equals(vector.New(2, 4, 6), tolerance))
	requireMatInDelta(t, [][]float64{
		{2, 0, 0},
		{0, 2, 0},
		{0, 0, 2},
	}, jacobians.Of(keys.Symbol('x', 1)))

	// Same accumulation with two distinct leaves for the same key.
	twoLeaves := exprs.Apply2(add, exprs.Leaf('x', 1), exprs.Leaf('x', 1))
	_, jacobians = twoLeaves.ValueAndJacobians(newValuesX123())
	requireMatInDelta(t, [][]float64{
		{2, 0, 0},
		{0, 2, 0},
		{0, 0, 2},
	}, jacobians.Of(keys.Symbol('x', 1)))
}

func TestConstantsAreNotDifferentiated(t *testing.T) {
	x := exprs.Leaf('x', 1)
	shifted := exprs.Apply2(add, x, exprs.Constant(vector.New(10, 10, 10)))
	result, jacobians := shifted.ValueAndJacobians(newValuesX123())
	require.True(t, result.Equals(vector.New(11, 12, 13), tolerance))
	require.Len(t, jacobians, 1)
	require.Panics(t, func() { jacobians.Of(keys.Symbol('c', 1)) })
}

func TestMissingKeyPanics(t *testing.T) {
	e := exprs.Apply1(square, exprs.Leaf('q', 9))
	require.Panics(t, func() { e.Value(newValuesX123()) })
}

func TestMissingJacobianPanics(t *testing.T) {
	e := exprs.Apply1(squareNoJac, exprs.Leaf('x', 1))
	// Value works...
	result := e.Value(newValuesX123())
	require.True(t, result.Equals(vector.New(1, 4, 9), tolerance))
	// ... but asking for Jacobians panics, naming the function.
	err := exceptions.TryCatch[error](func() { e.ValueAndJacobians(newValuesX123()) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "squareNoJac")
	require.Contains(t, err.Error(), "does not provide a Jacobian")
}

// TestJacobiansOfReturnsCopy: callers may scale or overwrite the matrix
// they get back without corrupting later lookups.
func TestJacobiansOfReturnsCopy(t *testing.T) {
	x := exprs.Leaf('x', 1)
	_, jacobians := exprs.Apply1(square, x).ValueAndJacobians(newValuesX123())

	xKey := keys.Symbol('x', 1)
	first := jacobians.Of(xKey)
	first.Scale(100, first)

	requireMatInDelta(t, [][]float64{
		{2, 0, 0},
		{0, 4, 0},
		{0, 0, 6},
	}, jacobians.Of(xKey))
	requireMatInDelta(t, [][]float64{
		{2, 0, 0},
		{0, 4, 0},
		{0, 0, 6},
	}, jacobians[xKey])
}

func TestValuesNotMutatedByEvaluation(t *testing.T) {
	values := newValuesX123()
	e := exprs.Apply1(square, exprs.Leaf('x', 1))
	e.ValueAndJacobians(values)
	require.Equal(t, 1, values.Len())
	require.True(t, values.At(keys.Symbol('x', 1)).Equals(vector.New(1, 2, 3), tolerance))
}
