package commandline_test

import (
	"testing"

	"github.com/gomlx/exprgraph/exprs"
	"github.com/gomlx/exprgraph/types/keys"
	"github.com/gomlx/exprgraph/types/vector"
	"github.com/gomlx/exprgraph/ui/commandline"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSection(t *testing.T) {
	assert.Contains(t, commandline.Section("with_expressions"), "with_expressions")
}

func TestVector(t *testing.T) {
	got := commandline.Vector("z", vector.New(1, 16, 81))
	assert.Contains(t, got, "z:")
	assert.Contains(t, got, "(1, 16, 81)")
}

func TestMatrix(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{4, 0, 0, 32})
	got := commandline.Matrix("dz/dx", m)
	assert.Contains(t, got, "dz/dx:")
	assert.Contains(t, got, "32")
}

func TestValuesSummary(t *testing.T) {
	values := exprs.NewValues()
	values.Insert(keys.Symbol('x', 1), vector.New(1, 2, 3))
	values.Insert(keys.Symbol('y', 1), vector.New(2, 2, 2))
	got := commandline.ValuesSummary(values)
	assert.Contains(t, got, "2 values")
	assert.Contains(t, got, "x1 y1")
	assert.Contains(t, got, "48 B")
}
