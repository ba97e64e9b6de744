package reshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/domain"
)

func gridTarget() Target {
	return Target{Name: "hs", Dims: []string{"y", "x"}, Shape: []int{2, 3}}
}

func mustArray(t *testing.T, shape []int, values []float64) *array.Eager {
	t.Helper()
	a, err := array.NewEager(shape, values)
	require.NoError(t, err)
	return a
}

func TestAlign_ExplicitDimsReorder(t *testing.T) {
	// Rows are x, columns are y.
	in := mustArray(t, []int{3, 2}, []float64{1, 4, 2, 5, 3, 6})
	out, err := Align(in, gridTarget(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out.Shape())
	vals, err := array.Values(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)
}

func TestAlign_ExplicitDimsAlreadyOrdered(t *testing.T) {
	in := mustArray(t, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	out, err := Align(in, gridTarget(), []string{"y", "x"})
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestAlign_ExplicitDimsDropTrivial(t *testing.T) {
	target := Target{Dims: []string{"time", "y", "x"}, Shape: []int{1, 2, 3}}
	in := mustArray(t, []int{3, 1, 2}, []float64{1, 4, 2, 5, 3, 6})
	out, err := Align(in, target, []string{"x", "time", "y"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out.Shape())
	vals, _ := array.Values(out)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)

	// An unknown dimension is fine as long as it is trivial in the data.
	in = mustArray(t, []int{1, 2, 3}, []float64{1, 2, 3, 4, 5, 6})
	out, err = Align(in, target, []string{"member", "y", "x"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out.Shape())
}

func TestAlign_ExplicitDimsWrongLength(t *testing.T) {
	in := mustArray(t, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	_, err := Align(in, gridTarget(), []string{"x", "y"})
	assert.ErrorIs(t, err, domain.ErrIrreconcilableShape)

	_, err = Align(in, gridTarget(), []string{"y"})
	assert.ErrorIs(t, err, domain.ErrIrreconcilableShape)
}

func TestAlign_Irreconcilable(t *testing.T) {
	in := array.Zeros(5, 5)
	_, err := Align(in, gridTarget(), nil)
	require.Error(t, err)

	var shapeErr *domain.IrreconcilableShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []int{5, 5}, shapeErr.Original)
	assert.Equal(t, []int{2, 3}, shapeErr.Expected)
	assert.Equal(t, "hs", shapeErr.Name)
}

func TestAlign_Idempotent(t *testing.T) {
	in := mustArray(t, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	out, err := Align(in, gridTarget(), nil)
	require.NoError(t, err)
	assert.Same(t, in, out)

	again, err := Align(out, gridTarget(), nil)
	require.NoError(t, err)
	assert.Same(t, out, again)
}

func TestAlign_SqueezeAndExpand(t *testing.T) {
	target := Target{Dims: []string{"time", "index", "freq"}, Shape: []int{1, 4, 1}}
	in := mustArray(t, []int{4}, []float64{1, 2, 3, 4})
	out, err := Align(in, target, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 1}, out.Shape())

	in = mustArray(t, []int{1, 1, 4}, []float64{1, 2, 3, 4})
	out, err = Align(in, target, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 1}, out.Shape())
}

func TestAlign_Transpose2D(t *testing.T) {
	target := Target{Dims: []string{"time", "y", "x"}, Shape: []int{1, 2, 3}}
	in := mustArray(t, []int{3, 2}, []float64{1, 4, 2, 5, 3, 6})
	out, err := Align(in, target, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out.Shape())
	vals, _ := array.Values(out)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)

	// No transpose fallback for more than two non-trivial axes.
	target3 := Target{Dims: []string{"time", "y", "x"}, Shape: []int{4, 2, 3}}
	_, err = Align(array.Zeros(3, 2, 4), target3, nil)
	assert.ErrorIs(t, err, domain.ErrIrreconcilableShape)
}

func TestAlign_Scalar(t *testing.T) {
	in, err := array.From(7.0)
	require.NoError(t, err)
	out, err := Align(in, gridTarget(), nil)
	require.NoError(t, err)
	vals, _ := array.Values(out)
	assert.Equal(t, []float64{7, 7, 7, 7, 7, 7}, vals)
}

func TestAlign_Lazy(t *testing.T) {
	in := array.Defer(mustArray(t, []int{3, 2}, []float64{1, 4, 2, 5, 3, 6}))
	out, err := Align(in, gridTarget(), []string{"x", "y"})
	require.NoError(t, err)
	assert.True(t, out.Lazy())
	vals, err := array.Values(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)
}

func TestSqueeze(t *testing.T) {
	out, err := Squeeze(array.Zeros(1, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, out.Shape())
}
