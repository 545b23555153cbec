package backend_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

func TestEmbeddingEvaluatesExpressions(t *testing.T) {
	x := parameters.Feature("x")
	embed := backend.NewEmbedding(map[string]parameters.Expr{
		"x":     x,
		"(3*x)": parameters.Scale(3, x),
	})

	out, err := embed(nil, backend.ParamValues{"x": tensor.FromSlice([]float64{0.5, 1.0})})
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 1.0}, out["x"].Value())
	require.Equal(t, []float64{1.5, 3.0}, out["(3*x)"].Value())
}

func TestEmbeddingBroadcastsScalars(t *testing.T) {
	x := parameters.Feature("x")
	y := parameters.Feature("y")
	embed := backend.NewEmbedding(map[string]parameters.Expr{"x": x, "y": y})

	out, err := embed(nil, backend.ParamValues{
		"x": tensor.Scalar(0.25),
		"y": tensor.FromSlice([]float64{1, 2, 3}),
	})
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.25, 0.25}, out["x"].Value())
	require.Equal(t, []float64{1, 2, 3}, out["y"].Value())
}

func TestEmbeddingBatchMismatch(t *testing.T) {
	x := parameters.Feature("x")
	embed := backend.NewEmbedding(map[string]parameters.Expr{"x": x})

	_, err := embed(nil, backend.ParamValues{
		"x": tensor.FromSlice([]float64{1, 2}),
		"y": tensor.FromSlice([]float64{1, 2, 3}),
	})
	var batchErr *types.BatchSizeMismatchError
	require.ErrorAs(t, err, &batchErr)
}

func TestEmbeddingIdempotent(t *testing.T) {
	// Re-embedding an embedded mapping of plainly named parameters is a
	// fixed point.
	x := parameters.Feature("x")
	embed := backend.NewEmbedding(map[string]parameters.Expr{"x": x})

	first, err := embed(nil, backend.ParamValues{"x": tensor.FromSlice([]float64{0.1, 0.9})})
	require.NoError(t, err)
	second, err := embed(nil, first)
	require.NoError(t, err)
	require.Equal(t, first["x"].Value(), second["x"].Value())
}

func TestEmbeddingValuesOverrideInitialParams(t *testing.T) {
	theta := parameters.Variational("theta", 0.2)
	embed := backend.NewEmbedding(map[string]parameters.Expr{"theta": theta})
	params := backend.InitialParameters([]*parameters.Parameter{theta})
	require.True(t, params["theta"].RequiresGrad())

	out, err := embed(params, nil)
	require.NoError(t, err)
	require.InDelta(t, 0.2, out["theta"].At(0), 1e-15)

	out, err = embed(params, backend.ParamValues{"theta": tensor.Scalar(1.7)})
	require.NoError(t, err)
	require.InDelta(t, 1.7, out["theta"].At(0), 1e-15)
}

func TestEmbeddingPreservesDifferentiability(t *testing.T) {
	x := parameters.Feature("x")
	embed := backend.NewEmbedding(map[string]parameters.Expr{"sin(x)": parameters.Sin(x)})

	xs := tensor.FromSlice([]float64{0.3, 1.1}).SetRequiresGrad(true)
	out, err := embed(nil, backend.ParamValues{"x": xs})
	require.NoError(t, err)
	require.True(t, out["sin(x)"].RequiresGrad())

	out["sin(x)"].Backward()
	for i, xv := range xs.Value() {
		require.InDelta(t, math.Cos(xv), xs.Grad().At(i), 1e-12)
	}
}

func TestInitialParametersSkipsFeatures(t *testing.T) {
	params := backend.InitialParameters([]*parameters.Parameter{
		parameters.Feature("x"),
		parameters.Variational("theta", 0.4),
		parameters.Fixed(2.5),
	})
	require.Len(t, params, 2)
	require.NotContains(t, params, "x")
}
