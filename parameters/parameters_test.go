package parameters_test

import (
	"math"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/tensor"
)

func TestParameterKinds(t *testing.T) {
	x := parameters.Feature("x")
	require.Equal(t, "x", x.Name())
	require.False(t, x.Trainable())
	_, has := x.InitialValue()
	require.False(t, has)

	theta := parameters.Variational("theta", 0.5)
	require.True(t, theta.Trainable())
	v, has := theta.InitialValue()
	require.True(t, has)
	require.Equal(t, 0.5, v)

	f1, f2 := parameters.Fixed(1.0), parameters.Fixed(1.0)
	require.NotEqual(t, f1.Name(), f2.Name(), "identical literals must stay distinct")
}

func TestExprEval(t *testing.T) {
	x := parameters.Feature("x")
	y := parameters.Feature("y")
	// 3*x + exp(y)/2
	e := parameters.Add(parameters.Scale(3, x), parameters.Div(parameters.Exp(y), parameters.Num(2)))

	values := map[string]*tensor.Tensor{
		"x": tensor.FromSlice([]float64{0.1, 0.2}),
		"y": tensor.FromSlice([]float64{1.0, 2.0}),
	}
	got := e.Eval(values)
	require.Equal(t, 2, got.Size())
	for i := 0; i < 2; i++ {
		want := 3*values["x"].At(i) + math.Exp(values["y"].At(i))/2
		require.InDelta(t, want, got.At(i), 1e-12)
	}
}

func TestExprEvalDifferentiable(t *testing.T) {
	x := parameters.Feature("x")
	e := parameters.Sin(parameters.Scale(2, x))
	xs := tensor.FromSlice([]float64{0.3, 0.9}).SetRequiresGrad(true)
	out := e.Eval(map[string]*tensor.Tensor{"x": xs})
	require.True(t, out.RequiresGrad())
	out.Backward()
	for i, xv := range xs.Value() {
		require.InDelta(t, 2*math.Cos(2*xv), xs.Grad().At(i), 1e-12)
	}
}

func TestEvalIdempotent(t *testing.T) {
	x := parameters.Feature("x")
	e := parameters.Mul(x, parameters.Cos(x))
	values := map[string]*tensor.Tensor{"x": tensor.FromSlice([]float64{0.4, 0.8, 1.2})}
	first := e.Eval(values).Value()
	second := e.Eval(values).Value()
	require.Equal(t, first, second)
}

func TestMissingFeatureParameterPanics(t *testing.T) {
	x := parameters.Feature("x")
	exception := exceptions.Try(func() { x.Eval(map[string]*tensor.Tensor{}) })
	require.NotNil(t, exception)
}

func TestCoerce(t *testing.T) {
	require.Equal(t, "theta", parameters.Coerce("theta").(*parameters.Parameter).Name())
	fixed := parameters.Coerce(math.Pi / 2).(*parameters.Parameter)
	v, has := fixed.InitialValue()
	require.True(t, has)
	require.InDelta(t, math.Pi/2, v, 1e-12)

	e := parameters.Coerce(parameters.Feature("x"))
	require.Equal(t, "x", e.String())

	exception := exceptions.Try(func() { parameters.Coerce(struct{}{}) })
	require.NotNil(t, exception)
}

func TestTrainable(t *testing.T) {
	require.True(t, parameters.Trainable(parameters.Scale(2, parameters.Variational("w", 0))))
	require.False(t, parameters.Trainable(parameters.Scale(2, parameters.Feature("x"))))
}
