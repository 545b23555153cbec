// Package backendtest provides helpers shared by backend test suites, in
// particular a sweep harness that evaluates an observable expectation and
// its gradient over a range of parameter values, so different backends and
// differentiation modes can be checked against each other.
package backendtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

// Setup describes one expectation pipeline to sweep: a circuit with a single
// free parameter, one observable, and the backend plus differentiation mode
// evaluating it.
type Setup struct {
	Circuit    *circuit.QuantumCircuit
	Observable blocks.AbstractBlock

	BackendName string
	Config      any

	DiffMode types.DiffMode
	// ShiftPrefactor overrides the shift-rule prefactor when non-zero.
	ShiftPrefactor float64

	// Param is the name of the swept feature parameter.
	Param string
}

// Sweep evaluates the setup's expectation and its gradient with respect to
// the swept parameter at every point, in one batched call.
func Sweep(t *testing.T, s Setup, points []float64) (values, grads []float64) {
	t.Helper()

	b, err := backend.New(s.BackendName, s.Config)
	require.NoError(t, err)
	var opts []backend.DiffOption
	if s.ShiftPrefactor != 0 {
		opts = append(opts, backend.WithShiftPrefactor(s.ShiftPrefactor))
	}
	diff, err := backend.NewDifferentiable(b, s.DiffMode, opts...)
	require.NoError(t, err)

	conv, err := b.Convert(s.Circuit, []blocks.AbstractBlock{s.Observable})
	require.NoError(t, err)

	xs := tensor.FromSlice(points).SetRequiresGrad(true)
	pv, err := conv.Embed(conv.Params, backend.ParamValues{s.Param: xs})
	require.NoError(t, err)

	ev, err := diff.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{})
	require.NoError(t, err)
	require.True(t, ev.RequiresGrad())
	ev.Backward()
	return ev.Value(), xs.Grad().Value()
}

// MeanAbsDeviation returns the mean absolute elementwise deviation between
// two equal-length series.
func MeanAbsDeviation(t *testing.T, a, b []float64) float64 {
	t.Helper()
	require.Equal(t, len(a), len(b))
	d := make([]float64, len(a))
	floats.SubTo(d, a, b)
	acc := 0.0
	for _, v := range d {
		acc += math.Abs(v)
	}
	return acc / float64(len(d))
}

// RequireClose asserts elementwise agreement within tol.
func RequireClose(t *testing.T, want, got []float64, tol float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	require.True(t, floats.EqualApprox(want, got, tol), "want %v, got %v", want, got)
}
