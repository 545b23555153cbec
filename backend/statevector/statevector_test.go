package statevector_test

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/backend/statevector"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

func newBackend(t *testing.T) backend.Backend {
	t.Helper()
	b, err := backend.New(statevector.Name, nil)
	require.NoError(t, err)
	return b
}

func TestFactoryRegistration(t *testing.T) {
	b := newBackend(t)
	require.Equal(t, "statevector", b.Name())
	require.True(t, b.SupportsAD())
}

func TestConfigValidation(t *testing.T) {
	_, err := backend.New(statevector.Name, map[string]any{"bogus": 1})
	var confErr *types.InvalidConfigurationError
	require.ErrorAs(t, err, &confErr)

	_, err = backend.New(statevector.Name, 42)
	require.ErrorAs(t, err, &confErr)
}

func TestRejectsAnalogBlocks(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.Chain(blocks.AnalogRX(0.5)))
	_, err := b.Convert(c, nil)
	var opErr *types.UnsupportedOperationError
	require.ErrorAs(t, err, &opErr)
}

func TestRunRXState(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(1, blocks.RX(0, "x"))
	conv := must.M1(b.Convert(c, nil))

	theta := 1.1
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": tensor.Scalar(theta)}))
	out := must.M1(b.Run(conv.Circuit, pv, backend.RunParams{}))

	amp := out.Amplitudes(0)
	require.InDelta(t, math.Cos(theta/2), real(amp[0]), 1e-12)
	require.InDelta(t, -math.Sin(theta/2), imag(amp[1]), 1e-12)
}

func TestBatchInvariant(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.Chain(blocks.RX(0, "x"), blocks.RY(1, "y")))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Z(0)}))

	values := backend.ParamValues{
		"x": tensor.FromSlice([]float64{0.1, 0.2, 0.3, 0.4, 0.5}),
		"y": tensor.FromSlice([]float64{1, 2, 3, 4, 5}),
	}
	pv := must.M1(conv.Embed(conv.Params, values))

	wf := must.M1(b.Run(conv.Circuit, pv, backend.RunParams{}))
	require.Equal(t, 5, wf.BatchSize())

	samples := must.M1(b.Sample(conv.Circuit, pv, backend.SampleParams{NShots: 10, Seed: 7}))
	require.Len(t, samples, 5)

	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	require.Equal(t, []int{5}, ev.Dims())
}

func TestBatchMismatchFailsFast(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.Chain(blocks.RX(0, "x"), blocks.RY(1, "y")))
	conv := must.M1(b.Convert(c, nil))

	_, err := conv.Embed(conv.Params, backend.ParamValues{
		"x": tensor.FromSlice([]float64{1, 2, 3}),
		"y": tensor.FromSlice([]float64{1, 2}),
	})
	var batchErr *types.BatchSizeMismatchError
	require.ErrorAs(t, err, &batchErr)
}

func TestExpectationRXAnalytic(t *testing.T) {
	// <Z> after RX(theta) on |0> is cos(theta).
	b := newBackend(t)
	c := circuit.FromQubits(1, blocks.RX(0, "x"))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Z(0)}))

	xs := tensor.Linspace(0, 2*math.Pi, 9)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	for i, x := range xs.Value() {
		require.InDelta(t, math.Cos(x), ev.At(i), 1e-12)
	}
}

func TestExpectationMultipleObservables(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.Chain(blocks.H(0), blocks.CNOT(0, 1)))
	obs := []blocks.AbstractBlock{
		blocks.Add(blocks.Z(0), blocks.Z(1)),
		blocks.Kron(blocks.X(0), blocks.X(1)),
	}
	conv := must.M1(b.Convert(c, obs))
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))

	// Bell state: <Z0+Z1> = 0, <X0 X1> = 1.
	require.Equal(t, []int{1, 2}, ev.Dims())
	require.InDelta(t, 0.0, ev.At(0, 0), 1e-12)
	require.InDelta(t, 1.0, ev.At(0, 1), 1e-12)
}

func TestAdjointGradientAnalytic(t *testing.T) {
	// d<Z>/dx after RX(3x) is -3 sin(3x): the gradient flows through the
	// expression evaluation back to the user value.
	b := newBackend(t)
	x := parameters.Feature("x")
	c := circuit.FromQubits(1, blocks.RX(0, parameters.Scale(3, x)))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Z(0)}))

	xs := tensor.FromSlice([]float64{0.2, 0.5, 0.8}).SetRequiresGrad(true)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	require.True(t, ev.RequiresGrad())
	ev.Backward()
	for i, xv := range xs.Value() {
		require.InDelta(t, -3*math.Sin(3*xv), xs.Grad().At(i), 1e-10)
	}
}

func TestAdjointGradientControlled(t *testing.T) {
	// X(0) then CRX(0,1,theta): <Z1> = cos(theta), gradient -sin(theta).
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.Chain(blocks.X(0), blocks.CRX(0, 1, "theta")))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Z(1)}))

	thetas := tensor.FromSlice([]float64{0.3, 1.0, 2.4}).SetRequiresGrad(true)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"theta": thetas}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	ev.Backward()
	for i, th := range thetas.Value() {
		require.InDelta(t, math.Cos(th), ev.At(i), 1e-12)
		require.InDelta(t, -math.Sin(th), thetas.Grad().At(i), 1e-10)
	}
}

func TestSharedParameterGradientsSum(t *testing.T) {
	// RX(x) on two qubits, <Z0+Z1> = 2cos(x), gradient -2 sin(x).
	b := newBackend(t)
	x := parameters.Feature("x")
	c := circuit.FromQubits(2, blocks.Chain(blocks.RX(0, x), blocks.RX(1, x)))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Add(blocks.Z(0), blocks.Z(1))}))

	xs := tensor.FromSlice([]float64{0.4, 1.2}).SetRequiresGrad(true)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	ev.Backward()
	for i, xv := range xs.Value() {
		require.InDelta(t, 2*math.Cos(xv), ev.At(i), 1e-12)
		require.InDelta(t, -2*math.Sin(xv), xs.Grad().At(i), 1e-10)
	}
}

func TestSampleSeededAndEndianness(t *testing.T) {
	b := newBackend(t)
	c := circuit.FromQubits(2, blocks.X(0))
	conv := must.M1(b.Convert(c, nil))
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{}))

	big := must.M1(b.Sample(conv.Circuit, pv, backend.SampleParams{NShots: 50, Seed: 3}))
	require.Equal(t, 50, big[0]["10"])

	little := must.M1(b.Sample(conv.Circuit, pv, backend.SampleParams{
		RunParams: backend.RunParams{Endianness: types.LittleEndian},
		NShots:    50,
		Seed:      3,
	}))
	require.Equal(t, 50, little[0]["01"])
}

func TestConversionResultReusable(t *testing.T) {
	// One Converted serves many parameter sweeps with identical results.
	b := newBackend(t)
	c := circuit.FromQubits(1, blocks.RX(0, "x"))
	conv := must.M1(b.Convert(c, []blocks.AbstractBlock{blocks.Z(0)}))

	values := backend.ParamValues{"x": tensor.FromSlice([]float64{0.7})}
	first := must.M1(b.Expectation(conv.Circuit, conv.Observables, must.M1(conv.Embed(conv.Params, values)), backend.RunParams{}))
	second := must.M1(b.Expectation(conv.Circuit, conv.Observables, must.M1(conv.Embed(conv.Params, values)), backend.RunParams{}))
	require.Equal(t, first.Value(), second.Value())
}
