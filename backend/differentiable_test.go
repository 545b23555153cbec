package backend_test

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/backend/backendtest"
	"github.com/n-toscano/qadence/backend/pulse"
	"github.com/n-toscano/qadence/backend/statevector"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/constructors"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

func TestADRequiresNativeSupport(t *testing.T) {
	pb := must.M1(backend.New(types.BackendPulse, nil))
	_, err := backend.NewDifferentiable(pb, types.DiffModeAD)
	var modeErr *types.UnsupportedDiffModeError
	require.ErrorAs(t, err, &modeErr)
	require.Equal(t, "pulse", modeErr.Backend)

	sv := must.M1(backend.New(types.BackendStateVector, nil))
	d := must.M1(backend.NewDifferentiable(sv, types.DiffModeAD))
	require.Equal(t, types.DiffModeAD, d.Mode())
}

func TestNoneModeDropsGradients(t *testing.T) {
	sv := must.M1(backend.New(types.BackendStateVector, nil))
	d := must.M1(backend.NewDifferentiable(sv, types.DiffModeNone))

	c := circuit.FromQubits(1, blocks.RX(0, "x"))
	conv := must.M1(sv.Convert(c, []blocks.AbstractBlock{blocks.Z(0)}))
	xs := tensor.FromSlice([]float64{0.4}).SetRequiresGrad(true)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))

	ev := must.M1(d.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	require.False(t, ev.RequiresGrad())
	require.InDelta(t, math.Cos(0.4), ev.At(0), 1e-12)
}

func TestGPSRMatchesADOnDigitalCircuit(t *testing.T) {
	// The pi/2 shift is exact for single-qubit rotations, so GPSR and
	// adjoint differentiation agree to machine precision.
	setup := backendtest.Setup{
		Circuit:     circuit.FromQubits(1, blocks.RX(0, "x")),
		Observable:  blocks.Z(0),
		BackendName: types.BackendStateVector,
		Param:       "x",
	}
	points := tensor.Linspace(0.05, 2*math.Pi, 25).Value()

	setup.DiffMode = types.DiffModeAD
	adVals, adGrads := backendtest.Sweep(t, setup, points)

	setup.DiffMode = types.DiffModeGPSR
	gpsrVals, gpsrGrads := backendtest.Sweep(t, setup, points)

	backendtest.RequireClose(t, adVals, gpsrVals, 1e-9)
	backendtest.RequireClose(t, adGrads, gpsrGrads, 1e-9)
}

func TestGPSRMatchesADOnBatchedObservables(t *testing.T) {
	// Two observables over a batched sweep share one set of shifted
	// evaluations, and the spliced gradients must still match adjoint
	// differentiation to machine precision.
	sv := must.M1(backend.New(types.BackendStateVector, nil))
	c := circuit.FromQubits(2, blocks.Chain(blocks.RX(0, "x"), blocks.RY(1, "x")))
	obs := []blocks.AbstractBlock{blocks.Z(0), constructors.TotalMagnetization(2)}
	conv := must.M1(sv.Convert(c, obs))

	eval := func(mode types.DiffMode) (values, grads []float64) {
		d := must.M1(backend.NewDifferentiable(sv, mode))
		xs := tensor.Linspace(0.2, 2.8, 6).SetRequiresGrad(true)
		pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))
		ev := must.M1(d.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
		require.Equal(t, []int{6, 2}, ev.Dims())
		ev.Backward()
		return ev.Value(), xs.Grad().Value()
	}

	adVals, adGrads := eval(types.DiffModeAD)
	gpsrVals, gpsrGrads := eval(types.DiffModeGPSR)
	backendtest.RequireClose(t, adVals, gpsrVals, 1e-9)
	backendtest.RequireClose(t, adGrads, gpsrGrads, 1e-9)
}

func TestGPSRAcrossBackendsAgreement(t *testing.T) {
	// A global analog rotation at large spacing against its digital
	// counterpart: values agree tightly, shift-rule gradients within the
	// acceptance band.
	points := tensor.Linspace(0.1, 2*math.Pi, 20).Value()

	analog := backendtest.Setup{
		Circuit:        circuit.FromQubits(2, blocks.AnalogRX("x")),
		Observable:     constructors.TotalMagnetization(2),
		BackendName:    types.BackendPulse,
		Config:         pulse.Config{Spacing: 30},
		DiffMode:       types.DiffModeGPSR,
		ShiftPrefactor: 0.2,
		Param:          "x",
	}
	analogVals, analogGrads := backendtest.Sweep(t, analog, points)

	digital := backendtest.Setup{
		Circuit: circuit.FromQubits(2, blocks.Kron(
			blocks.RX(0, "x"), blocks.RX(1, "x"),
		)),
		Observable:  constructors.TotalMagnetization(2),
		BackendName: types.BackendStateVector,
		DiffMode:    types.DiffModeAD,
		Param:       "x",
	}
	digitalVals, digitalGrads := backendtest.Sweep(t, digital, points)

	require.Less(t, backendtest.MeanAbsDeviation(t, analogVals, digitalVals), 0.01)
	require.Less(t, backendtest.MeanAbsDeviation(t, analogGrads, digitalGrads), 0.1)
}

func TestRunAndSampleNeverTrack(t *testing.T) {
	sv := must.M1(backend.New(statevector.Name, nil))
	d := must.M1(backend.NewDifferentiable(sv, types.DiffModeAD))

	c := circuit.FromQubits(1, blocks.RX(0, "x"))
	conv := must.M1(sv.Convert(c, nil))
	xs := tensor.FromSlice([]float64{0.9}).SetRequiresGrad(true)
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"x": xs}))

	out := must.M1(d.Run(conv.Circuit, pv, backend.RunParams{}))
	require.Equal(t, 1, out.BatchSize())
	samples := must.M1(d.Sample(conv.Circuit, pv, backend.SampleParams{NShots: 5, Seed: 1}))
	require.Len(t, samples, 1)
	require.Nil(t, xs.Grad())
}
