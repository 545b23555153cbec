package constructors_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/backend"
	_ "github.com/n-toscano/qadence/backend/statevector"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/constructors"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

func TestTotalMagnetization(t *testing.T) {
	obs := constructors.TotalMagnetization(3)

	// |000> has magnetization 3.
	amp := []complex128{1, 0, 0, 0, 0, 0, 0, 0}
	lam := states.ApplyBlock(obs, amp, 3)
	require.InDelta(t, 3, real(states.Inner(amp, lam)), 1e-12)

	// |111> has magnetization -3.
	amp = []complex128{0, 0, 0, 0, 0, 0, 0, 1}
	lam = states.ApplyBlock(obs, amp, 3)
	require.InDelta(t, -3, real(states.Inner(amp, lam)), 1e-12)
}

func TestFeatureMap(t *testing.T) {
	fm := constructors.FeatureMap(3, "phi")
	require.Equal(t, []int{0, 1, 2}, fm.Qubits())

	ps := blocks.Parameters(fm)
	require.Len(t, ps, 1)
	require.Equal(t, "phi", ps[0].Name())
	require.Len(t, blocks.ByTag(fm, "FM"), 1)
}

func TestChebyshevFeatureMapTower(t *testing.T) {
	fm := constructors.ChebyshevFeatureMap(2, "phi")
	ps := blocks.Parameters(fm)
	require.Len(t, ps, 1)

	// Qubit 1 rotates twice as fast as qubit 0.
	b := must.M1(backend.New(types.BackendStateVector, nil))
	conv := must.M1(b.Convert(
		circuit.FromQubits(2, fm),
		[]blocks.AbstractBlock{blocks.Z(0), blocks.Z(1)},
	))
	phi := 0.7
	pv := must.M1(conv.Embed(conv.Params, backend.ParamValues{"phi": tensor.Scalar(phi)}))
	ev := must.M1(b.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{}))
	require.InDelta(t, math.Cos(phi), ev.At(0, 0), 1e-12)
	require.InDelta(t, math.Cos(2*phi), ev.At(0, 1), 1e-12)
}

func TestHEAShape(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ansatz := constructors.HEA(4, 3, rng)
	require.Equal(t, 4, ansatz.NQubits())

	// Three rotation columns of four qubits per layer.
	require.Len(t, blocks.VariationalParameters(ansatz), 3*4*3)

	// The same seed reproduces the same initial angles.
	same := constructors.HEA(4, 3, rand.New(rand.NewSource(42)))
	want := blocks.VariationalParameters(ansatz)
	got := blocks.VariationalParameters(same)
	for i := range want {
		wv, _ := want[i].InitialValue()
		gv, _ := got[i].InitialValue()
		require.Equal(t, wv, gv)
	}
}

func TestIdentityInitializedAnsatzParameterCount(t *testing.T) {
	// Wide and deep enough that two-digit layer and qubit indices coexist.
	// Every angle stays distinct: 2n alphas, 2n betas and n gammas per layer.
	rng := rand.New(rand.NewSource(3))
	ansatz := constructors.IdentityInitializedAnsatz(6, 12, rng)
	require.Len(t, blocks.VariationalParameters(ansatz), 5*6*12)
}

func TestIdentityInitializedAnsatzIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ansatz := constructors.IdentityInitializedAnsatz(3, 2, rng)
	require.Len(t, blocks.ByTag(ansatz, "BPMA-0"), 1)
	require.Len(t, blocks.ByTag(ansatz, "BPMA-1"), 1)

	b := must.M1(backend.New(types.BackendStateVector, nil))

	// At its initial parameters the ansatz leaves a superposition intact.
	prep := must.M1(b.Convert(circuit.FromQubits(3, blocks.Chain(
		blocks.H(0), blocks.H(1), blocks.H(2),
	)), nil))
	pv := must.M1(prep.Embed(prep.Params, nil))
	in := must.M1(b.Run(prep.Circuit, pv, backend.RunParams{}))

	conv := must.M1(b.Convert(circuit.FromQubits(3, ansatz), nil))
	pv = must.M1(conv.Embed(conv.Params, nil))
	out := must.M1(b.Run(conv.Circuit, pv, backend.RunParams{State: in}))

	want := in.Amplitudes(0)
	got := out.Amplitudes(0)
	for k := range want {
		require.InDelta(t, real(want[k]), real(got[k]), 1e-10)
		require.InDelta(t, imag(want[k]), imag(got[k]), 1e-10)
	}
}
