// Package backend defines the contract between the execution layer and the
// concrete simulators: the Backend interface with its four capability
// operations (Convert, Run, Sample, Expectation), the conversion result, the
// parameter-embedding machinery, the backend registry and the differentiable
// wrapper that adds gradient support on top of any backend.
//
// Concrete backends live in sub-packages and register themselves at init
// time, following the same pattern as a plugin registry: importing the
// sub-package makes the backend available by name.
package backend

import (
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
	"github.com/n-toscano/qadence/types/xslices"
)

// DefaultNShots is the number of measurement shots drawn when a caller does
// not specify one.
const DefaultNShots = 100

// NativeCircuit is a backend-compiled circuit. It is owned by the backend
// that produced it and must not be mutated by callers.
type NativeCircuit interface {
	NQubits() int
}

// NativeObservable is a backend-compiled observable, opaque to callers.
type NativeObservable any

// ParamValues maps parameter names to batched value tensors. All non-scalar
// tensors in one mapping must share the same batch dimension.
type ParamValues map[string]*tensor.Tensor

// BatchSize returns the common batch dimension, or a BatchSizeMismatchError.
// Scalars broadcast and do not constrain the batch; an empty or all-scalar
// mapping has batch size 1.
func (pv ParamValues) BatchSize() (int, error) {
	batch := 0
	for _, name := range xslices.SortedKeys(pv) {
		t := pv[name]
		if t.IsScalar() {
			continue
		}
		if batch == 0 {
			batch = t.BatchSize()
			continue
		}
		if t.BatchSize() != batch {
			return 0, &types.BatchSizeMismatchError{Name: name, Got: t.BatchSize(), Want: batch}
		}
	}
	if batch == 0 {
		batch = 1
	}
	return batch, nil
}

// Detach returns a copy of the mapping with every tensor detached from the
// autodiff graph.
func (pv ParamValues) Detach() ParamValues {
	out := make(ParamValues, len(pv))
	for name, t := range pv {
		out[name] = t.Detach()
	}
	return out
}

// RequiresGrad reports whether any tensor in the mapping is tracked.
func (pv ParamValues) RequiresGrad() bool {
	for _, t := range pv {
		if t.RequiresGrad() {
			return true
		}
	}
	return false
}

// EmbeddingFn resolves user-facing parameter values into the full native
// parameter mapping the compiled circuit needs, evaluating derived
// expressions along the way. It is pure: identical inputs give identical
// outputs.
type EmbeddingFn func(params, values ParamValues) (ParamValues, error)

// Converted is the result of Backend.Convert: the backend-native circuit and
// observables, the embedding function and the initial parameter mapping.
// It is immutable after creation and may be reused across many parameter
// sweeps, including concurrently.
type Converted struct {
	Circuit     NativeCircuit
	Observables []NativeObservable
	Embed       EmbeddingFn
	Params      ParamValues
}

// RunParams carries the optional arguments of Run and Expectation.
type RunParams struct {
	// State is the initial state; nil means the all-zero basis state.
	State *states.Batch

	// Endianness governs the qubit-to-bit mapping of outputs.
	Endianness types.Endianness
}

// SampleParams carries the optional arguments of Sample.
type SampleParams struct {
	RunParams

	// NShots is the number of measurement outcomes drawn per batch
	// element.
	NShots int

	// Seed seeds the sampling randomness; equal seeds give equal counts.
	Seed int64
}

// Backend is the capability set every simulator must implement.
//
// All operations preserve the batch invariant: the output batch dimension
// equals the batch dimension of the supplied parameter values.
type Backend interface {
	// Name returns the identifier the backend is registered under.
	Name() string

	// SupportsAD reports whether the backend's simulation is internally
	// differentiable, i.e. whether Expectation outputs can carry
	// gradients natively.
	SupportsAD() bool

	// Convert compiles an abstract circuit and optional observables into
	// backend-native form. It fails with UnsupportedOperationError when
	// the circuit contains a block type the backend cannot simulate.
	Convert(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock) (*Converted, error)

	// Run executes the compiled circuit and returns the final state.
	Run(nc NativeCircuit, pv ParamValues, p RunParams) (*states.Batch, error)

	// Sample draws measurement outcomes from the final state, one counter
	// per batch element.
	Sample(nc NativeCircuit, pv ParamValues, p SampleParams) ([]states.Counter, error)

	// Expectation computes <state|observable|state> per batch element,
	// one column per observable.
	Expectation(nc NativeCircuit, observables []NativeObservable, pv ParamValues, p RunParams) (*tensor.Tensor, error)
}
