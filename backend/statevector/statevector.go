// Package statevector implements the reference discrete-gate backend: a
// dense statevector simulator over []complex128 amplitudes.
//
// The backend is natively differentiable: Expectation computes exact
// gradients with respect to every tracked parameter through adjoint
// differentiation (one reverse sweep per observable) and splices them into
// the autodiff graph, so DiffModeAD works end to end, including through
// symbolic parameter expressions.
package statevector

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
	"github.com/n-toscano/qadence/types/xslices"
)

// Name is the identifier the backend registers under.
const Name = types.BackendStateVector

func init() {
	backend.RegisterBackend(Name, func(config any) (backend.Backend, error) {
		if err := validateConfig(config); err != nil {
			return nil, err
		}
		return &Backend{}, nil
	})
}

// Backend is the statevector simulator.
type Backend struct{}

// Compile-time check that the interface is implemented.
var _ backend.Backend = &Backend{}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// SupportsAD implements backend.Backend: the simulation is internally
// differentiable via adjoint differentiation.
func (b *Backend) SupportsAD() bool { return true }

func validateConfig(config any) error {
	switch v := config.(type) {
	case nil:
		return nil
	case map[string]any:
		if len(v) != 0 {
			return &types.InvalidConfigurationError{
				Backend: Name,
				Reason:  fmt.Sprintf("unrecognized options %v (the statevector backend takes none)", xslices.SortedKeys(v)),
			}
		}
		return nil
	}
	return &types.InvalidConfigurationError{Backend: Name, Reason: fmt.Sprintf("unsupported configuration type %T", config)}
}

// op is one compiled gate application.
type op struct {
	gate    blocks.Gate
	target  int
	control int // -1 when uncontrolled

	// key identifies the embedded angle, empty for non-parametric gates.
	key string
}

// Circuit is the backend-native circuit: a flat gate program.
type Circuit struct {
	nQubits int
	ops     []op
}

// NQubits implements backend.NativeCircuit.
func (c *Circuit) NQubits() int { return c.nQubits }

// Observable is the backend-native observable; it is applied directly from
// its block form.
type Observable struct {
	block blocks.AbstractBlock
}

// Convert implements backend.Backend.
func (b *Backend) Convert(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock) (*backend.Converted, error) {
	exprs := map[string]parameters.Expr{}
	nc := &Circuit{nQubits: c.NQubits()}
	if err := flatten(c.Block(), nc, exprs); err != nil {
		return nil, err
	}

	conv := &backend.Converted{
		Circuit: nc,
		Embed:   backend.NewEmbedding(exprs),
		Params:  backend.InitialParameters(c.Parameters()),
	}
	for _, obs := range observables {
		conv.Observables = append(conv.Observables, &Observable{block: obs})
	}
	return conv, nil
}

func flatten(b blocks.AbstractBlock, nc *Circuit, exprs map[string]parameters.Expr) error {
	switch v := b.(type) {
	case *blocks.PrimitiveBlock:
		o := op{gate: v.Gate(), target: v.Target(), control: v.Control()}
		if p := v.Param(); p != nil {
			o.key = p.String()
			exprs[o.key] = p
		}
		nc.ops = append(nc.ops, o)
		return nil
	case *blocks.ChainBlock:
		for _, c := range v.Blocks() {
			if err := flatten(c, nc, exprs); err != nil {
				return err
			}
		}
		return nil
	case *blocks.KronBlock:
		for _, c := range v.Blocks() {
			if err := flatten(c, nc, exprs); err != nil {
				return err
			}
		}
		return nil
	case *blocks.TaggedBlock:
		return flatten(v.Block(), nc, exprs)
	}
	return &types.UnsupportedOperationError{Backend: Name, Block: b.String()}
}

// angleAt reads the angle of one batch element, broadcasting scalars.
func angleAt(t *tensor.Tensor, b int) float64 {
	if t.IsScalar() {
		return t.At(0)
	}
	return t.At(b)
}

// simulate runs the gate program for every batch element and returns the raw
// final amplitudes.
func (b *Backend) simulate(nc *Circuit, pv backend.ParamValues, batch int, initial *states.Batch) ([][]complex128, error) {
	for _, o := range nc.ops {
		if o.key != "" && pv[o.key] == nil {
			return nil, errors.Errorf("statevector: missing embedded parameter %q", o.key)
		}
	}
	if initial != nil {
		if initial.NQubits() != nc.nQubits {
			return nil, errors.Errorf("statevector: initial state has %d qubits, circuit has %d", initial.NQubits(), nc.nQubits)
		}
		if bs := initial.BatchSize(); bs != 1 && bs != batch {
			return nil, &types.BatchSizeMismatchError{Name: "state", Got: bs, Want: batch}
		}
	}

	amps := make([][]complex128, batch)
	for i := 0; i < batch; i++ {
		var amp []complex128
		switch {
		case initial == nil:
			amp = make([]complex128, 1<<nc.nQubits)
			amp[0] = 1
		case initial.BatchSize() == 1:
			amp = initial.Amplitudes(0)
		default:
			amp = initial.Amplitudes(i)
		}
		for _, o := range nc.ops {
			theta := 0.0
			if o.key != "" {
				theta = angleAt(pv[o.key], i)
			}
			states.ApplyGateMatrix(amp, o.gate.Matrix(theta), o.target, o.control, nc.nQubits)
		}
		amps[i] = amp
	}
	return amps, nil
}

func (b *Backend) nativeCircuit(nc backend.NativeCircuit) (*Circuit, error) {
	c, ok := nc.(*Circuit)
	if !ok {
		return nil, errors.Errorf("statevector: foreign native circuit of type %T", nc)
	}
	return c, nil
}

// Run implements backend.Backend.
func (b *Backend) Run(nc backend.NativeCircuit, pv backend.ParamValues, p backend.RunParams) (*states.Batch, error) {
	c, err := b.nativeCircuit(nc)
	if err != nil {
		return nil, err
	}
	batch, err := pv.BatchSize()
	if err != nil {
		return nil, err
	}
	amps, err := b.simulate(c, pv, batch, p.State)
	if err != nil {
		return nil, err
	}
	out := states.FromAmplitudes(c.nQubits, amps)
	if p.Endianness == types.LittleEndian {
		out = out.ChangeEndianness()
	}
	return out, nil
}

// Sample implements backend.Backend.
func (b *Backend) Sample(nc backend.NativeCircuit, pv backend.ParamValues, p backend.SampleParams) ([]states.Counter, error) {
	c, err := b.nativeCircuit(nc)
	if err != nil {
		return nil, err
	}
	batch, err := pv.BatchSize()
	if err != nil {
		return nil, err
	}
	amps, err := b.simulate(c, pv, batch, p.State)
	if err != nil {
		return nil, err
	}
	nShots := p.NShots
	if nShots <= 0 {
		nShots = backend.DefaultNShots
	}
	rng := rand.New(rand.NewSource(p.Seed))
	return states.FromAmplitudes(c.nQubits, amps).Sample(nShots, rng, p.Endianness), nil
}

// Expectation implements backend.Backend. When any embedded parameter used
// by the circuit is gradient-tracked, the output is attached to the autodiff
// graph with exact adjoint-differentiation gradients.
func (b *Backend) Expectation(nc backend.NativeCircuit, observables []backend.NativeObservable, pv backend.ParamValues, p backend.RunParams) (*tensor.Tensor, error) {
	c, err := b.nativeCircuit(nc)
	if err != nil {
		return nil, err
	}
	if len(observables) == 0 {
		return nil, errors.New("statevector: expectation requires at least one observable")
	}
	obs := make([]blocks.AbstractBlock, len(observables))
	for i, o := range observables {
		no, ok := o.(*Observable)
		if !ok {
			return nil, errors.Errorf("statevector: foreign native observable of type %T", o)
		}
		obs[i] = no.block
	}
	batch, err := pv.BatchSize()
	if err != nil {
		return nil, err
	}
	amps, err := b.simulate(c, pv, batch, p.State)
	if err != nil {
		return nil, err
	}
	return b.expectationFromStates(c, obs, pv, batch, amps), nil
}
