// Package qadence is the user-facing execution layer: Run, Sample and
// Expectation evaluate quantum circuits on any registered backend from a
// single call, normalizing several input shapes into one pipeline of
// convert, embed and execute.
//
// Accepted input shapes, tried in order:
//
//   - a *circuit.QuantumCircuit
//   - a *register.Register followed by a block
//   - a qubit count followed by a block
//   - a bare block (the register is synthesized from its width)
//
// Expectation additionally takes the observable, a single block or a slice
// of blocks, after the shape prefix. Everything else is tuned through
// functional options.
package qadence

import (
	"github.com/n-toscano/qadence/backend"

	// Register the built-in backends.
	_ "github.com/n-toscano/qadence/backend/pulse"
	_ "github.com/n-toscano/qadence/backend/statevector"

	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/register"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

type options struct {
	values      backend.ParamValues
	state       *states.Batch
	backendName types.BackendName
	config      any
	endianness  types.Endianness
	nShots      int
	seed        int64
	diffMode    types.DiffMode
	diffOpts    []backend.DiffOption
}

func defaultOptions() *options {
	return &options{
		backendName: types.BackendStateVector,
		endianness:  types.BigEndian,
		nShots:      backend.DefaultNShots,
		diffMode:    types.DiffModeNone,
	}
}

// Option customizes a single Run, Sample or Expectation call.
type Option func(*options)

// WithValues supplies values for the circuit's feature parameters and
// overrides for its variational parameters.
func WithValues(values backend.ParamValues) Option {
	return func(o *options) { o.values = values }
}

// WithState sets the initial state; the default is the all-zero basis state.
func WithState(s *states.Batch) Option {
	return func(o *options) { o.state = s }
}

// WithBackend selects the backend by registered name; the default is the
// statevector simulator.
func WithBackend(name types.BackendName) Option {
	return func(o *options) { o.backendName = name }
}

// WithConfiguration passes a configuration value to the backend constructor.
func WithConfiguration(config any) Option {
	return func(o *options) { o.config = config }
}

// WithEndianness sets the qubit-to-bit mapping of outputs; the default is
// big-endian (qubit 0 is the most significant bit).
func WithEndianness(e types.Endianness) Option {
	return func(o *options) { o.endianness = e }
}

// WithNShots sets the number of measurement shots Sample draws.
func WithNShots(n int) Option {
	return func(o *options) { o.nShots = n }
}

// WithSeed seeds Sample's randomness; equal seeds give equal counts.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithDiffMode makes Expectation track gradients under the given mode.
// Without it expectation values are plain numbers.
func WithDiffMode(mode types.DiffMode) Option {
	return func(o *options) { o.diffMode = mode }
}

// WithShiftPrefactor tunes the parameter-shift magnitude used by
// DiffModeGPSR.
func WithShiftPrefactor(p float64) Option {
	return func(o *options) { o.diffOpts = append(o.diffOpts, backend.WithShiftPrefactor(p)) }
}

// splitArgs separates the positional arguments from the options.
func splitArgs(args []any) (positional []any, opts []Option) {
	for _, a := range args {
		if opt, ok := a.(Option); ok {
			opts = append(opts, opt)
			continue
		}
		positional = append(positional, a)
	}
	return positional, opts
}

// parseCircuit consumes the circuit shape from the front of the positional
// arguments.
func parseCircuit(op string, pos []any) (*circuit.QuantumCircuit, []any, error) {
	if len(pos) == 0 {
		return nil, nil, &types.UnsupportedInputError{Op: op, Value: nil}
	}
	switch v := pos[0].(type) {
	case *circuit.QuantumCircuit:
		return v, pos[1:], nil
	case *register.Register:
		if len(pos) >= 2 {
			if b, ok := pos[1].(blocks.AbstractBlock); ok {
				return circuit.New(v, b), pos[2:], nil
			}
		}
		return nil, nil, &types.UnsupportedInputError{Op: op, Value: pos[0]}
	case int:
		if len(pos) >= 2 {
			if b, ok := pos[1].(blocks.AbstractBlock); ok {
				return circuit.FromQubits(v, b), pos[2:], nil
			}
		}
		return nil, nil, &types.UnsupportedInputError{Op: op, Value: pos[0]}
	case blocks.AbstractBlock:
		return circuit.FromBlock(v), pos[1:], nil
	}
	return nil, nil, &types.UnsupportedInputError{Op: op, Value: pos[0]}
}

// parseObservables consumes the observable argument: a block or a block
// slice.
func parseObservables(op string, pos []any) ([]blocks.AbstractBlock, []any, error) {
	if len(pos) == 0 {
		return nil, nil, &types.UnsupportedInputError{Op: op, Value: nil}
	}
	switch v := pos[0].(type) {
	case []blocks.AbstractBlock:
		return v, pos[1:], nil
	case blocks.AbstractBlock:
		return []blocks.AbstractBlock{v}, pos[1:], nil
	}
	return nil, nil, &types.UnsupportedInputError{Op: op, Value: pos[0]}
}

// prepare resolves the backend and converts the circuit, then embeds the
// user values.
func prepare(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock, o *options) (backend.Backend, *backend.Converted, backend.ParamValues, error) {
	b, err := backend.New(o.backendName, o.config)
	if err != nil {
		return nil, nil, nil, err
	}
	conv, err := b.Convert(c, observables)
	if err != nil {
		return nil, nil, nil, err
	}
	pv, err := conv.Embed(conv.Params, o.values)
	if err != nil {
		return nil, nil, nil, err
	}
	return b, conv, pv, nil
}

// Run propagates the initial state through the circuit and returns the final
// wavefunction batch. The output never tracks gradients.
func Run(args ...any) (*states.Batch, error) {
	pos, opts := splitArgs(args)
	c, rest, err := parseCircuit("run", pos)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &types.UnsupportedInputError{Op: "run", Value: rest[0]}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	b, conv, pv, err := prepare(c, nil, o)
	if err != nil {
		return nil, err
	}
	return b.Run(conv.Circuit, pv.Detach(), backend.RunParams{State: o.state, Endianness: o.endianness})
}

// Sample draws measurement counts from the circuit output, one counter per
// batch element.
func Sample(args ...any) ([]states.Counter, error) {
	pos, opts := splitArgs(args)
	c, rest, err := parseCircuit("sample", pos)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &types.UnsupportedInputError{Op: "sample", Value: rest[0]}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	b, conv, pv, err := prepare(c, nil, o)
	if err != nil {
		return nil, err
	}
	return b.Sample(conv.Circuit, pv.Detach(), backend.SampleParams{
		RunParams: backend.RunParams{State: o.state, Endianness: o.endianness},
		NShots:    o.nShots,
		Seed:      o.seed,
	})
}

// Expectation evaluates observable expectation values over the circuit
// output, shaped [batch] for a single observable and [batch, observables]
// otherwise. Gradients are only tracked when a differentiation mode is
// selected with WithDiffMode.
func Expectation(args ...any) (*tensor.Tensor, error) {
	pos, opts := splitArgs(args)
	c, rest, err := parseCircuit("expectation", pos)
	if err != nil {
		return nil, err
	}
	observables, rest, err := parseObservables("expectation", rest)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &types.UnsupportedInputError{Op: "expectation", Value: rest[0]}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	b, conv, pv, err := prepare(c, observables, o)
	if err != nil {
		return nil, err
	}
	diff, err := backend.NewDifferentiable(b, o.diffMode, o.diffOpts...)
	if err != nil {
		return nil, err
	}
	return diff.Expectation(conv.Circuit, conv.Observables, pv, backend.RunParams{State: o.state, Endianness: o.endianness})
}
