// Package models provides the trainable layers on top of the execution
// layer: QuantumModel binds a circuit, observables, a backend and a
// differentiation mode into one reusable object holding a single compiled
// conversion; QNN adds input-feature ordering and an optional output
// transform on top.
package models

import (
	"github.com/pkg/errors"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

type options struct {
	backendName types.BackendName
	config      any
	diffMode    types.DiffMode
	diffOpts    []backend.DiffOption
}

// Option customizes a model.
type Option func(*options)

// WithBackend selects the backend by registered name.
func WithBackend(name types.BackendName) Option {
	return func(o *options) { o.backendName = name }
}

// WithConfiguration passes a configuration value to the backend constructor.
func WithConfiguration(config any) Option {
	return func(o *options) { o.config = config }
}

// WithDiffMode selects how Expectation computes gradients. The default,
// DiffModeNone, disables gradient tracking.
func WithDiffMode(mode types.DiffMode) Option {
	return func(o *options) { o.diffMode = mode }
}

// WithShiftPrefactor tunes the parameter-shift magnitude under DiffModeGPSR.
func WithShiftPrefactor(p float64) Option {
	return func(o *options) { o.diffOpts = append(o.diffOpts, backend.WithShiftPrefactor(p)) }
}

// QuantumModel holds one circuit compiled for one backend, together with the
// observables and differentiation mode it is evaluated under. The compiled
// conversion is reused across every call; only the variational parameter
// values are mutable, through ResetVParams.
type QuantumModel struct {
	circuit     *circuit.QuantumCircuit
	observables []blocks.AbstractBlock

	backend backend.Backend
	diff    *backend.DifferentiableBackend
	conv    *backend.Converted
}

// NewQuantumModel compiles the circuit and observables for the configured
// backend. The default backend is the statevector simulator with
// DiffModeNone.
func NewQuantumModel(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock, opts ...Option) (*QuantumModel, error) {
	o := &options{backendName: types.BackendStateVector, diffMode: types.DiffModeNone}
	for _, opt := range opts {
		opt(o)
	}

	b, err := backend.New(o.backendName, o.config)
	if err != nil {
		return nil, err
	}
	diff, err := backend.NewDifferentiable(b, o.diffMode, o.diffOpts...)
	if err != nil {
		return nil, err
	}
	conv, err := b.Convert(c, observables)
	if err != nil {
		return nil, errors.WithMessagef(err, "compiling circuit for backend %q", b.Name())
	}
	return &QuantumModel{
		circuit:     c,
		observables: observables,
		backend:     b,
		diff:        diff,
		conv:        conv,
	}, nil
}

// Circuit returns the abstract circuit the model was built from.
func (m *QuantumModel) Circuit() *circuit.QuantumCircuit { return m.circuit }

// Backend returns the backend the model runs on.
func (m *QuantumModel) Backend() backend.Backend { return m.backend }

// DiffMode returns the differentiation mode Expectation uses.
func (m *QuantumModel) DiffMode() types.DiffMode { return m.diff.Mode() }

func (m *QuantumModel) embed(values backend.ParamValues) (backend.ParamValues, error) {
	return m.conv.Embed(m.conv.Params, values)
}

// Run propagates the initial state through the circuit. The output never
// tracks gradients.
func (m *QuantumModel) Run(values backend.ParamValues, p backend.RunParams) (*states.Batch, error) {
	pv, err := m.embed(values)
	if err != nil {
		return nil, err
	}
	return m.diff.Run(m.conv.Circuit, pv, p)
}

// Sample draws measurement counts from the circuit output.
func (m *QuantumModel) Sample(values backend.ParamValues, p backend.SampleParams) ([]states.Counter, error) {
	pv, err := m.embed(values)
	if err != nil {
		return nil, err
	}
	return m.diff.Sample(m.conv.Circuit, pv, p)
}

// Expectation evaluates the model's observables, with gradient support
// according to the configured differentiation mode.
func (m *QuantumModel) Expectation(values backend.ParamValues, p backend.RunParams) (*tensor.Tensor, error) {
	if len(m.observables) == 0 {
		return nil, errors.New("model has no observables to evaluate")
	}
	pv, err := m.embed(values)
	if err != nil {
		return nil, err
	}
	return m.diff.Expectation(m.conv.Circuit, m.conv.Observables, pv, p)
}

// VParams returns the variational parameter leaves, keyed by name. The
// tensors are the live gradient leaves: after Backward on an expectation,
// their Grad holds the accumulated gradient.
func (m *QuantumModel) VParams() backend.ParamValues {
	out := backend.ParamValues{}
	for name, t := range m.conv.Params {
		if t.RequiresGrad() {
			out[name] = t
		}
	}
	return out
}

// ResetVParams replaces the values of the named variational parameters,
// dropping any accumulated gradients.
func (m *QuantumModel) ResetVParams(values map[string]float64) error {
	for name, v := range values {
		t, ok := m.conv.Params[name]
		if !ok || !t.RequiresGrad() {
			return errors.Errorf("no variational parameter %q in model", name)
		}
		m.conv.Params[name] = tensor.Scalar(v).SetRequiresGrad(true)
	}
	return nil
}

// QNN is a quantum neural network: a QuantumModel with a fixed ordering of
// input features and an optional transform applied to the expectation
// output.
type QNN struct {
	*QuantumModel
	inputs    []string
	transform func(*tensor.Tensor) *tensor.Tensor
}

// NewQNN builds a QNN. inputs names the feature parameters in the order
// Forward expects them.
func NewQNN(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock, inputs []string, opts ...Option) (*QNN, error) {
	m, err := NewQuantumModel(c, observables, opts...)
	if err != nil {
		return nil, err
	}
	return &QNN{QuantumModel: m, inputs: append([]string{}, inputs...)}, nil
}

// SetTransform installs an output transform applied to every Forward result.
func (q *QNN) SetTransform(f func(*tensor.Tensor) *tensor.Tensor) { q.transform = f }

// Forward evaluates the network on the given feature tensors, matched
// positionally against the input ordering.
func (q *QNN) Forward(xs ...*tensor.Tensor) (*tensor.Tensor, error) {
	if len(xs) != len(q.inputs) {
		return nil, errors.Errorf("network takes %d inputs, got %d", len(q.inputs), len(xs))
	}
	values := make(backend.ParamValues, len(xs))
	for i, x := range xs {
		values[q.inputs[i]] = x
	}
	out, err := q.Expectation(values, backend.RunParams{})
	if err != nil {
		return nil, err
	}
	if q.transform != nil {
		out = q.transform(out)
	}
	return out, nil
}
