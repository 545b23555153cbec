// Package pulse implements the analog backend: circuits are chains of
// constant global drive segments evolved under the Rydberg Hamiltonian of
// the register geometry. The backend is not natively differentiable;
// gradients come from the parameter-shift rule applied by the
// differentiable wrapper.
package pulse

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/n-toscano/qadence/backend"
	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/register"
	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
)

// Name is the identifier the backend registers under.
const Name = types.BackendPulse

// DefaultSpacing is the register scale applied when the configuration does
// not set one, in µm.
const DefaultSpacing = 8.0

// Config tunes the analog device. A zero Spacing selects DefaultSpacing.
type Config struct {
	// Spacing rescales the register coordinates, in µm. Larger spacings
	// weaken the interaction term.
	Spacing float64
}

func init() {
	backend.RegisterBackend(Name, func(config any) (backend.Backend, error) {
		cfg, err := parseConfig(config)
		if err != nil {
			return nil, err
		}
		return &Backend{spacing: cfg.Spacing}, nil
	})
}

// Backend is the pulse-level simulator.
type Backend struct {
	spacing float64
}

// Compile-time check that the interface is implemented.
var _ backend.Backend = &Backend{}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// SupportsAD implements backend.Backend.
func (b *Backend) SupportsAD() bool { return false }

func parseConfig(config any) (*Config, error) {
	cfg := &Config{Spacing: DefaultSpacing}
	switch v := config.(type) {
	case nil:
	case Config:
		if v.Spacing != 0 {
			cfg.Spacing = v.Spacing
		}
	case *Config:
		if v != nil && v.Spacing != 0 {
			cfg.Spacing = v.Spacing
		}
	case map[string]any:
		for key, raw := range v {
			if key != "spacing" {
				return nil, &types.InvalidConfigurationError{
					Backend: Name,
					Reason:  fmt.Sprintf("unrecognized option %q", key),
				}
			}
			switch f := raw.(type) {
			case float64:
				cfg.Spacing = f
			case int:
				cfg.Spacing = float64(f)
			default:
				return nil, &types.InvalidConfigurationError{
					Backend: Name,
					Reason:  fmt.Sprintf("spacing must be numeric, got %T", raw),
				}
			}
		}
	default:
		return nil, &types.InvalidConfigurationError{Backend: Name, Reason: fmt.Sprintf("unsupported configuration type %T", config)}
	}
	if cfg.Spacing <= 0 {
		return nil, &types.InvalidConfigurationError{Backend: Name, Reason: fmt.Sprintf("spacing must be positive, got %v", cfg.Spacing)}
	}
	return cfg, nil
}

// pulseOp is one compiled pulse segment; fields are embedded-parameter keys.
type pulseOp struct {
	duration string
	omega    string
	phase    string
	delta    string
}

// Circuit is the backend-native circuit: a pulse program over a concrete
// register geometry.
type Circuit struct {
	nQubits int
	reg     *register.Register
	pulses  []pulseOp
}

// NQubits implements backend.NativeCircuit.
func (c *Circuit) NQubits() int { return c.nQubits }

// Observable is the backend-native observable; it is applied directly from
// its block form.
type Observable struct {
	block blocks.AbstractBlock
}

// Convert implements backend.Backend. Only chains of constant analog
// rotations are accepted; register coordinates are interpreted in units of
// the configured spacing.
func (b *Backend) Convert(c *circuit.QuantumCircuit, observables []blocks.AbstractBlock) (*backend.Converted, error) {
	exprs := map[string]parameters.Expr{}
	nc := &Circuit{nQubits: c.NQubits(), reg: c.Register().Scaled(b.spacing)}
	if err := collectPulses(c.Block(), nc, exprs); err != nil {
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

func collectPulses(b blocks.AbstractBlock, nc *Circuit, exprs map[string]parameters.Expr) error {
	switch v := b.(type) {
	case *blocks.ConstantAnalogRotation:
		keyOf := func(e parameters.Expr) string {
			k := e.String()
			exprs[k] = e
			return k
		}
		nc.pulses = append(nc.pulses, pulseOp{
			duration: keyOf(v.Duration()),
			omega:    keyOf(v.Omega()),
			phase:    keyOf(v.Phase()),
			delta:    keyOf(v.Delta()),
		})
		return nil
	case *blocks.ChainBlock:
		for _, c := range v.Blocks() {
			if err := collectPulses(c, nc, exprs); err != nil {
				return err
			}
		}
		return nil
	case *blocks.TaggedBlock:
		return collectPulses(v.Block(), nc, exprs)
	}
	return &types.UnsupportedOperationError{Backend: Name, Block: b.String()}
}

// valueAt reads one batch element, broadcasting scalars.
func valueAt(t *tensor.Tensor, b int) float64 {
	if t.IsScalar() {
		return t.At(0)
	}
	return t.At(b)
}

// simulate evolves every batch element through the pulse program and returns
// the raw final amplitudes.
func (b *Backend) simulate(nc *Circuit, pv backend.ParamValues, batch int, initial *states.Batch) ([][]complex128, error) {
	for _, p := range nc.pulses {
		for _, key := range []string{p.duration, p.omega, p.phase, p.delta} {
			if pv[key] == nil {
				return nil, errors.Errorf("pulse: missing embedded parameter %q", key)
			}
		}
	}
	if initial != nil {
		if initial.NQubits() != nc.nQubits {
			return nil, errors.Errorf("pulse: initial state has %d qubits, circuit has %d", initial.NQubits(), nc.nQubits)
		}
		if bs := initial.BatchSize(); bs != 1 && bs != batch {
			return nil, &types.BatchSizeMismatchError{Name: "state", Got: bs, Want: batch}
		}
	}
	klog.V(2).Infof("pulse: simulating %d pulses on %d qubits, batch %d", len(nc.pulses), nc.nQubits, batch)

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
		for _, p := range nc.pulses {
			d := valueAt(pv[p.duration], i)
			if d < 0 {
				return nil, errors.Errorf("pulse: negative duration %v ns", d)
			}
			h := hamiltonian(nc.reg, valueAt(pv[p.omega], i), valueAt(pv[p.phase], i), valueAt(pv[p.delta], i))
			// Durations are in ns, rates in rad/µs.
			u := expm(scaled(complex(0, -d/1000), h))
			amp = applyUnitary(u, amp)
		}
		amps[i] = amp
	}
	return amps, nil
}

func (b *Backend) nativeCircuit(nc backend.NativeCircuit) (*Circuit, error) {
	c, ok := nc.(*Circuit)
	if !ok {
		return nil, errors.Errorf("pulse: foreign native circuit of type %T", nc)
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

// Expectation implements backend.Backend. The result carries no gradient;
// wrap the backend with DiffModeGPSR for derivatives.
func (b *Backend) Expectation(nc backend.NativeCircuit, observables []backend.NativeObservable, pv backend.ParamValues, p backend.RunParams) (*tensor.Tensor, error) {
	c, err := b.nativeCircuit(nc)
	if err != nil {
		return nil, err
	}
	if len(observables) == 0 {
		return nil, errors.New("pulse: expectation requires at least one observable")
	}
	obs := make([]blocks.AbstractBlock, len(observables))
	for i, o := range observables {
		no, ok := o.(*Observable)
		if !ok {
			return nil, errors.Errorf("pulse: foreign native observable of type %T", o)
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

	cols := len(obs)
	data := make([]float64, batch*cols)
	for i, amp := range amps {
		for j, o := range obs {
			lam := states.ApplyBlock(o, amp, c.nQubits)
			data[i*cols+j] = real(states.Inner(amp, lam))
		}
	}
	if cols == 1 {
		return tensor.New(data, batch), nil
	}
	return tensor.New(data, batch, cols), nil
}
