package backend

import (
	"math"

	"github.com/pkg/errors"

	"github.com/n-toscano/qadence/states"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types"
	"github.com/n-toscano/qadence/types/xslices"
)

// DefaultShiftPrefactor scales the parameter-shift magnitude: the shift is
// prefactor*pi. The default of 0.5 gives the pi/2 shift that is exact for
// gap-1 generators.
const DefaultShiftPrefactor = 0.5

// DifferentiableBackend wraps a backend with a fixed differentiation mode.
// The mode is chosen at construction and never changes; each call is
// stateless given that mode.
//
//   - DiffModeNone: expectation values are computed with gradient tracking
//     disabled.
//   - DiffModeAD: delegates to the backend under native gradient tracking.
//     Only backends with SupportsAD are accepted.
//   - DiffModeGPSR: evaluates the backend at shifted parameters and attaches
//     the assembled gradient to the autodiff graph as a custom backward
//     rule. First-order only.
type DifferentiableBackend struct {
	backend     Backend
	mode        types.DiffMode
	shiftPrefac float64
}

// DiffOption customizes a DifferentiableBackend.
type DiffOption func(*DifferentiableBackend)

// WithShiftPrefactor sets the shift-rule prefactor (the shift magnitude is
// prefactor*pi). Only meaningful for DiffModeGPSR.
func WithShiftPrefactor(p float64) DiffOption {
	return func(d *DifferentiableBackend) { d.shiftPrefac = p }
}

// NewDifferentiable wraps a backend with a differentiation mode. Requesting
// DiffModeAD on a backend that is not internally differentiable fails with
// UnsupportedDiffModeError.
func NewDifferentiable(b Backend, mode types.DiffMode, opts ...DiffOption) (*DifferentiableBackend, error) {
	if mode == types.DiffModeAD && !b.SupportsAD() {
		return nil, &types.UnsupportedDiffModeError{Backend: b.Name(), Mode: mode}
	}
	d := &DifferentiableBackend{backend: b, mode: mode, shiftPrefac: DefaultShiftPrefactor}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Backend returns the wrapped backend.
func (d *DifferentiableBackend) Backend() Backend { return d.backend }

// Mode returns the fixed differentiation mode.
func (d *DifferentiableBackend) Mode() types.DiffMode { return d.mode }

// Run delegates to the wrapped backend with gradient tracking disabled: Run
// is a non-differentiable entry point regardless of mode.
func (d *DifferentiableBackend) Run(nc NativeCircuit, pv ParamValues, p RunParams) (*states.Batch, error) {
	return d.backend.Run(nc, pv.Detach(), p)
}

// Sample delegates to the wrapped backend with gradient tracking disabled.
func (d *DifferentiableBackend) Sample(nc NativeCircuit, pv ParamValues, p SampleParams) ([]states.Counter, error) {
	return d.backend.Sample(nc, pv.Detach(), p)
}

// Expectation computes the expectation value under the wrapper's mode.
func (d *DifferentiableBackend) Expectation(nc NativeCircuit, observables []NativeObservable, pv ParamValues, p RunParams) (*tensor.Tensor, error) {
	switch d.mode {
	case types.DiffModeAD:
		return d.backend.Expectation(nc, observables, pv, p)
	case types.DiffModeGPSR:
		return d.gpsrExpectation(nc, observables, pv, p)
	default:
		return d.backend.Expectation(nc, observables, pv.Detach(), p)
	}
}

// gpsrExpectation implements the generalized parameter-shift rule: for each
// gradient-tracked parameter theta, dE/dtheta is estimated from two
// evaluations as (E(theta+s) - E(theta-s)) / (2 sin s). The estimate is
// spliced into the autodiff graph through tensor.Custom, so the chain rule
// keeps flowing from the embedded parameters back to the user values.
//
// Cost: two backend evaluations per tracked parameter, on top of the forward
// evaluation. The shifted evaluations are independent of each other.
func (d *DifferentiableBackend) gpsrExpectation(nc NativeCircuit, observables []NativeObservable, pv ParamValues, p RunParams) (*tensor.Tensor, error) {
	base, err := d.backend.Expectation(nc, observables, pv.Detach(), p)
	if err != nil {
		return nil, err
	}

	var tracked []string
	for _, name := range xslices.SortedKeys(pv) {
		if pv[name].RequiresGrad() {
			tracked = append(tracked, name)
		}
	}
	if len(tracked) == 0 {
		return base, nil
	}

	shift := d.shiftPrefac * math.Pi
	coeff := 1 / (2 * math.Sin(shift))

	// dEdp[i] is flat dE/dtheta_i with the shape of base.
	dEdp := make([][]float64, len(tracked))
	for i, name := range tracked {
		shifted := func(s float64) (*tensor.Tensor, error) {
			spv := pv.Detach()
			spv[name] = tensor.AddScalar(spv[name], s)
			return d.backend.Expectation(nc, observables, spv, p)
		}
		plus, err := shifted(shift)
		if err != nil {
			return nil, errors.WithMessagef(err, "shift rule on parameter %q", name)
		}
		minus, err := shifted(-shift)
		if err != nil {
			return nil, errors.WithMessagef(err, "shift rule on parameter %q", name)
		}
		pm, mm := plus.Value(), minus.Value()
		grad := make([]float64, len(pm))
		for k := range grad {
			grad[k] = coeff * (pm[k] - mm[k])
		}
		dEdp[i] = grad
	}

	inputs := make([]*tensor.Tensor, len(tracked))
	for i, name := range tracked {
		inputs[i] = pv[name]
	}
	batch := base.BatchSize()
	cols := base.Size() / batch
	return tensor.Custom(base, inputs, func(upstream []float64) [][]float64 {
		grads := make([][]float64, len(inputs))
		for i, in := range inputs {
			g := make([]float64, in.Size())
			for b := 0; b < batch; b++ {
				idx := 0
				if in.Size() == batch {
					idx = b
				}
				for c := 0; c < cols; c++ {
					g[idx] += upstream[b*cols+c] * dEdp[i][b*cols+c]
				}
			}
			grads[i] = g
		}
		return grads
	}), nil
}
