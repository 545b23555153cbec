package states

import (
	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/tensor"
)

// ApplyGateMatrix applies a single-qubit operator to a statevector in place,
// optionally conditioned on a control qubit (control < 0 means none).
func ApplyGateMatrix(amp []complex128, m blocks.Matrix2, target, control, nQubits int) {
	stride := BitStride(target, nQubits)
	var controlMask int
	if control >= 0 {
		controlMask = BitStride(control, nQubits)
	}
	for base := 0; base < len(amp); base++ {
		if base&stride != 0 {
			continue // visit each (0,1) pair once, from its 0 side
		}
		if controlMask != 0 && base&controlMask == 0 {
			continue
		}
		i0, i1 := base, base|stride
		a0, a1 := amp[i0], amp[i1]
		amp[i0] = m[0][0]*a0 + m[0][1]*a1
		amp[i1] = m[1][0]*a0 + m[1][1]*a1
	}
}

// ApplyBlock applies a block with concrete (non-parametric or baked-in)
// parameters to a statevector, returning a new vector. This is the observable
// evaluator: O|psi>. Analog blocks are not operators and are rejected.
func ApplyBlock(b blocks.AbstractBlock, amp []complex128, nQubits int) []complex128 {
	switch v := b.(type) {
	case *blocks.PrimitiveBlock:
		out := append([]complex128{}, amp...)
		ApplyGateMatrix(out, v.Gate().Matrix(constAngle(v.Param())), v.Target(), v.Control(), nQubits)
		return out
	case *blocks.ChainBlock:
		out := amp
		for _, c := range v.Blocks() {
			out = ApplyBlock(c, out, nQubits)
		}
		return out
	case *blocks.KronBlock:
		// Disjoint supports: sequential application is the tensor product.
		out := amp
		for _, c := range v.Blocks() {
			out = ApplyBlock(c, out, nQubits)
		}
		return out
	case *blocks.AddBlock:
		out := make([]complex128, len(amp))
		for _, c := range v.Blocks() {
			term := ApplyBlock(c, amp, nQubits)
			for i := range out {
				out[i] += term[i]
			}
		}
		return out
	case *blocks.ScaleBlock:
		out := ApplyBlock(v.Block(), amp, nQubits)
		coeff := complex(v.Coeff(), 0)
		for i := range out {
			out[i] *= coeff
		}
		return out
	case *blocks.TaggedBlock:
		return ApplyBlock(v.Block(), amp, nQubits)
	}
	exceptions.Panicf("states.ApplyBlock: block %s is not an operator", b)
	return nil
}

func constAngle(e parameters.Expr) float64 {
	if e == nil {
		return 0
	}
	v := e.Eval(map[string]*tensor.Tensor{})
	if !v.IsScalar() {
		exceptions.Panicf("states: operator parameter %s is not a constant", e)
	}
	return v.At(0)
}
