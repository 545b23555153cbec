package blocks

import (
	"fmt"

	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/parameters"
)

// PrimitiveBlock is a single gate acting on one target qubit, optionally
// conditioned on one control qubit.
type PrimitiveBlock struct {
	gate    Gate
	target  int
	control int // -1 when uncontrolled
	param   parameters.Expr
}

func newPrimitive(gate Gate, target, control int, angle any) *PrimitiveBlock {
	if target < 0 {
		exceptions.Panicf("blocks: negative target qubit %d for %s", target, gate)
	}
	if control == target {
		exceptions.Panicf("blocks: control and target coincide on qubit %d for %s", target, gate)
	}
	b := &PrimitiveBlock{gate: gate, target: target, control: control}
	if angle != nil {
		b.param = parameters.Coerce(angle)
	}
	return b
}

// Gate returns the gate kind.
func (b *PrimitiveBlock) Gate() Gate { return b.gate }

// Target returns the target qubit.
func (b *PrimitiveBlock) Target() int { return b.target }

// Control returns the control qubit, or -1 when the gate is uncontrolled.
func (b *PrimitiveBlock) Control() int { return b.control }

// Param returns the angle expression, or nil for non-parametric gates.
func (b *PrimitiveBlock) Param() parameters.Expr { return b.param }

// NQubits implements AbstractBlock.
func (b *PrimitiveBlock) NQubits() int {
	n := b.target + 1
	if b.control >= n {
		n = b.control + 1
	}
	return n
}

// Qubits implements AbstractBlock.
func (b *PrimitiveBlock) Qubits() []int {
	if b.control < 0 {
		return []int{b.target}
	}
	if b.control < b.target {
		return []int{b.control, b.target}
	}
	return []int{b.target, b.control}
}

// String implements fmt.Stringer.
func (b *PrimitiveBlock) String() string {
	switch {
	case b.control >= 0 && b.param != nil:
		return fmt.Sprintf("C%s(%d,%d,%s)", b.gate, b.control, b.target, b.param)
	case b.control >= 0:
		return fmt.Sprintf("C%s(%d,%d)", b.gate, b.control, b.target)
	case b.param != nil:
		return fmt.Sprintf("%s(%d,%s)", b.gate, b.target, b.param)
	}
	return fmt.Sprintf("%s(%d)", b.gate, b.target)
}

// I applies the identity on a qubit.
func I(target int) *PrimitiveBlock { return newPrimitive(GateI, target, -1, nil) }

// X applies the Pauli-X gate.
func X(target int) *PrimitiveBlock { return newPrimitive(GateX, target, -1, nil) }

// Y applies the Pauli-Y gate.
func Y(target int) *PrimitiveBlock { return newPrimitive(GateY, target, -1, nil) }

// Z applies the Pauli-Z gate.
func Z(target int) *PrimitiveBlock { return newPrimitive(GateZ, target, -1, nil) }

// H applies the Hadamard gate.
func H(target int) *PrimitiveBlock { return newPrimitive(GateH, target, -1, nil) }

// S applies the phase gate.
func S(target int) *PrimitiveBlock { return newPrimitive(GateS, target, -1, nil) }

// T applies the T gate.
func T(target int) *PrimitiveBlock { return newPrimitive(GateT, target, -1, nil) }

// RX applies a rotation around X. The angle may be a numeric literal, a
// parameter name (string), a *parameters.Parameter or any parameters.Expr.
func RX(target int, angle any) *PrimitiveBlock { return newPrimitive(GateRX, target, -1, angle) }

// RY applies a rotation around Y.
func RY(target int, angle any) *PrimitiveBlock { return newPrimitive(GateRY, target, -1, angle) }

// RZ applies a rotation around Z.
func RZ(target int, angle any) *PrimitiveBlock { return newPrimitive(GateRZ, target, -1, angle) }

// CNOT applies a controlled-X gate.
func CNOT(control, target int) *PrimitiveBlock { return newPrimitive(GateX, target, control, nil) }

// CZ applies a controlled-Z gate.
func CZ(control, target int) *PrimitiveBlock { return newPrimitive(GateZ, target, control, nil) }

// CRX applies a controlled rotation around X.
func CRX(control, target int, angle any) *PrimitiveBlock {
	return newPrimitive(GateRX, target, control, angle)
}

// CRY applies a controlled rotation around Y.
func CRY(control, target int, angle any) *PrimitiveBlock {
	return newPrimitive(GateRY, target, control, angle)
}

// CRZ applies a controlled rotation around Z.
func CRZ(control, target int, angle any) *PrimitiveBlock {
	return newPrimitive(GateRZ, target, control, angle)
}
