package blocks

import (
	"fmt"
	"math"

	"github.com/n-toscano/qadence/parameters"
)

// DefaultOmega is the drive amplitude, in rad/µs, used by the AnalogRX and
// AnalogRY shorthands.
const DefaultOmega = 2 * math.Pi

// ConstantAnalogRotation is a pulse segment with constant amplitude, phase
// and detuning, applied globally to every qubit of the register. The
// effective single-qubit Hamiltonian is
//
//	H/ħ = Ω/2·(cos φ·X − sin φ·Y) − δ·N
//
// with N = (I−Z)/2; multi-qubit registers additionally pick up the
// distance-dependent interaction term supplied by the backend.
type ConstantAnalogRotation struct {
	duration parameters.Expr // ns
	omega    parameters.Expr // rad/µs
	phase    parameters.Expr // rad
	delta    parameters.Expr // rad/µs
}

// AnalogRot builds a constant pulse segment. Every argument accepts the same
// representations as gate angles (literal, name, parameter, expression).
func AnalogRot(duration, omega, phase, delta any) *ConstantAnalogRotation {
	return &ConstantAnalogRotation{
		duration: parameters.Coerce(duration),
		omega:    parameters.Coerce(omega),
		phase:    parameters.Coerce(phase),
		delta:    parameters.Coerce(delta),
	}
}

// AnalogRX rotates every qubit around X by the given angle, driving at
// DefaultOmega: duration = 1000·angle/Ω ns.
func AnalogRX(angle any) *ConstantAnalogRotation {
	a := parameters.Coerce(angle)
	return &ConstantAnalogRotation{
		duration: parameters.Scale(1000/DefaultOmega, a),
		omega:    parameters.Num(DefaultOmega),
		phase:    parameters.Num(0),
		delta:    parameters.Num(0),
	}
}

// AnalogRY rotates every qubit around Y by the given angle.
func AnalogRY(angle any) *ConstantAnalogRotation {
	a := parameters.Coerce(angle)
	return &ConstantAnalogRotation{
		duration: parameters.Scale(1000/DefaultOmega, a),
		omega:    parameters.Num(DefaultOmega),
		phase:    parameters.Num(-math.Pi / 2),
		delta:    parameters.Num(0),
	}
}

// Wait idles the register for the given duration (ns). Interaction between
// qubits still acts during the wait.
func Wait(duration any) *ConstantAnalogRotation {
	return &ConstantAnalogRotation{
		duration: parameters.Coerce(duration),
		omega:    parameters.Num(0),
		phase:    parameters.Num(0),
		delta:    parameters.Num(0),
	}
}

// Duration returns the duration expression (ns).
func (b *ConstantAnalogRotation) Duration() parameters.Expr { return b.duration }

// Omega returns the amplitude expression (rad/µs).
func (b *ConstantAnalogRotation) Omega() parameters.Expr { return b.omega }

// Phase returns the phase expression (rad).
func (b *ConstantAnalogRotation) Phase() parameters.Expr { return b.phase }

// Delta returns the detuning expression (rad/µs).
func (b *ConstantAnalogRotation) Delta() parameters.Expr { return b.delta }

// NQubits implements AbstractBlock. Analog blocks are global, so any register
// of at least one qubit hosts them.
func (b *ConstantAnalogRotation) NQubits() int { return 1 }

// Qubits implements AbstractBlock: global support.
func (b *ConstantAnalogRotation) Qubits() []int { return nil }

// String implements fmt.Stringer.
func (b *ConstantAnalogRotation) String() string {
	return fmt.Sprintf("AnalogRot(t=%s,omega=%s,phase=%s,delta=%s)", b.duration, b.omega, b.phase, b.delta)
}
