// Package types holds the small shared types of the qadence execution layer:
// the differentiation-mode and endianness enums, backend identifiers and the
// error taxonomy used across the dispatch facade, the backend factory and the
// backends themselves.
package types

// DiffMode selects how gradients of an expectation value are computed.
//
// A DifferentiableBackend is constructed with exactly one mode and keeps it
// for its lifetime.
type DiffMode int

const (
	// DiffModeNone disables gradient tracking: outputs are plain values.
	DiffModeNone DiffMode = iota

	// DiffModeAD uses the backend's native automatic differentiation. Only
	// valid for backends whose simulation is internally differentiable.
	DiffModeAD

	// DiffModeGPSR estimates gradients with the generalized parameter-shift
	// rule: two shifted evaluations per trainable parameter, combined with
	// analytic coefficients. Works on any backend, first-order only.
	DiffModeGPSR
)

// String implements fmt.Stringer.
func (m DiffMode) String() string {
	switch m {
	case DiffModeNone:
		return "none"
	case DiffModeAD:
		return "ad"
	case DiffModeGPSR:
		return "gpsr"
	}
	return "invalid"
}

// DiffModeFromString converts a mode name ("none", "ad", "gpsr") to a
// DiffMode. The empty string maps to DiffModeNone.
func DiffModeFromString(name string) (mode DiffMode, ok bool) {
	switch name {
	case "none", "":
		return DiffModeNone, true
	case "ad":
		return DiffModeAD, true
	case "gpsr":
		return DiffModeGPSR, true
	}
	return DiffModeNone, false
}

// Endianness is the convention mapping qubit index to bit position in
// measured or sampled output.
type Endianness int

const (
	// BigEndian maps qubit 0 to the most significant bit of a bitstring.
	// This is the default everywhere.
	BigEndian Endianness = iota

	// LittleEndian maps qubit 0 to the least significant bit.
	LittleEndian
)

// String implements fmt.Stringer.
func (e Endianness) String() string {
	if e == LittleEndian {
		return "little"
	}
	return "big"
}

// BackendName identifies a registered backend in the factory.
type BackendName = string

const (
	// BackendStateVector is the reference discrete-gate statevector
	// simulator. It is natively differentiable.
	BackendStateVector BackendName = "statevector"

	// BackendPulse is the pulse-level analog simulator. It is not natively
	// differentiable; use DiffModeGPSR.
	BackendPulse BackendName = "pulse"
)
