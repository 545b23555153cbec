package types

import (
	"fmt"
	"strings"
)

// The execution layer fails fast: every error below is returned to the caller
// at the point of detection, before any simulation work is started. There is
// no silent fallback to another backend or differentiation mode.

// UnsupportedInputError reports a call to Run, Sample or Expectation whose
// positional arguments match none of the accepted shapes.
type UnsupportedInputError struct {
	// Op is the entry point that rejected the call ("run", "sample",
	// "expectation").
	Op string

	// Value is the offending argument.
	Value any
}

// Error implements the error interface.
func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("%s: unsupported input of type %T (want a circuit, a register+block, a qubit-count+block or a block)", e.Op, e.Value)
}

// UnknownBackendError reports a backend identifier that was never registered.
type UnknownBackendError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q, registered backends: %s", e.Name, strings.Join(e.Available, ", "))
}

// InvalidConfigurationError reports a backend configuration with unrecognized
// option keys or out-of-range values.
type InvalidConfigurationError struct {
	Backend string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for backend %q: %s", e.Backend, e.Reason)
}

// UnsupportedOperationError reports a circuit containing a block type the
// chosen backend cannot compile, e.g. an analog block given to the discrete
// statevector backend.
type UnsupportedOperationError struct {
	Backend string
	Block   string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("backend %q cannot simulate block %s", e.Backend, e.Block)
}

// UnsupportedDiffModeError reports a differentiation mode the backend cannot
// honor, e.g. native autodiff requested on a backend whose simulation is not
// internally differentiable.
type UnsupportedDiffModeError struct {
	Backend string
	Mode    DiffMode
}

// Error implements the error interface.
func (e *UnsupportedDiffModeError) Error() string {
	return fmt.Sprintf("backend %q does not support diff mode %q", e.Backend, e.Mode)
}

// BatchSizeMismatchError reports parameter-value tensors with inconsistent
// batch dimensions within one call.
type BatchSizeMismatchError struct {
	// Name is the parameter whose tensor disagrees with the rest.
	Name string

	Got, Want int
}

// Error implements the error interface.
func (e *BatchSizeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q has batch size %d, want %d", e.Name, e.Got, e.Want)
}
