// Package register models the qubit topology: a qubit count plus an optional
// geometric layout. The layout is irrelevant to discrete-gate backends but
// determines interaction strengths on pulse-level backends.
package register

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/spatial/r2"
)

// Register is a qubit topology. Immutable after construction.
type Register struct {
	n      int
	coords []r2.Vec
}

// New creates a register of n qubits with no geometry. Pulse-level backends
// fall back to a unit-spaced line.
func New(n int) *Register {
	if n <= 0 {
		exceptions.Panicf("register: qubit count must be positive, got %d", n)
	}
	return &Register{n: n}
}

// Line creates a register of n qubits laid out on a line with unit spacing.
func Line(n int) *Register {
	r := New(n)
	r.coords = make([]r2.Vec, n)
	for i := range r.coords {
		r.coords[i] = r2.Vec{X: float64(i)}
	}
	return r
}

// FromCoordinates creates a register with an explicit layout.
func FromCoordinates(coords []r2.Vec) *Register {
	r := New(len(coords))
	r.coords = append([]r2.Vec{}, coords...)
	return r
}

// N returns the number of qubits.
func (r *Register) N() int { return r.n }

// HasLayout reports whether the register carries coordinates.
func (r *Register) HasLayout() bool { return r.coords != nil }

// Coordinates returns a copy of the layout, or nil.
func (r *Register) Coordinates() []r2.Vec {
	if r.coords == nil {
		return nil
	}
	return append([]r2.Vec{}, r.coords...)
}

// Distance returns the Euclidean distance between two qubits. Registers
// without a layout are treated as a unit-spaced line.
func (r *Register) Distance(i, j int) float64 {
	if i < 0 || i >= r.n || j < 0 || j >= r.n {
		exceptions.Panicf("register: qubit pair (%d,%d) out of range for %d qubits", i, j, r.n)
	}
	if r.coords == nil {
		d := float64(i - j)
		if d < 0 {
			d = -d
		}
		return d
	}
	return r2.Norm(r2.Sub(r.coords[i], r.coords[j]))
}

// Scaled returns a copy of the register with all coordinates multiplied by
// factor. Registers without a layout get a line layout first.
func (r *Register) Scaled(factor float64) *Register {
	coords := r.coords
	if coords == nil {
		coords = Line(r.n).coords
	}
	scaled := make([]r2.Vec, len(coords))
	for i, c := range coords {
		scaled[i] = r2.Scale(factor, c)
	}
	return &Register{n: r.n, coords: scaled}
}

// String implements fmt.Stringer.
func (r *Register) String() string {
	if r.coords == nil {
		return fmt.Sprintf("Register(%d)", r.n)
	}
	return fmt.Sprintf("Register(%d, layout)", r.n)
}
