package blocks

import (
	"math"
	"math/cmplx"
)

// Gate enumerates the primitive gate kinds.
type Gate int

const (
	GateI Gate = iota
	GateX
	GateY
	GateZ
	GateH
	GateS
	GateT
	GateRX
	GateRY
	GateRZ
)

var gateNames = [...]string{"I", "X", "Y", "Z", "H", "S", "T", "RX", "RY", "RZ"}

// String implements fmt.Stringer.
func (g Gate) String() string {
	if int(g) < len(gateNames) {
		return gateNames[g]
	}
	return "invalid"
}

// IsParametric reports whether the gate takes a rotation angle.
func (g Gate) IsParametric() bool {
	return g == GateRX || g == GateRY || g == GateRZ
}

// Matrix2 is a single-qubit operator in the computational basis.
type Matrix2 [2][2]complex128

// Matrix returns the gate's unitary. theta is ignored for non-parametric
// gates.
func (g Gate) Matrix(theta float64) Matrix2 {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	switch g {
	case GateI:
		return Matrix2{{1, 0}, {0, 1}}
	case GateX:
		return Matrix2{{0, 1}, {1, 0}}
	case GateY:
		return Matrix2{{0, -1i}, {1i, 0}}
	case GateZ:
		return Matrix2{{1, 0}, {0, -1}}
	case GateH:
		h := complex(1/math.Sqrt2, 0)
		return Matrix2{{h, h}, {h, -h}}
	case GateS:
		return Matrix2{{1, 0}, {0, 1i}}
	case GateT:
		return Matrix2{{1, 0}, {0, cmplx.Exp(1i * math.Pi / 4)}}
	case GateRX:
		return Matrix2{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		}
	case GateRY:
		return Matrix2{
			{complex(c, 0), complex(-s, 0)},
			{complex(s, 0), complex(c, 0)},
		}
	case GateRZ:
		return Matrix2{
			{cmplx.Exp(complex(0, -theta/2)), 0},
			{0, cmplx.Exp(complex(0, theta/2))},
		}
	}
	return Matrix2{}
}

// DMatrix returns the entry-wise derivative of the gate's unitary with
// respect to theta. Non-parametric gates return the zero matrix.
func (g Gate) DMatrix(theta float64) Matrix2 {
	c, s := math.Cos(theta/2)/2, math.Sin(theta/2)/2
	switch g {
	case GateRX:
		return Matrix2{
			{complex(-s, 0), complex(0, -c)},
			{complex(0, -c), complex(-s, 0)},
		}
	case GateRY:
		return Matrix2{
			{complex(-s, 0), complex(-c, 0)},
			{complex(c, 0), complex(-s, 0)},
		}
	case GateRZ:
		return Matrix2{
			{complex(0, -0.5) * cmplx.Exp(complex(0, -theta/2)), 0},
			{0, complex(0, 0.5) * cmplx.Exp(complex(0, theta/2))},
		}
	}
	return Matrix2{}
}

// Dagger returns the conjugate transpose.
func (m Matrix2) Dagger() Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}
