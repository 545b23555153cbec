package pulse

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/n-toscano/qadence/register"
	"github.com/n-toscano/qadence/states"
)

// c6 is the van der Waals interaction coefficient for the n=60 Rydberg
// level, in rad·µm⁶/µs.
const c6 = 865723.02

// hamiltonian builds the register Hamiltonian of one constant pulse segment,
// in rad/µs:
//
//	H = Σ_q Ω/2·(cos φ·X_q − sin φ·Y_q) − δ·N_q + Σ_{i<j} C6/r_ij⁶·N_i·N_j
//
// with N = (I−Z)/2. Basis indices follow the big-endian storage convention
// of the states package.
func hamiltonian(reg *register.Register, omega, phase, delta float64) *mat.CDense {
	n := reg.N()
	dim := 1 << n
	h := mat.NewCDense(dim, dim, nil)
	// Drive matrix element <0|h|1> of one qubit.
	drive := complex(omega/2, 0) * cmplx.Exp(complex(0, phase))

	for k := 0; k < dim; k++ {
		diag := 0.0
		for q := 0; q < n; q++ {
			stride := states.BitStride(q, n)
			if k&stride == 0 {
				h.Set(k, k|stride, h.At(k, k|stride)+drive)
			} else {
				h.Set(k, k&^stride, h.At(k, k&^stride)+cmplx.Conj(drive))
				diag -= delta
			}
		}
		for i := 0; i < n; i++ {
			if k&states.BitStride(i, n) == 0 {
				continue
			}
			for j := i + 1; j < n; j++ {
				if k&states.BitStride(j, n) == 0 {
					continue
				}
				diag += c6 / math.Pow(reg.Distance(i, j), 6)
			}
		}
		h.Set(k, k, h.At(k, k)+complex(diag, 0))
	}
	return h
}

// mulTo sets dst = a·b. mat exposes no complex matrix product, so this goes
// through the cblas128 level-3 routine over the raw representations.
func mulTo(dst, a, b *mat.CDense) {
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.RawCMatrix(), b.RawCMatrix(), 0, dst.RawCMatrix())
}

// scaled returns f·a as a fresh matrix.
func scaled(f complex128, a *mat.CDense) *mat.CDense {
	dim, _ := a.Dims()
	out := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			out.Set(i, j, f*a.At(i, j))
		}
	}
	return out
}

func identity(dim int) *mat.CDense {
	out := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// expm computes exp(a) by scaling and squaring around a truncated Taylor
// series. The argument is scaled down until its infinity norm is at most
// 1/2, where 16 Taylor terms reach machine precision.
func expm(a *mat.CDense) *mat.CDense {
	dim, _ := a.Dims()
	norm := 0.0
	for i := 0; i < dim; i++ {
		row := 0.0
		for j := 0; j < dim; j++ {
			row += cmplx.Abs(a.At(i, j))
		}
		norm = math.Max(norm, row)
	}
	squarings := 0
	for norm > 0.5 {
		norm /= 2
		squarings++
	}
	small := scaled(complex(math.Exp2(-float64(squarings)), 0), a)

	sum := identity(dim)
	term := identity(dim)
	for k := 1; k <= 16; k++ {
		next := mat.NewCDense(dim, dim, nil)
		mulTo(next, term, small)
		term = scaled(complex(1/float64(k), 0), next)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				sum.Set(i, j, sum.At(i, j)+term.At(i, j))
			}
		}
	}
	for s := 0; s < squarings; s++ {
		sq := mat.NewCDense(dim, dim, nil)
		mulTo(sq, sum, sum)
		sum = sq
	}
	return sum
}

// applyUnitary returns u·amp.
func applyUnitary(u *mat.CDense, amp []complex128) []complex128 {
	dim := len(amp)
	vec := mat.NewCDense(dim, 1, amp)
	out := mat.NewCDense(dim, 1, nil)
	mulTo(out, u, vec)
	res := make([]complex128, dim)
	for i := range res {
		res[i] = out.At(i, 0)
	}
	return res
}
