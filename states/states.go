// Package states holds batched complex statevectors and the in-place
// operator-application kernels shared by the simulator backends.
//
// Storage convention: amplitudes are indexed big-endian, i.e. qubit 0 maps to
// the most significant bit of the basis index. Little-endian output is
// produced by permuting on the way out; the internal layout never changes.
package states

import (
	"math"
	"math/cmplx"
	"math/rand"
	"strconv"

	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/types"
)

// Counter counts sampled bitstrings for one batch element.
type Counter map[string]int

// Batch is a batch of statevectors over the same qubit count.
type Batch struct {
	nQubits int
	amps    [][]complex128
}

// Zero creates a batch of all-zero basis states |0...0>.
func Zero(nQubits, batch int) *Batch {
	if nQubits <= 0 || batch <= 0 {
		exceptions.Panicf("states.Zero: invalid size (%d qubits, batch %d)", nQubits, batch)
	}
	amps := make([][]complex128, batch)
	for i := range amps {
		amps[i] = make([]complex128, 1<<nQubits)
		amps[i][0] = 1
	}
	return &Batch{nQubits: nQubits, amps: amps}
}

// FromAmplitudes wraps raw amplitude slices into a batch, taking ownership of
// amps. Every slice must have length 2^nQubits.
func FromAmplitudes(nQubits int, amps [][]complex128) *Batch {
	dim := 1 << nQubits
	for i, a := range amps {
		if len(a) != dim {
			exceptions.Panicf("states.FromAmplitudes: element %d has dimension %d, want %d", i, len(a), dim)
		}
	}
	return &Batch{nQubits: nQubits, amps: amps}
}

// NQubits returns the qubit count.
func (b *Batch) NQubits() int { return b.nQubits }

// BatchSize returns the number of batch elements.
func (b *Batch) BatchSize() int { return len(b.amps) }

// Amplitudes returns a copy of the statevector of one batch element.
func (b *Batch) Amplitudes(i int) []complex128 {
	return append([]complex128{}, b.amps[i]...)
}

// Probabilities returns the measurement distribution per batch element under
// the given endianness: element k is the probability of the bitstring that k
// spells in that convention.
func (b *Batch) Probabilities(endianness types.Endianness) [][]float64 {
	dim := 1 << b.nQubits
	out := make([][]float64, len(b.amps))
	for i, amp := range b.amps {
		p := make([]float64, dim)
		for k := 0; k < dim; k++ {
			idx := k
			if endianness == types.LittleEndian {
				idx = reverseBits(k, b.nQubits)
			}
			m := cmplx.Abs(amp[idx])
			p[k] = m * m
		}
		out[i] = p
	}
	return out
}

// Sample draws nShots measurement outcomes per batch element from the final
// state. The supplied rng makes runs reproducible; it is the only source of
// randomness.
func (b *Batch) Sample(nShots int, rng *rand.Rand, endianness types.Endianness) []Counter {
	probs := b.Probabilities(endianness)
	out := make([]Counter, len(probs))
	for i, p := range probs {
		// Cumulative distribution, then nShots inverse-CDF draws.
		cdf := make([]float64, len(p))
		acc := 0.0
		for k, pk := range p {
			acc += pk
			cdf[k] = acc
		}
		counts := Counter{}
		for s := 0; s < nShots; s++ {
			r := rng.Float64() * acc
			k := searchCDF(cdf, r)
			counts[Bitstring(k, b.nQubits)]++
		}
		out[i] = counts
	}
	return out
}

// ChangeEndianness returns a copy of the batch with amplitudes permuted to
// the opposite qubit-to-bit mapping. Applying it twice is the identity.
func (b *Batch) ChangeEndianness() *Batch {
	amps := make([][]complex128, len(b.amps))
	for i, amp := range b.amps {
		permuted := make([]complex128, len(amp))
		for k := range amp {
			permuted[reverseBits(k, b.nQubits)] = amp[k]
		}
		amps[i] = permuted
	}
	return &Batch{nQubits: b.nQubits, amps: amps}
}

// Norm returns the L2 norm of one batch element.
func (b *Batch) Norm(i int) float64 {
	acc := 0.0
	for _, a := range b.amps[i] {
		m := cmplx.Abs(a)
		acc += m * m
	}
	return math.Sqrt(acc)
}

// Inner returns <a|b> for two statevectors of equal dimension.
func Inner(a, b []complex128) complex128 {
	var acc complex128
	for i := range a {
		acc += cmplx.Conj(a[i]) * b[i]
	}
	return acc
}

// Bitstring spells basis index k over n bits, most significant first.
func Bitstring(k, n int) string {
	s := strconv.FormatInt(int64(k), 2)
	for len(s) < n {
		s = "0" + s
	}
	return s
}

// BitStride returns the index stride of qubit q in an n-qubit state under the
// big-endian storage convention.
func BitStride(q, n int) int {
	return 1 << (n - 1 - q)
}

func reverseBits(k, n int) int {
	out := 0
	for i := 0; i < n; i++ {
		out = out<<1 | (k>>i)&1
	}
	return out
}

func searchCDF(cdf []float64, r float64) int {
	lo, hi := 0, len(cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cdf[mid] < r {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
