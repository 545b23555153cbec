// Package constructors provides ready-made circuit ingredients: standard
// observables, feature maps for data encoding, and variational ansätze.
package constructors

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/parameters"
)

// TotalMagnetization returns the sum of Z over all qubits, the workhorse
// observable for magnetization measurements.
func TotalMagnetization(nQubits int) blocks.AbstractBlock {
	terms := make([]blocks.AbstractBlock, nQubits)
	for q := range terms {
		terms[q] = blocks.Z(q)
	}
	return blocks.Add(terms...)
}

// FeatureMap encodes a named feature parameter as an RX rotation on every
// qubit.
func FeatureMap(nQubits int, param string) blocks.AbstractBlock {
	x := parameters.Feature(param)
	rots := make([]blocks.AbstractBlock, nQubits)
	for q := range rots {
		rots[q] = blocks.RX(q, x)
	}
	return blocks.Tag(blocks.Kron(rots...), "FM")
}

// ChebyshevFeatureMap encodes a feature through an arccos-like Chebyshev
// tower: qubit q rotates by (q+1) times the feature angle.
func ChebyshevFeatureMap(nQubits int, param string) blocks.AbstractBlock {
	x := parameters.Feature(param)
	rots := make([]blocks.AbstractBlock, nQubits)
	for q := range rots {
		rots[q] = blocks.RX(q, parameters.Scale(float64(q+1), x))
	}
	return blocks.Tag(blocks.Kron(rots...), "FM")
}

// HEA builds a hardware-efficient ansatz: depth layers of RX/RY/RX rotation
// columns followed by a CNOT entangler chain. Rotation angles are fresh
// variational parameters initialized from rng in [0, 2pi).
func HEA(nQubits, depth int, rng *rand.Rand) blocks.AbstractBlock {
	layers := make([]blocks.AbstractBlock, 0, depth)
	idx := 0
	column := func(gate func(int, any) *blocks.PrimitiveBlock) blocks.AbstractBlock {
		rots := make([]blocks.AbstractBlock, nQubits)
		for q := range rots {
			rots[q] = gate(q, parameters.Variational(fmt.Sprintf("theta_%d", idx), 2*math.Pi*rng.Float64()))
			idx++
		}
		return blocks.Kron(rots...)
	}
	for d := 0; d < depth; d++ {
		layers = append(layers, blocks.Chain(
			column(blocks.RX),
			column(blocks.RY),
			column(blocks.RX),
			entanglerChain(nQubits, false),
		))
	}
	return blocks.Tag(blocks.Chain(layers...), "HEA")
}

// IdentityInitializedAnsatz builds a barren-plateau-mitigation ansatz: each
// layer reads
//
//	RX(alpha) RY(alpha') E RX(0) E_rev RY(-alpha') RX(-alpha)
//
// so the whole block equals the identity at its initial parameters while
// staying as trainable as a plain hardware-efficient ansatz. Left angles
// alpha are drawn from rng in [0, 2pi).
func IdentityInitializedAnsatz(nQubits, depth int, rng *rand.Rand) blocks.AbstractBlock {
	layers := make([]blocks.AbstractBlock, 0, depth)
	for layer := 0; layer < depth; layer++ {
		alpha := make([]float64, 2*nQubits)
		for i := range alpha {
			alpha[i] = 2 * math.Pi * rng.Float64()
		}

		left := func(gate func(int, any) *blocks.PrimitiveBlock, offset int) blocks.AbstractBlock {
			rots := make([]blocks.AbstractBlock, nQubits)
			for q := range rots {
				name := fmt.Sprintf("alpha_%d_%d", layer, q+offset)
				rots[q] = gate(q, parameters.Variational(name, alpha[q+offset]))
			}
			return blocks.Kron(rots...)
		}
		right := func(gate func(int, any) *blocks.PrimitiveBlock, offset int) blocks.AbstractBlock {
			rots := make([]blocks.AbstractBlock, nQubits)
			for q := range rots {
				name := fmt.Sprintf("beta_%d_%d", layer, q+offset)
				rots[q] = gate(q, parameters.Variational(name, -alpha[q+offset]))
			}
			return blocks.Kron(rots...)
		}
		centre := make([]blocks.AbstractBlock, nQubits)
		for q := range centre {
			centre[q] = blocks.RX(q, parameters.Variational(fmt.Sprintf("gamma_%d_%d", layer, q), 0))
		}

		layers = append(layers, blocks.Tag(blocks.Chain(
			left(blocks.RX, 0),
			left(blocks.RY, nQubits),
			entanglerChain(nQubits, false),
			blocks.Kron(centre...),
			entanglerChain(nQubits, true),
			right(blocks.RY, nQubits),
			right(blocks.RX, 0),
		), fmt.Sprintf("BPMA-%d", layer)))
	}
	return blocks.Chain(layers...)
}

func entanglerChain(nQubits int, reversed bool) blocks.AbstractBlock {
	ents := make([]blocks.AbstractBlock, 0, nQubits-1)
	for q := 0; q < nQubits-1; q++ {
		ents = append(ents, blocks.CNOT(q, q+1))
	}
	if reversed {
		for i, j := 0, len(ents)-1; i < j; i, j = i+1, j-1 {
			ents[i], ents[j] = ents[j], ents[i]
		}
	}
	return blocks.Chain(ents...)
}
