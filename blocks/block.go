// Package blocks defines the structural description of a quantum program: a
// tree of primitive gates, composite blocks (sequential, parallel, sum) and
// analog pulse segments. Blocks are immutable once constructed; backends
// compile them, they are never executed directly.
//
// Observables are ordinary blocks restricted to Hermitian-operator semantics
// (Pauli gates combined with Add, Scale, Chain and Kron).
package blocks

import (
	"github.com/n-toscano/qadence/parameters"
)

// AbstractBlock is a node in the operation tree.
type AbstractBlock interface {
	// NQubits returns the minimal register size able to host this block:
	// the highest referenced qubit index plus one. Global analog blocks
	// return 1 (they act on whatever register the circuit supplies).
	NQubits() int

	// Qubits returns the qubit support in ascending order. Global analog
	// blocks return nil.
	Qubits() []int

	String() string
}

// Parameters walks the tree and collects every named parameter referenced by
// a parametric block, in traversal order, with duplicates removed.
func Parameters(b AbstractBlock) []*parameters.Parameter {
	seen := map[string]bool{}
	var out []*parameters.Parameter
	var walk func(b AbstractBlock)
	collect := func(e parameters.Expr) {
		if e == nil {
			return
		}
		for _, p := range e.Parameters() {
			if !seen[p.Name()] {
				seen[p.Name()] = true
				out = append(out, p)
			}
		}
	}
	walk = func(b AbstractBlock) {
		switch v := b.(type) {
		case *PrimitiveBlock:
			collect(v.param)
		case *ChainBlock:
			for _, c := range v.blocks {
				walk(c)
			}
		case *KronBlock:
			for _, c := range v.blocks {
				walk(c)
			}
		case *AddBlock:
			for _, c := range v.blocks {
				walk(c)
			}
		case *ScaleBlock:
			walk(v.block)
		case *TaggedBlock:
			walk(v.block)
		case *ConstantAnalogRotation:
			collect(v.duration)
			collect(v.omega)
			collect(v.phase)
			collect(v.delta)
		}
	}
	walk(b)
	return out
}

// VariationalParameters returns only the trainable parameters of a block.
func VariationalParameters(b AbstractBlock) []*parameters.Parameter {
	var out []*parameters.Parameter
	for _, p := range Parameters(b) {
		if p.Trainable() {
			out = append(out, p)
		}
	}
	return out
}

func mergeSupport(blocks []AbstractBlock) []int {
	seen := map[int]bool{}
	var out []int
	for _, b := range blocks {
		for _, q := range b.Qubits() {
			if !seen[q] {
				seen[q] = true
				out = append(out, q)
			}
		}
	}
	sortInts(out)
	return out
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func maxNQubits(blocks []AbstractBlock) int {
	n := 0
	for _, b := range blocks {
		if bn := b.NQubits(); bn > n {
			n = bn
		}
	}
	return n
}
