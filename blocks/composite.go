package blocks

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/types/xslices"
)

// ChainBlock composes child blocks sequentially: the first child is applied
// first.
type ChainBlock struct {
	blocks []AbstractBlock
}

// Chain composes blocks sequentially.
func Chain(bs ...AbstractBlock) *ChainBlock {
	return &ChainBlock{blocks: bs}
}

// Blocks returns the children in application order.
func (b *ChainBlock) Blocks() []AbstractBlock { return b.blocks }

// NQubits implements AbstractBlock.
func (b *ChainBlock) NQubits() int { return maxNQubits(b.blocks) }

// Qubits implements AbstractBlock.
func (b *ChainBlock) Qubits() []int { return mergeSupport(b.blocks) }

// String implements fmt.Stringer.
func (b *ChainBlock) String() string { return compositeString("chain", b.blocks) }

// KronBlock composes child blocks in parallel. Children must act on disjoint
// qubits.
type KronBlock struct {
	blocks []AbstractBlock
}

// Kron composes blocks in parallel; the supports must be disjoint.
func Kron(bs ...AbstractBlock) *KronBlock {
	seen := map[int]bool{}
	for _, child := range bs {
		for _, q := range child.Qubits() {
			if seen[q] {
				exceptions.Panicf("blocks.Kron: overlapping support on qubit %d", q)
			}
			seen[q] = true
		}
	}
	return &KronBlock{blocks: bs}
}

// Blocks returns the children.
func (b *KronBlock) Blocks() []AbstractBlock { return b.blocks }

// NQubits implements AbstractBlock.
func (b *KronBlock) NQubits() int { return maxNQubits(b.blocks) }

// Qubits implements AbstractBlock.
func (b *KronBlock) Qubits() []int { return mergeSupport(b.blocks) }

// String implements fmt.Stringer.
func (b *KronBlock) String() string { return compositeString("kron", b.blocks) }

// AddBlock is the sum of its children. Sums are only meaningful as
// observables; no backend accepts them inside a circuit.
type AddBlock struct {
	blocks []AbstractBlock
}

// Add sums blocks into an observable.
func Add(bs ...AbstractBlock) *AddBlock {
	return &AddBlock{blocks: bs}
}

// Blocks returns the summed children.
func (b *AddBlock) Blocks() []AbstractBlock { return b.blocks }

// NQubits implements AbstractBlock.
func (b *AddBlock) NQubits() int { return maxNQubits(b.blocks) }

// Qubits implements AbstractBlock.
func (b *AddBlock) Qubits() []int { return mergeSupport(b.blocks) }

// String implements fmt.Stringer.
func (b *AddBlock) String() string { return compositeString("add", b.blocks) }

// ScaleBlock multiplies a block by a numeric coefficient. Like AddBlock it is
// an observable construct.
type ScaleBlock struct {
	coeff float64
	block AbstractBlock
}

// Scale multiplies a block by a coefficient.
func Scale(coeff float64, b AbstractBlock) *ScaleBlock {
	return &ScaleBlock{coeff: coeff, block: b}
}

// Coeff returns the coefficient.
func (b *ScaleBlock) Coeff() float64 { return b.coeff }

// Block returns the scaled block.
func (b *ScaleBlock) Block() AbstractBlock { return b.block }

// NQubits implements AbstractBlock.
func (b *ScaleBlock) NQubits() int { return b.block.NQubits() }

// Qubits implements AbstractBlock.
func (b *ScaleBlock) Qubits() []int { return b.block.Qubits() }

// String implements fmt.Stringer.
func (b *ScaleBlock) String() string { return fmt.Sprintf("%g*%s", b.coeff, b.block) }

// TaggedBlock attaches a label to a block, e.g. to find ansatz layers later.
type TaggedBlock struct {
	tag   string
	block AbstractBlock
}

// Tag labels a block.
func Tag(b AbstractBlock, tag string) *TaggedBlock {
	return &TaggedBlock{tag: tag, block: b}
}

// TagName returns the label.
func (b *TaggedBlock) TagName() string { return b.tag }

// Block returns the labeled block.
func (b *TaggedBlock) Block() AbstractBlock { return b.block }

// NQubits implements AbstractBlock.
func (b *TaggedBlock) NQubits() int { return b.block.NQubits() }

// Qubits implements AbstractBlock.
func (b *TaggedBlock) Qubits() []int { return b.block.Qubits() }

// String implements fmt.Stringer.
func (b *TaggedBlock) String() string { return fmt.Sprintf("%s:%s", b.tag, b.block) }

// ByTag returns every block below root labeled with tag, in traversal order.
func ByTag(root AbstractBlock, tag string) []AbstractBlock {
	var out []AbstractBlock
	var walk func(b AbstractBlock)
	walk = func(b AbstractBlock) {
		switch v := b.(type) {
		case *TaggedBlock:
			if v.tag == tag {
				out = append(out, v.block)
			}
			walk(v.block)
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
		}
	}
	walk(root)
	return out
}

func compositeString(name string, bs []AbstractBlock) string {
	parts := xslices.Map(bs, func(b AbstractBlock) string { return b.String() })
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ","))
}
