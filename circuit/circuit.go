// Package circuit defines the canonical circuit representation every call
// shape is normalized to: a register plus a root block.
package circuit

import (
	"fmt"

	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/register"
)

// QuantumCircuit is an immutable pairing of a register and a root block.
// Every qubit referenced by the block must fit the register.
type QuantumCircuit struct {
	reg   *register.Register
	block blocks.AbstractBlock
}

// New creates a circuit over an explicit register.
func New(reg *register.Register, block blocks.AbstractBlock) *QuantumCircuit {
	if n := block.NQubits(); n > reg.N() {
		exceptions.Panicf("circuit: block references qubit %d but register has only %d qubits", n-1, reg.N())
	}
	return &QuantumCircuit{reg: reg, block: block}
}

// FromQubits creates a circuit over a default line register of n qubits.
func FromQubits(n int, block blocks.AbstractBlock) *QuantumCircuit {
	return New(register.Line(n), block)
}

// FromBlock creates a circuit over a line register sized to the block's
// highest referenced qubit.
func FromBlock(block blocks.AbstractBlock) *QuantumCircuit {
	return FromQubits(block.NQubits(), block)
}

// Register returns the circuit's register.
func (c *QuantumCircuit) Register() *register.Register { return c.reg }

// Block returns the root block.
func (c *QuantumCircuit) Block() blocks.AbstractBlock { return c.block }

// NQubits returns the register size.
func (c *QuantumCircuit) NQubits() int { return c.reg.N() }

// Parameters returns the named parameters referenced anywhere in the circuit.
func (c *QuantumCircuit) Parameters() []*parameters.Parameter {
	return blocks.Parameters(c.block)
}

// String implements fmt.Stringer.
func (c *QuantumCircuit) String() string {
	return fmt.Sprintf("QuantumCircuit(%d, %s)", c.reg.N(), c.block)
}
