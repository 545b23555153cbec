package circuit_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/blocks"
	"github.com/n-toscano/qadence/circuit"
	"github.com/n-toscano/qadence/register"
)

func TestConstruction(t *testing.T) {
	b := blocks.Chain(blocks.RX(0, "x"), blocks.CNOT(0, 1))
	c := circuit.FromQubits(2, b)
	require.Equal(t, 2, c.NQubits())
	require.Equal(t, b, c.Block())

	auto := circuit.FromBlock(b)
	require.Equal(t, 2, auto.NQubits())
}

func TestQubitBoundInvariant(t *testing.T) {
	b := blocks.RX(3, 0.1)
	exception := exceptions.Try(func() { circuit.New(register.Line(2), b) })
	require.NotNil(t, exception)
}

func TestParameters(t *testing.T) {
	c := circuit.FromQubits(2, blocks.Chain(blocks.RX(0, "x"), blocks.RY(1, "x")))
	require.Len(t, c.Parameters(), 1)
	require.Equal(t, "x", c.Parameters()[0].Name())
}
