package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n-toscano/qadence/backend"
	_ "github.com/n-toscano/qadence/backend/pulse"
	_ "github.com/n-toscano/qadence/backend/statevector"
	"github.com/n-toscano/qadence/types"
)

func TestRegisteredBackends(t *testing.T) {
	names := backend.RegisteredBackends()
	require.Contains(t, names, "statevector")
	require.Contains(t, names, "pulse")
	require.IsIncreasing(t, names)
}

func TestNewKnownBackends(t *testing.T) {
	for _, name := range []string{types.BackendStateVector, types.BackendPulse} {
		b, err := backend.New(name, nil)
		require.NoError(t, err)
		require.Equal(t, name, b.Name())
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := backend.New("quantumfoam", nil)
	var unknownErr *types.UnknownBackendError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "quantumfoam", unknownErr.Name)
	require.Contains(t, unknownErr.Available, "statevector")
	require.ErrorContains(t, err, "statevector")
}
