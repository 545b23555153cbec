package backend

import (
	"k8s.io/klog/v2"

	"github.com/n-toscano/qadence/types"
	"github.com/n-toscano/qadence/types/xslices"
)

// Constructor builds a backend from a configuration value. The configuration
// may be nil, the backend's own typed configuration struct, or an untyped
// map[string]any; anything else, unrecognized keys and out-of-range values
// yield an InvalidConfigurationError.
type Constructor func(config any) (Backend, error)

var registeredConstructors = make(map[string]Constructor)

// RegisterBackend registers a constructor under a name. To be safe, call it
// during package initialization.
func RegisterBackend(name types.BackendName, constructor Constructor) {
	registeredConstructors[name] = constructor
}

// RegisteredBackends returns the registered backend names, sorted.
func RegisteredBackends() []string {
	return xslices.SortedKeys(registeredConstructors)
}

// New resolves a backend identifier and configuration to a fresh backend
// instance. Unrecognized names fail with UnknownBackendError.
func New(name types.BackendName, config any) (Backend, error) {
	constructor, found := registeredConstructors[name]
	if !found {
		return nil, &types.UnknownBackendError{Name: name, Available: RegisteredBackends()}
	}
	klog.V(1).Infof("backend factory: resolving %q (config=%v)", name, config)
	return constructor(config)
}
