package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/light2d/gpucore"
)

// Allocator names.
const (
	// Native allocates through a gogpu/wgpu HAL device.
	Native = "native"
	// Software allocates host memory. It is always available.
	Software = "software"
)

// ErrNotAvailable is returned when a requested allocator is not registered.
var ErrNotAvailable = errors.New("backend: allocator not available")

// Factory creates an allocator instance.
type Factory func() gpucore.Allocator

var registry = gpucontext.NewRegistry[gpucore.Allocator](
	gpucontext.WithPriority(Native, Software),
)

// Register registers an allocator factory under name, replacing any
// previous registration.
func Register(name string, factory Factory) {
	registry.Register(name, factory)
}

// Unregister removes an allocator. Mainly useful in tests.
func Unregister(name string) {
	registry.Unregister(name)
}

// IsRegistered reports whether name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Available returns the registered allocator names.
func Available() []string {
	return registry.Available()
}

// Get returns a new allocator by name, or nil if it is not registered.
func Get(name string) gpucore.Allocator {
	return registry.Get(name)
}

// Default returns the highest-priority registered allocator.
func Default() gpucore.Allocator {
	return registry.Best()
}

// DefaultName returns the name Default would select.
func DefaultName() string {
	return registry.BestName()
}

// Open returns the allocator registered under name, or the default one when
// name is empty.
func Open(name string) (gpucore.Allocator, string, error) {
	if name == "" {
		name = DefaultName()
	}
	if !registry.Has(name) {
		return nil, name, fmt.Errorf("%w: %q (have %v)", ErrNotAvailable, name, Available())
	}
	return registry.Get(name), name, nil
}
