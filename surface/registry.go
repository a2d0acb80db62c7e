// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/gpu"
)

// Options configures a device at creation.
type Options struct {
	// SampleCount is the MSAA sample count for GPU backends: 0 selects the
	// backend default, 1 disables multisampling. Ignored by software.
	SampleCount int

	// SPIRV compiles WGSL programs to SPIR-V before handing them to the
	// GPU backend.
	SPIRV bool
}

// DeviceFactory opens a fresh gpu.Device. The caller owns the device and
// must Destroy it. A factory that cannot open its device returns an error
// and a nil Device, never a typed nil.
type DeviceFactory func(opts Options) (gpu.Device, error)

// RegistryEntry describes one way of opening a render device.
type RegistryEntry struct {
	// Name selects the entry, as in the CLI -backend flag.
	Name string

	// Priority orders OpenBest attempts, highest first. The built-in
	// entries use 100 for the Vulkan device, 10 for the CPU rasterizer
	// and 1 for the noop HAL device, which renders nothing visible.
	Priority int

	// Factory opens the device.
	Factory DeviceFactory

	// Available is a cheap probe, such as a loader lookup, that lets
	// OpenBest skip an entry without paying for a failed Factory call.
	Available func() bool
}

var globalRegistry = NewRegistry()

// Registry maps backend names to device factories. The package-level
// functions use a global Registry that holds the built-in devices.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry returns a registry with no entries.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a device factory to the global registry, replacing any
// entry of the same name. A nil available probe always reports true.
func Register(name string, priority int, factory DeviceFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Get returns a copy of the named entry.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// OpenBest opens a device from the global registry; see Registry.OpenBest.
func OpenBest(opts Options) (gpu.Device, error) {
	return globalRegistry.OpenBest(opts)
}

// OpenDevice opens the named device from the global registry.
func OpenDevice(name string, opts Options) (gpu.Device, error) {
	return globalRegistry.OpenDevice(name, opts)
}

// Register adds a device factory to r.
func (r *Registry) Register(name string, priority int, factory DeviceFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}

	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns a copy of the named entry.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	entryCopy := *entry
	return &entryCopy, true
}

// OpenBest tries each available backend in priority order and returns the
// first device that opens. The error of the last failing backend is
// returned when none does.
func (r *Registry) OpenBest(opts Options) (gpu.Device, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range available {
		dev, err := r.OpenDevice(name, opts)
		if err == nil {
			pathstream.Logger().Info("surface: device opened", "backend", name)
			return dev, nil
		}
		pathstream.Logger().Debug("surface: backend failed", "backend", name, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

// OpenDevice opens the named device. It fails with BackendNotFoundError
// or BackendUnavailableError before calling the factory.
func (r *Registry) OpenDevice(name string, opts Options) (gpu.Device, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}

	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}

	return entry.Factory(opts)
}

// sortedNames orders entries by descending priority, then by name, so
// OpenBest attempts are deterministic. r.mu must be held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if !onlyAvailable || e.Available() {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b *RegistryEntry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(entries) == 0 {
		return nil
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned by OpenBest when no entry's
	// probe reports the device as available.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}
