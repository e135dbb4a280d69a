// Package hotkeys defines the global hotkey identifier space, modifier
// flags, and the in-process registration registry. The registry is
// instance-owned: the platform factory constructs one and hands it to the
// backend, so tests can run isolated registries side by side.
package hotkeys

import (
	"sort"
	"sync"

	"github.com/snapdesk/snapdesk/internal/fault"
)

// Modifiers are hotkey modifier bit flags, OR-combinable.
type Modifiers uint8

const (
	ModAlt Modifiers = 1 << iota
	ModControl
	ModShift
	ModWin
	ModNoRepeat
)

// Has reports whether all bits in m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Runtime identifier and virtual key code bounds, validated before any
// OS call.
const (
	IDMin = 0x0000
	IDMax = 0xBFFF
	VKMin = 0x01
	VKMax = 0xFF
)

// SystemInfo is a point-in-time view of the hotkey subsystem.
type SystemInfo struct {
	RegisteredCount int
	Maximum         int
	Limitations     []string
}

// Registration records one live binding of a runtime id to a key combination.
type Registration struct {
	ID   int
	Mods Modifiers
	Key  int
}

// Registry maps runtime identifiers in [IDMin, IDMax] to active
// registrations. One coarse lock guards all mutations and reads.
type Registry struct {
	mu      sync.Mutex
	entries map[int]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]Registration)}
}

// ValidateID checks the runtime identifier range.
func ValidateID(id int) error {
	if id < IDMin || id > IDMax {
		return fault.New(fault.InvalidParameter,
			"hotkey id %d outside valid range [0x%04X, 0x%04X]", id, IDMin, IDMax)
	}
	return nil
}

// ValidateKey checks the virtual key code range.
func ValidateKey(key int) error {
	if key < VKMin || key > VKMax {
		return fault.New(fault.InvalidParameter,
			"virtual key 0x%02X outside valid range [0x%02X, 0x%02X]", key, VKMin, VKMax)
	}
	return nil
}

// Add records a registration. Fails with Conflict if the id is already
// registered; no OS interaction happens in that case.
func (r *Registry) Add(reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[reg.ID]; ok {
		return fault.New(fault.Conflict, "hotkey id %d is already registered", reg.ID)
	}
	r.entries[reg.ID] = reg
	return nil
}

// Remove drops a registration. Fails with NotFound if the id is not in
// the registered state.
func (r *Registry) Remove(id int) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, fault.New(fault.NotFound, "hotkey id %d is not registered", id)
	}
	delete(r.entries, id)
	return reg, nil
}

// Contains reports whether the id is currently registered.
func (r *Registry) Contains(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Count returns the number of live registrations.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns a sorted snapshot of registered ids.
func (r *Registry) IDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Get returns the registration for an id.
func (r *Registry) Get(id int) (Registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.entries[id]
	return reg, ok
}
