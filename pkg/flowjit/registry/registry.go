package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrFrozen indicates a write to a frozen registry.
	ErrFrozen = errors.New("registry is frozen")

	// ErrDuplicate indicates a key was registered twice.
	ErrDuplicate = errors.New("key already registered")
)

// Registry is a thread-safe table of values indexed by key.
type Registry[K cmp.Ordered, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	frozen  bool
}

// New creates an empty, unfrozen registry.
func New[K cmp.Ordered, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// Register adds a value. It fails once the registry is frozen or when the
// key is already present.
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %v: %w", key, ErrFrozen)
	}
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("register %v: %w", key, ErrDuplicate)
	}
	r.entries[key] = value
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry[K, V]) MustRegister(key K, value V) {
	if err := r.Register(key, value); err != nil {
		panic("registry: " + err.Error())
	}
}

// Freeze makes the registry read-only. Freezing twice is a no-op.
func (r *Registry[K, V]) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Registry[K, V]) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Get returns the value for key and whether it exists.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// MustGet returns the value for key, panicking if it is missing.
func (r *Registry[K, V]) MustGet(key K) V {
	v, ok := r.Get(key)
	if !ok {
		panic(fmt.Sprintf("registry: key %v not found", key))
	}
	return v
}

// Has reports whether key exists.
func (r *Registry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns all keys in ascending order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for each entry in ascending key order until fn returns
// false. It iterates over a snapshot, so fn may call back into r.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	for _, k := range r.Keys() {
		v, ok := r.Get(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}
