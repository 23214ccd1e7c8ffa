package registry

import (
	"slices"
	"sync"
)

// item is one registered key/value pair.
type item[K comparable, V any] struct {
	key   K
	value V
}

// Ordered is a thread-safe registry that remembers registration order.
// It uses sync.RWMutex for read-heavy workloads.
//
// Mutations never modify the ordered view in place: each one publishes a
// new slice. A snapshot handed out by Snapshot or Range therefore stays
// valid and unchanged no matter what happens to the registry afterwards.
type Ordered[K comparable, V any] struct {
	mu    sync.RWMutex
	index map[K]V
	items []item[K, V]
}

// New creates a new empty registry.
func New[K comparable, V any]() *Ordered[K, V] {
	return &Ordered[K, V]{
		index: make(map[K]V),
	}
}

// Insert adds value under key if the key is not present.
// The new entry is placed after every existing entry.
// It returns false, leaving the registry untouched, if key already exists.
func (r *Ordered[K, V]) Insert(key K, value V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = value
	r.items = append(slices.Clip(r.items), item[K, V]{key: key, value: value})
	return true
}

// Get returns the value for a key and whether it exists.
func (r *Ordered[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.index[key]
	return v, ok
}

// Has returns true if the key exists in the registry.
func (r *Ordered[K, V]) Has(key K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[key]
	return ok
}

// Take removes key and returns the value it held.
// Taking a missing key is a no-op that returns false.
func (r *Ordered[K, V]) Take(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.index[key]
	if !ok {
		return v, false
	}
	delete(r.index, key)

	idx := slices.IndexFunc(r.items, func(it item[K, V]) bool { return it.key == key })
	next := make([]item[K, V], 0, len(r.items)-1)
	next = append(next, r.items[:idx]...)
	next = append(next, r.items[idx+1:]...)
	r.items = next
	return v, true
}

// Keys returns all keys in registration order.
func (r *Ordered[K, V]) Keys() []K {
	items := r.view()
	keys := make([]K, len(items))
	for i, it := range items {
		keys[i] = it.key
	}
	return keys
}

// Snapshot returns all values in registration order.
// The returned slice is a copy and may be modified by the caller.
func (r *Ordered[K, V]) Snapshot() []V {
	items := r.view()
	values := make([]V, len(items))
	for i, it := range items {
		values[i] = it.value
	}
	return values
}

// Len returns the number of entries in the registry.
func (r *Ordered[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Range calls fn for each entry in registration order until fn returns false.
//
// Range iterates over the view current at the time of the call, so it is
// safe to call Insert or Take during iteration; such changes are visible
// to the next Range, not this one.
func (r *Ordered[K, V]) Range(fn func(K, V) bool) {
	for _, it := range r.view() {
		if !fn(it.key, it.value) {
			return
		}
	}
}

// view returns the current published slice. Callers must not modify it.
func (r *Ordered[K, V]) view() []item[K, V] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items
}
