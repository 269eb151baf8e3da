// Package cache memoizes the results of pure computations.
//
// A Memo pairs a key strategy with a Store. The strategy describes how the
// arguments of the memoized function become a key; the store holds the
// computed values. MapStore never evicts and suits the finite schema
// bundle; LRU bounds memory when keys are open-ended.
package cache

import "sync"

// Store holds memoized values. Implementations must be safe for concurrent
// use.
type Store[K comparable, V any] interface {
	// Get returns the value stored for key.
	Get(key K) (V, bool)

	// LoadOrStore returns the value already stored for key, or stores and
	// returns value if there is none. loaded reports which happened.
	LoadOrStore(key K, value V) (actual V, loaded bool)

	// Len returns the number of stored values.
	Len() int

	// Clear removes every stored value.
	Clear()
}

var (
	_ Store[string, int] = (*MapStore[string, int])(nil)
	_ Store[string, int] = (*LRU[string, int])(nil)
)

// MapStore is an unbounded Store backed by a map.
type MapStore[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewMapStore creates an empty MapStore.
func NewMapStore[K comparable, V any]() *MapStore[K, V] {
	return &MapStore[K, V]{items: make(map[K]V)}
}

// Get returns the value stored for key.
func (s *MapStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// LoadOrStore returns the existing value for key, or stores value.
func (s *MapStore[K, V]) LoadOrStore(key K, value V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v, true
	}
	s.items[key] = value
	return value, false
}

// Len returns the number of stored values.
func (s *MapStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every stored value.
func (s *MapStore[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]V)
}
