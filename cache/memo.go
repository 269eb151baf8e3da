package cache

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Strategy describes how the arguments of a memoized function are turned
// into a cache key.
type Strategy uint8

const (
	// NoArgs memoizes a function without arguments under a single key.
	NoArgs Strategy = iota
	// SingleKey uses the single comparable argument as the key.
	SingleKey
	// CompositeKey uses a Pair of two comparable arguments as the key.
	CompositeKey
	// SerializedKey uses the canonical JSON encoding of the argument as the
	// key. It covers arguments that are not comparable, such as maps,
	// slices and option structs standing in for named arguments.
	SerializedKey
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case NoArgs:
		return "no-args"
	case SingleKey:
		return "single-key"
	case CompositeKey:
		return "composite-key"
	case SerializedKey:
		return "serialized-key"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Memo caches the results of a computation by key.
//
// Failed computations are not cached. Computations run outside of any
// lock, so two callers racing on the same missing key may both compute;
// the first result published wins and the other is discarded, so every
// caller observes the same stored value.
type Memo[K comparable, V any] struct {
	strategy Strategy
	store    Store[K, V]
	observe  func(hit bool)

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Memo.
type Option[K comparable, V any] func(*Memo[K, V])

// WithStore makes the Memo keep its values in s instead of a MapStore.
func WithStore[K comparable, V any](s Store[K, V]) Option[K, V] {
	return func(m *Memo[K, V]) {
		if s != nil {
			m.store = s
		}
	}
}

// WithObserver registers fn to be called on every lookup with whether the
// lookup was a hit.
func WithObserver[K comparable, V any](fn func(hit bool)) Option[K, V] {
	return func(m *Memo[K, V]) {
		m.observe = fn
	}
}

// NewMemo creates a Memo using the given key strategy.
func NewMemo[K comparable, V any](strategy Strategy, opts ...Option[K, V]) *Memo[K, V] {
	m := &Memo[K, V]{strategy: strategy}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMapStore[K, V]()
	}
	return m
}

// GetOrCompute returns the value stored for key, calling compute to
// produce it if there is none.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.store.Get(key); ok {
		m.record(true)
		return v, nil
	}
	m.record(false)

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	actual, _ := m.store.LoadOrStore(key, v)
	return actual, nil
}

func (m *Memo[K, V]) record(hit bool) {
	if hit {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	if m.observe != nil {
		m.observe(hit)
	}
}

// Strategy returns the key strategy of the Memo.
func (m *Memo[K, V]) Strategy() Strategy {
	return m.strategy
}

// Len returns the number of memoized values.
func (m *Memo[K, V]) Len() int {
	return m.store.Len()
}

// Reset discards every memoized value.
func (m *Memo[K, V]) Reset() {
	m.store.Clear()
}

// MemoStats holds Memo statistics.
type MemoStats struct {
	Strategy Strategy
	Size     int
	Hits     uint64
	Misses   uint64
}

// Stats returns Memo statistics.
func (m *Memo[K, V]) Stats() MemoStats {
	return MemoStats{
		Strategy: m.strategy,
		Size:     m.store.Len(),
		Hits:     m.hits.Load(),
		Misses:   m.misses.Load(),
	}
}

// --- Function wrappers ---

// Pair is the key of a function memoized with CompositeKey.
type Pair[A, B comparable] struct {
	First  A
	Second B
}

// Func0 is a memoized function without arguments.
type Func0[V any] struct {
	*Memo[struct{}, V]
	fn func() (V, error)
}

// Memoize0 memoizes fn with the NoArgs strategy.
func Memoize0[V any](fn func() (V, error), opts ...Option[struct{}, V]) *Func0[V] {
	return &Func0[V]{Memo: NewMemo(NoArgs, opts...), fn: fn}
}

// Call returns the memoized result of fn.
func (f *Func0[V]) Call() (V, error) {
	return f.GetOrCompute(struct{}{}, f.fn)
}

// Func1 is a memoized function of one comparable argument.
type Func1[A comparable, V any] struct {
	*Memo[A, V]
	fn func(A) (V, error)
}

// Memoize1 memoizes fn with the SingleKey strategy.
func Memoize1[A comparable, V any](fn func(A) (V, error), opts ...Option[A, V]) *Func1[A, V] {
	return &Func1[A, V]{Memo: NewMemo(SingleKey, opts...), fn: fn}
}

// Call returns the memoized result of fn(a).
func (f *Func1[A, V]) Call(a A) (V, error) {
	return f.GetOrCompute(a, func() (V, error) { return f.fn(a) })
}

// Func2 is a memoized function of two comparable arguments.
type Func2[A, B comparable, V any] struct {
	*Memo[Pair[A, B], V]
	fn func(A, B) (V, error)
}

// Memoize2 memoizes fn with the CompositeKey strategy.
func Memoize2[A, B comparable, V any](fn func(A, B) (V, error), opts ...Option[Pair[A, B], V]) *Func2[A, B, V] {
	return &Func2[A, B, V]{Memo: NewMemo(CompositeKey, opts...), fn: fn}
}

// Call returns the memoized result of fn(a, b).
func (f *Func2[A, B, V]) Call(a A, b B) (V, error) {
	return f.GetOrCompute(Pair[A, B]{a, b}, func() (V, error) { return f.fn(a, b) })
}

// FuncSerialized is a memoized function of one argument of any
// JSON-encodable type.
type FuncSerialized[A any, V any] struct {
	*Memo[string, V]
	fn func(A) (V, error)
}

// MemoizeSerialized memoizes fn with the SerializedKey strategy.
func MemoizeSerialized[A any, V any](fn func(A) (V, error), opts ...Option[string, V]) *FuncSerialized[A, V] {
	return &FuncSerialized[A, V]{Memo: NewMemo(SerializedKey, opts...), fn: fn}
}

// Call returns the memoized result of fn(a). Arguments that cannot be
// encoded as JSON are reported as errors and never reach fn.
func (f *FuncSerialized[A, V]) Call(a A) (V, error) {
	key, err := CanonicalKey(a)
	if err != nil {
		var zero V
		return zero, err
	}
	return f.GetOrCompute(key, func() (V, error) { return f.fn(a) })
}

// CanonicalKey encodes v as JSON with object members in sorted order, so
// that structurally equal values produce equal keys.
func CanonicalKey(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot derive cache key: %w", err)
	}
	return string(data), nil
}
