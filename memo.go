package use

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and recomputes on
// the next read.
//
// Memos are lazy: they only compute their value when Get() is called.
// If multiple signals change before a read, the memo only recomputes once.
//
// Memos can also be subscribed to, behaving like signals themselves.
// This allows building chains of derived values.
type Memo[T any] struct {
	base signalBase

	// compute is the function that computes the memo's value.
	compute func() T

	// value is the cached computed value.
	value T

	// valueMu protects value access.
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	// When false, the next Get() will recompute.
	valid atomic.Bool

	// sources are the signals/memos this memo depends on.
	sources   []*signalBase
	sourcesMu sync.Mutex

	// equal is the equality function for determining value changes.
	equal func(T, T) bool

	// computing prevents infinite recursion in circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation is not run immediately; it runs lazily on first Get().
//
// When called during a render pass, the memo instance is stored in the
// owner's hook slot so repeated renders return the same memo.
func NewMemo[T any](compute func() T) *Memo[T] {
	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookMemo)
		if inRender {
			if slot := owner.UseHookSlot(); slot != nil {
				memo, ok := slot.(*Memo[T])
				if !ok {
					panic("use: hook slot type mismatch for Memo")
				}
				// Update compute function in case closures changed
				memo.compute = compute
				memo.valid.Store(false)
				return memo
			}
		}
	}

	memo := &Memo[T]{
		base: signalBase{
			id: nextID(),
		},
		compute: compute,
	}

	if inRender {
		owner.SetHookSlot(memo)
	}

	return memo
}

// Get returns the memo's value, recomputing if necessary.
// Creates a dependency on this memo for the current listener.
func (m *Memo[T]) Get() T {
	if listener := getCurrentListener(); listener != nil {
		m.base.subscribe(listener)

		if e, ok := listener.(*Effect); ok {
			e.addSource(&m.base)
		}
		if mb, ok := listener.(memoBase); ok {
			mb.addSource(&m.base)
		}
	}

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the value is invalid.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the memo and propagates to subscribers.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	// CAS for idempotent marking
	if m.valid.CompareAndSwap(true, false) {
		m.base.notifySubscribers()
	}
}

// ID returns the unique identifier for this memo.
// Implements the Listener interface.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// addSource adds a source dependency.
// Implements the memoBase interface.
func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// WithEquals configures the memo with a custom equality function.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// recompute runs the computation and updates the cached value.
func (m *Memo[T]) recompute() {
	// Prevent infinite recursion in circular dependencies
	if m.computing.Swap(true) {
		return
	}
	defer m.computing.Store(false)

	// Unsubscribe from old sources; the computation re-tracks what it reads
	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	old := setCurrentListener(m)
	newValue := m.compute()
	setCurrentListener(old)

	m.valueMu.Lock()
	// Value change is implicit in the MarkDirty that triggered the
	// recompute; equality is still consulted so WithEquals can suppress
	// redundant downstream work in chained memos.
	changed := !m.equals(m.value, newValue)
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)

	_ = changed
}

// equals checks if two values are equal.
func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// Ensure Memo implements memoBase
var _ memoBase = (*Memo[int])(nil)
