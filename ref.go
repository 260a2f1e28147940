package use

import "sync"

// Ref holds a mutable reference to a value.
// Unlike a Signal, updating a Ref never notifies anyone: it is a plain
// slot with stable identity. Hook cells use refs to hold replaceable
// callbacks — the subscription reads the ref at fire time, so swapping
// the callback does not touch the subscription itself.
//
// Ref[T] is safe for concurrent access.
type Ref[T any] struct {
	value T
	isSet bool
	mu    sync.RWMutex
}

// NewRef creates a new Ref with the given initial value. IsSet stays false
// until the first explicit Set.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render. The zero value of Ref is also usable
// directly when hook identity is managed elsewhere.
func NewRef[T any](initial T) *Ref[T] {
	return HookSlot(HookRef, func() *Ref[T] {
		return &Ref[T]{value: initial}
	})
}

// Current returns the current value of the ref.
func (r *Ref[T]) Current() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set sets the ref's value.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.isSet = true
}

// IsSet returns true if the ref has been explicitly set.
func (r *Ref[T]) IsSet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isSet
}

// Clear resets the ref to its zero value.
func (r *Ref[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.isSet = false
}
