// Package toggle provides a two-value cell that oscillates between a
// primary and a secondary value.
//
// The common case is a boolean flag:
//
//	open := toggle.Bool(false)
//	open.Toggle() // true
//	open.Toggle() // false
//
// Any pair of values works, with the primary one exposed first:
//
//	theme, err := toggle.New("light", "dark")
//	theme.Value()  // "light"
//	theme.Toggle() // now "dark"
//	theme.Reset()  // back to "light"
//
// With a single argument the secondary is derived by negation, which only
// makes sense for booleans; a single non-boolean argument is rejected with
// ErrInvalidArguments.
package toggle

import (
	"errors"
	"fmt"

	"github.com/bymeisam/use"
)

// ErrInvalidArguments is returned by New when the value pair cannot be
// constructed from the arguments given.
var ErrInvalidArguments = errors.New("toggle: invalid arguments")

// Toggle is a cell holding two fixed values and a selector choosing which
// one Value exposes. The selector flips with Toggle and returns to its
// initial position with Reset.
type Toggle[T any] struct {
	primary   T
	secondary T

	// active selects primary when true. It starts true: the primary
	// value is the one exposed initially and after Reset.
	active *use.Signal[bool]
}

// New creates a toggle cell exposing primary first.
//
// With no secondary value, primary must be a bool and the secondary side is
// its negation. With one secondary value, the cell oscillates between the
// two. Anything else fails with ErrInvalidArguments.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, so Toggle and Reset keep a stable identity
// for identity-based change detection.
func New[T any](primary T, secondary ...T) (*Toggle[T], error) {
	alt, err := deriveSecondary(primary, secondary)
	if err != nil {
		return nil, err
	}

	t := use.HookSlot(use.HookToggle, func() *Toggle[T] {
		return &Toggle[T]{
			primary:   primary,
			secondary: alt,
			active:    use.NewSignal(true),
		}
	})
	return t, nil
}

// Bool creates a boolean toggle with the given initial value. The secondary
// side is the negation, so the cell's two sides are always true and false.
func Bool(initial bool) *Toggle[bool] {
	t, err := New(initial)
	if err != nil {
		// Unreachable: a bool always derives its own negation.
		panic(err)
	}
	return t
}

func deriveSecondary[T any](primary T, secondary []T) (T, error) {
	var alt T
	switch len(secondary) {
	case 0:
		b, ok := any(primary).(bool)
		if !ok {
			return alt, fmt.Errorf("%w: a single %T value has no derivable opposite, pass a secondary value", ErrInvalidArguments, primary)
		}
		alt = any(!b).(T)
	case 1:
		alt = secondary[0]
	default:
		return alt, fmt.Errorf("%w: expected at most one secondary value, got %d", ErrInvalidArguments, len(secondary))
	}
	return alt, nil
}

// Value returns the currently selected side. Tracked read: subscribes the
// current listener, so effects re-run when the selector flips.
func (t *Toggle[T]) Value() T {
	if t.active.Get() {
		return t.primary
	}
	return t.secondary
}

// Peek returns the currently selected side without subscribing.
func (t *Toggle[T]) Peek() T {
	if t.active.Peek() {
		return t.primary
	}
	return t.secondary
}

// IsPrimary reports whether the primary side is selected. Tracked read.
func (t *Toggle[T]) IsPrimary() bool {
	return t.active.Get()
}

// Toggle flips the selector to the other side, observable immediately.
func (t *Toggle[T]) Toggle() {
	t.active.Update(func(active bool) bool { return !active })
}

// Reset restores the selector to its initial position, exposing the
// primary value. Calling it again is a no-op.
func (t *Toggle[T]) Reset() {
	t.active.Set(true)
}
