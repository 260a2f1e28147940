package storage

import (
	"encoding/json"

	"github.com/bymeisam/use"
)

// Stored is a typed reactive cell backed by a Store key.
//
// The cell mirrors the store: Set persists and updates, external writes to
// the same key flow back in through the store's change notifications, and
// deleting the key reverts the cell to its default value. Echoes of the
// cell's own writes are absorbed by the signal's equality check, so
// subscribers see each change once.
type Stored[T any] struct {
	store        Store
	key          string
	defaultValue T
	signal       *use.Signal[T]
	cancel       func()
}

// Value creates a reactive cell for key in store, initialized from the
// stored value when present and valid, and from defaultValue otherwise.
//
// Values are serialized as JSON, so T must round-trip through JSON cleanly.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, and the store subscription is released
// when the owning scope is disposed.
func Value[T any](store Store, key string, defaultValue T) *Stored[T] {
	return use.HookSlot(use.HookStored, func() *Stored[T] {
		s := &Stored[T]{
			store:        store,
			key:          key,
			defaultValue: defaultValue,
			signal:       use.NewSignal(loadValue(store, key, defaultValue)),
		}

		s.cancel = store.Subscribe(key, s.onStoreChange)
		use.OnUnmount(s.Close)

		return s
	})
}

func loadValue[T any](store Store, key string, defaultValue T) T {
	raw, ok := store.Get(key)
	if !ok {
		return defaultValue
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Unreadable stored state falls back to the default.
		return defaultValue
	}
	return v
}

// onStoreChange applies an external change to the cell. A write of the
// cell's current value (its own echo) is suppressed by signal equality.
func (s *Stored[T]) onStoreChange(raw string, ok bool) {
	if !ok {
		s.signal.Set(s.defaultValue)
		return
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Keep the current value over a corrupt external write.
		return
	}
	s.signal.Set(v)
}

// Get returns the current value. Tracked read: subscribes the current
// listener.
func (s *Stored[T]) Get() T {
	return s.signal.Get()
}

// Peek returns the current value without subscribing.
func (s *Stored[T]) Peek() T {
	return s.signal.Peek()
}

// Set updates the cell and persists the value. The in-memory value always
// updates; a non-nil error reports a serialization or persistence failure.
func (s *Stored[T]) Set(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// Update the signal first so the store notification echo compares
	// equal and is suppressed.
	s.signal.Set(v)
	return s.store.Set(s.key, string(data))
}

// Update applies fn to the current value and Sets the result.
func (s *Stored[T]) Update(fn func(T) T) error {
	return s.Set(fn(s.signal.Peek()))
}

// Clear deletes the backing key and reverts the cell to its default value.
func (s *Stored[T]) Clear() error {
	s.signal.Set(s.defaultValue)
	return s.store.Delete(s.key)
}

// Key returns the store key the cell is bound to.
func (s *Stored[T]) Key() string {
	return s.key
}

// Close releases the store subscription. The cell keeps its last value but
// stops following external changes. Cells created inside an owner scope
// are closed automatically when the scope is disposed.
func (s *Stored[T]) Close() {
	s.cancel()
}
