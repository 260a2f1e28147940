// Package storage persists small pieces of UI state as serialized strings
// under string keys, with change notification for cross-context sync.
//
// Store is the contract: Get, Set, Delete, and per-key Subscribe. Two
// implementations ship with the package — MemoryStore for tests and
// ephemeral state, FileStore for state that survives restarts — and the
// Value hook layers a typed, reactive cell on top of any Store.
package storage

import "sync"

// Store is a key-value persistence backend for serialized values.
//
// Subscribers of a key are notified after every Set and Delete of that key,
// including their own writes; callers that need to ignore their own echo
// compare values. Notifications run on the mutating goroutine.
type Store interface {
	// Get returns the serialized value for key, or ok=false when absent.
	Get(key string) (value string, ok bool)

	// Set stores the serialized value under key.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Subscribe registers fn for changes to key. On Set, fn receives the
	// new value with ok=true; on Delete, the zero value with ok=false.
	// The returned cancel removes the subscription and is idempotent.
	Subscribe(key string, fn func(value string, ok bool)) (cancel func())
}

type keySub struct {
	id uint64
	fn func(value string, ok bool)
}

// keyNotifier fans change notifications out to per-key subscribers.
// Embedded by the Store implementations.
type keyNotifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]keySub
}

func (n *keyNotifier) subscribe(key string, fn func(string, bool)) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[string][]keySub)
	}
	n.nextID++
	id := n.nextID
	n.subs[key] = append(n.subs[key], keySub{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		list := n.subs[key]
		for i, sub := range list {
			if sub.id == id {
				n.subs[key] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// notify calls every subscriber of key. Must not be called with locks held
// that subscribers might need.
func (n *keyNotifier) notify(key, value string, ok bool) {
	n.mu.Lock()
	list := n.subs[key]
	fns := make([]func(string, bool), len(list))
	for i, sub := range list {
		fns[i] = sub.fn
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(value, ok)
	}
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	notifier keyNotifier

	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// Get returns the value for key, or ok=false when absent.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	return value, ok
}

// Set stores value under key and notifies the key's subscribers.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()

	m.notifier.notify(key, value, true)
	return nil
}

// Delete removes key and notifies the key's subscribers.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.notifier.notify(key, "", false)
	}
	return nil
}

// Subscribe registers fn for changes to key.
func (m *MemoryStore) Subscribe(key string, fn func(value string, ok bool)) (cancel func()) {
	return m.notifier.subscribe(key, fn)
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

var _ Store = (*MemoryStore)(nil)
