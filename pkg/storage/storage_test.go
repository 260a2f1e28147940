package storage

import "testing"

func TestMemoryStoreGetAbsent(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("expected ok=false for absent key")
	}
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, ok := store.Get("theme")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if value != "dark" {
		t.Errorf("expected %q, got %q", "dark", value)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete("theme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get("theme"); ok {
		t.Error("expected key to be gone after delete")
	}

	// Deleting an absent key is a no-op.
	if err := store.Delete("theme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryStoreSubscribeNotifiesOnSet(t *testing.T) {
	store := NewMemoryStore()

	var gotValue string
	var gotOK bool
	calls := 0
	store.Subscribe("theme", func(value string, ok bool) {
		gotValue, gotOK = value, ok
		calls++
	})

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
	if !gotOK || gotValue != "dark" {
		t.Errorf("expected (dark, true), got (%q, %v)", gotValue, gotOK)
	}
}

func TestMemoryStoreSubscribeNotifiesOnDelete(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotOK = true
	calls := 0
	store.Subscribe("theme", func(_ string, ok bool) {
		gotOK = ok
		calls++
	})

	if err := store.Delete("theme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
	if gotOK {
		t.Error("expected ok=false on delete")
	}

	// A second delete of the now-absent key must not notify.
	if err := store.Delete("theme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no notification for deleting an absent key, got %d", calls)
	}
}

func TestMemoryStoreSubscribePerKeyIsolation(t *testing.T) {
	store := NewMemoryStore()

	calls := 0
	store.Subscribe("theme", func(string, bool) { calls++ })

	if err := store.Set("locale", "en"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 0 {
		t.Errorf("expected no notification for another key, got %d", calls)
	}
}

func TestMemoryStoreCancelIdempotent(t *testing.T) {
	store := NewMemoryStore()

	calls := 0
	cancel := store.Subscribe("theme", func(string, bool) { calls++ })

	cancel()
	cancel()

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no notification after cancel, got %d", calls)
	}
}

func TestMemoryStoreSubscriberCanReadStore(t *testing.T) {
	store := NewMemoryStore()

	var seen string
	store.Subscribe("theme", func(string, bool) {
		// Notifications run without the store lock held.
		seen, _ = store.Get("theme")
	})

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "dark" {
		t.Errorf("expected subscriber to read %q, got %q", "dark", seen)
	}
}

func TestMemoryStoreLen(t *testing.T) {
	store := NewMemoryStore()

	if got := store.Len(); got != 0 {
		t.Errorf("expected empty store, got %d keys", got)
	}
	if err := store.Set("a", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Set("b", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Len(); got != 2 {
		t.Errorf("expected 2 keys, got %d", got)
	}
}
