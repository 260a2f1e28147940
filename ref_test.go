package use

import (
	"sync"
	"testing"
)

func TestRefBasic(t *testing.T) {
	ref := NewRef(0)

	if ref.IsSet() {
		t.Error("new ref should not be set")
	}
	if ref.Current() != 0 {
		t.Errorf("expected initial value 0, got %d", ref.Current())
	}

	ref.Set(42)
	if !ref.IsSet() {
		t.Error("ref should be set after Set")
	}
	if ref.Current() != 42 {
		t.Errorf("expected 42, got %d", ref.Current())
	}
}

func TestRefClear(t *testing.T) {
	ref := NewRef("hello")
	ref.Set("world")

	ref.Clear()

	if ref.IsSet() {
		t.Error("ref should not be set after Clear")
	}
	if ref.Current() != "" {
		t.Errorf("expected zero value, got %q", ref.Current())
	}
}

func TestRefNeverNotifies(t *testing.T) {
	ref := NewRef(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = ref.Current()
	})

	ref.Set(1)
	ref.Set(2)

	if listener.getDirtyCount() != 0 {
		t.Errorf("ref updates should not notify, got %d", listener.getDirtyCount())
	}
}

func TestRefCallbackSlot(t *testing.T) {
	// Holding a replaceable callback is the primary use of a ref:
	// the reader always sees the latest function without resubscribing.
	ref := NewRef[func() int](nil)

	ref.Set(func() int { return 1 })
	if got := ref.Current()(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	ref.Set(func() int { return 2 })
	if got := ref.Current()(); got != 2 {
		t.Errorf("expected 2 after replacement, got %d", got)
	}
}

func TestRefConcurrent(t *testing.T) {
	ref := NewRef(0)
	var wg sync.WaitGroup
	const numGoroutines = 100

	wg.Add(numGoroutines * 2)
	for i := 0; i < numGoroutines; i++ {
		go func(n int) {
			defer wg.Done()
			ref.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = ref.Current()
		}()
	}
	wg.Wait()
}

func TestRefIdentityAcrossRenders(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	var first, second *Ref[int]
	WithOwner(owner, func() {
		owner.StartRender()
		first = NewRef(1)
		owner.EndRender()

		first.Set(42)

		owner.StartRender()
		second = NewRef(1)
		owner.EndRender()
	})

	if first != second {
		t.Fatal("expected the same ref across renders")
	}
	if got := second.Current(); got != 42 {
		t.Errorf("expected held value to survive re-render, got %d", got)
	}
}
