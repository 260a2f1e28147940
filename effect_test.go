package use

import (
	"testing"
)

func TestEffectRunsOnCreate(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	ran := false
	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			ran = true
			return nil
		})
	})

	if !ran {
		t.Error("effect should run immediately on creation")
	}
}

func TestEffectTracksDependencies(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	runCount := 0

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			_ = count.Get()
			runCount++
			return nil
		})
	})

	if runCount != 1 {
		t.Errorf("expected 1 run, got %d", runCount)
	}

	// Changing the signal should schedule the effect
	count.Set(1)
	owner.RunPendingEffects()

	if runCount != 2 {
		t.Errorf("expected 2 runs after signal change, got %d", runCount)
	}
}

func TestEffectCleanup(t *testing.T) {
	owner := NewOwner(nil)

	cleanupRan := false
	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			return func() {
				cleanupRan = true
			}
		})
	})

	if cleanupRan {
		t.Error("cleanup should not run immediately")
	}

	owner.Dispose()

	if !cleanupRan {
		t.Error("cleanup should run on dispose")
	}
}

func TestEffectCleanupBeforeRerun(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	cleanupCount := 0
	runCount := 0

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			_ = count.Get()
			runCount++
			return func() {
				cleanupCount++
			}
		})
	})

	if runCount != 1 {
		t.Errorf("expected 1 run, got %d", runCount)
	}
	if cleanupCount != 0 {
		t.Errorf("expected 0 cleanups, got %d", cleanupCount)
	}

	// Trigger re-run
	count.Set(1)
	owner.RunPendingEffects()

	if runCount != 2 {
		t.Errorf("expected 2 runs, got %d", runCount)
	}
	if cleanupCount != 1 {
		t.Errorf("expected 1 cleanup before re-run, got %d", cleanupCount)
	}
}

func TestEffectDynamicDependencies(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	flag := NewSignal(true)
	a := NewSignal(1)
	b := NewSignal(2)

	runCount := 0
	var lastValue int

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			runCount++
			if flag.Get() {
				lastValue = a.Get()
			} else {
				lastValue = b.Get()
			}
			return nil
		})
	})

	if runCount != 1 || lastValue != 1 {
		t.Errorf("expected 1 run with value 1, got %d runs with value %d", runCount, lastValue)
	}

	// Changing b should NOT trigger (not currently tracked)
	b.Set(20)
	owner.RunPendingEffects()
	if runCount != 1 {
		t.Errorf("changing b should not trigger, got %d runs", runCount)
	}

	// Changing a should trigger
	a.Set(10)
	owner.RunPendingEffects()
	if runCount != 2 || lastValue != 10 {
		t.Errorf("expected 2 runs with value 10, got %d runs with value %d", runCount, lastValue)
	}

	// Switch the branch; effect now tracks b instead of a
	flag.Set(false)
	owner.RunPendingEffects()
	if runCount != 3 || lastValue != 20 {
		t.Errorf("expected 3 runs with value 20, got %d runs with value %d", runCount, lastValue)
	}

	// Changing a should no longer trigger
	a.Set(100)
	owner.RunPendingEffects()
	if runCount != 3 {
		t.Errorf("changing a should not trigger after branch switch, got %d runs", runCount)
	}

	// Changing b should trigger now
	b.Set(200)
	owner.RunPendingEffects()
	if runCount != 4 || lastValue != 200 {
		t.Errorf("expected 4 runs with value 200, got %d runs with value %d", runCount, lastValue)
	}
}

func TestEffectCoalescesNotifications(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	runCount := 0

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			_ = count.Get()
			runCount++
			return nil
		})
	})

	// Multiple sets before the drain coalesce into a single re-run
	count.Set(1)
	count.Set(2)
	count.Set(3)
	owner.RunPendingEffects()

	if runCount != 2 {
		t.Errorf("expected 2 runs (initial + one coalesced), got %d", runCount)
	}
	if count.Peek() != 3 {
		t.Errorf("expected final value 3, got %d", count.Peek())
	}
}

func TestEffectDisposedDoesNotRun(t *testing.T) {
	owner := NewOwner(nil)

	count := NewSignal(0)
	runCount := 0

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			_ = count.Get()
			runCount++
			return nil
		})
	})

	owner.Dispose()

	count.Set(1)
	owner.RunPendingEffects()

	if runCount != 1 {
		t.Errorf("disposed effect should not re-run, got %d runs", runCount)
	}
}

func TestOnMount(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	mountCount := 0

	WithOwner(owner, func() {
		OnMount(func() {
			mountCount++
			// Peek does not track, so updates never re-trigger
			_ = count.Peek()
		})
	})

	count.Set(1)
	owner.RunPendingEffects()

	if mountCount != 1 {
		t.Errorf("OnMount should run exactly once, got %d", mountCount)
	}
}

func TestOnUnmount(t *testing.T) {
	owner := NewOwner(nil)

	unmounted := false
	WithOwner(owner, func() {
		OnUnmount(func() {
			unmounted = true
		})
	})

	if unmounted {
		t.Error("OnUnmount should not run before dispose")
	}

	owner.Dispose()

	if !unmounted {
		t.Error("OnUnmount should run on dispose")
	}
}

func TestOnUpdate(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	updateCount := 0

	WithOwner(owner, func() {
		OnUpdate(
			func() { _ = count.Get() },
			func() { updateCount++ },
		)
	})

	if updateCount != 0 {
		t.Errorf("OnUpdate callback should skip first run, got %d", updateCount)
	}

	count.Set(1)
	owner.RunPendingEffects()

	if updateCount != 1 {
		t.Errorf("expected 1 update, got %d", updateCount)
	}

	count.Set(2)
	owner.RunPendingEffects()

	if updateCount != 2 {
		t.Errorf("expected 2 updates, got %d", updateCount)
	}
}
