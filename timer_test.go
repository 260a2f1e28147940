package use

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleAfterFires(t *testing.T) {
	var fired atomic.Bool
	done := make(chan struct{})

	ScheduleAfter(10*time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	if !fired.Load() {
		t.Error("callback should have run")
	}
}

func TestScheduleAfterCancel(t *testing.T) {
	var fired atomic.Bool

	h := ScheduleAfter(20*time.Millisecond, func() {
		fired.Store(true)
	})

	if !h.Cancel() {
		t.Error("cancel before firing should report the callback was prevented")
	}

	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("cancelled callback should never run")
	}
}

func TestScheduleAfterCancelIdempotent(t *testing.T) {
	h := ScheduleAfter(10*time.Millisecond, func() {})

	first := h.Cancel()
	second := h.Cancel()

	if !first {
		t.Error("first cancel should prevent the callback")
	}
	if second {
		t.Error("second cancel should report nothing prevented")
	}
}

func TestScheduleAfterCancelAfterFire(t *testing.T) {
	done := make(chan struct{})
	h := ScheduleAfter(5*time.Millisecond, func() {
		close(done)
	})

	<-done

	if h.Cancel() {
		t.Error("cancel after firing should report nothing prevented")
	}
	if !h.Fired() {
		t.Error("handle should report fired")
	}
}

func TestScheduleAfterZeroDelay(t *testing.T) {
	done := make(chan struct{})

	ScheduleAfter(0, func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero-delay timer did not fire")
	}
}

func TestTimeoutCleanupCancels(t *testing.T) {
	var fired atomic.Bool

	cleanup := Timeout(20*time.Millisecond, func() {
		fired.Store(true)
	})
	cleanup()

	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("cleanup should cancel the timeout")
	}
}

func TestTimeoutInEffect(t *testing.T) {
	owner := NewOwner(nil)

	var fired atomic.Bool
	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			return Timeout(20*time.Millisecond, func() {
				fired.Store(true)
			})
		})
	})

	// Dispose before the timer fires; cleanup cancels it
	owner.Dispose()
	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Error("disposing the owner should cancel the pending timeout")
	}
}

func TestIntervalTicks(t *testing.T) {
	var ticks atomic.Int32

	cleanup := Interval(10*time.Millisecond, func() {
		ticks.Add(1)
	})

	time.Sleep(55 * time.Millisecond)
	cleanup()

	got := ticks.Load()
	if got < 2 {
		t.Errorf("expected at least 2 ticks, got %d", got)
	}

	// No ticks after cleanup
	time.Sleep(30 * time.Millisecond)
	if ticks.Load() > got+1 {
		t.Errorf("ticks continued after cleanup: %d -> %d", got, ticks.Load())
	}
}
