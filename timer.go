package use

import (
	"sync/atomic"
	"time"
)

// TimerHandle is a cancellable one-shot timer returned by ScheduleAfter.
// The callback fires at most once; Cancel before firing guarantees the
// callback never runs.
type TimerHandle struct {
	fired atomic.Bool
	timer *time.Timer
}

// ScheduleAfter schedules fn to run once after duration d.
// The callback runs on a timer goroutine; wrap it with Loop.Dispatch if it
// must execute on an event loop.
//
// A zero or negative duration fires at the next scheduling opportunity,
// not synchronously within ScheduleAfter.
func ScheduleAfter(d time.Duration, fn func()) *TimerHandle {
	h := &TimerHandle{}
	h.timer = time.AfterFunc(d, func() {
		// CAS prevents a double fire when Cancel races the timer
		if h.fired.CompareAndSwap(false, true) {
			fn()
		}
	})
	return h
}

// Cancel stops the timer. If the callback has not started, it will never
// run. Cancel is idempotent and safe to call after firing.
// It reports whether the callback was prevented from running.
func (h *TimerHandle) Cancel() bool {
	prevented := h.fired.CompareAndSwap(false, true)
	h.timer.Stop()
	return prevented
}

// Fired reports whether the callback ran (or the handle was cancelled).
func (h *TimerHandle) Fired() bool {
	return h.fired.Load()
}

// Timeout creates a one-shot timer that executes fn after duration d.
// Returns a Cleanup that cancels the timer if called before it fires.
//
// This is the effect-friendly wrapper around ScheduleAfter:
//
//	use.CreateEffect(func() use.Cleanup {
//	    return use.Timeout(5*time.Second, func() {
//	        showTooltip.Set(true)
//	    })
//	})
func Timeout(d time.Duration, fn func()) Cleanup {
	h := ScheduleAfter(d, fn)
	return func() {
		h.Cancel()
	}
}

// Interval schedules periodic ticks that execute fn until the returned
// Cleanup is called. The first tick occurs after duration d.
//
// Typically returned from an effect so ticks stop when the effect re-runs
// or its owner is disposed:
//
//	use.CreateEffect(func() use.Cleanup {
//	    return use.Interval(time.Second, func() {
//	        counter.Update(func(n int) int { return n + 1 })
//	    })
//	})
func Interval(d time.Duration, fn func()) Cleanup {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
