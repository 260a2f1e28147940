package use

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoopDispatchExecutes(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	done := make(chan int, 1)
	if err := loop.Dispatch(func() { done <- 42 }); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	select {
	case got := <-done:
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatched function did not run")
	}
}

func TestLoopSerializesDispatches(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	const n = 100
	var order []int
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		if err := loop.Dispatch(func() {
			// No lock: the loop guarantees serialized execution
			order = append(order, i)
			wg.Done()
		}); err != nil {
			t.Fatalf("dispatch %d failed: %v", i, err)
		}
	}

	wg.Wait()

	if len(order) != n {
		t.Fatalf("expected %d executions, got %d", n, len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("dispatches ran out of order at %d: got %d", i, v)
		}
	}
}

func TestLoopRunsPendingEffects(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	count := NewSignal(0)
	runs := make(chan int, 10)

	if err := loop.Dispatch(func() {
		CreateEffect(func() Cleanup {
			runs <- count.Get()
			return nil
		})
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if got := <-runs; got != 0 {
		t.Errorf("expected initial run with 0, got %d", got)
	}

	// A dispatched signal write re-runs the effect in the same turn
	if err := loop.Dispatch(func() { count.Set(7) }); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	select {
	case got := <-runs:
		if got != 7 {
			t.Errorf("expected effect re-run with 7, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("effect did not re-run after dispatched write")
	}
}

func TestLoopDispatchAfterClose(t *testing.T) {
	loop := NewLoop()
	loop.Close()

	err := loop.Dispatch(func() {
		t.Error("callback on closed loop must not run")
	})

	if !errors.Is(err, ErrLoopClosed) {
		t.Errorf("expected ErrLoopClosed, got %v", err)
	}

	stats := loop.Stats()
	if stats.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", stats.Dropped)
	}
}

func TestLoopCloseIdempotent(t *testing.T) {
	loop := NewLoop()
	loop.Close()
	loop.Close()

	if !loop.Owner().IsDisposed() {
		t.Error("owner should be disposed after close")
	}
}

func TestLoopCloseDisposesOwner(t *testing.T) {
	loop := NewLoop()

	cleaned := make(chan struct{})
	if err := loop.Dispatch(func() {
		OnUnmount(func() { close(cleaned) })
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	loop.Close()

	select {
	case <-cleaned:
	case <-time.After(time.Second):
		t.Fatal("owner cleanup did not run on close")
	}
}

func TestLoopCloseFromDispatchedCallback(t *testing.T) {
	loop := NewLoop()

	done := make(chan struct{})
	if err := loop.Dispatch(func() {
		loop.Close()
		close(done)
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close from dispatched callback deadlocked")
	}
}

func TestLoopPanicRecovery(t *testing.T) {
	loop := NewLoop(WithLogger(discardLogger()))
	defer loop.Close()

	if err := loop.Dispatch(func() {
		panic("boom")
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// Loop survives the panic and keeps processing
	done := make(chan struct{})
	if err := loop.Dispatch(func() { close(done) }); err != nil {
		t.Fatalf("dispatch after panic failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop stopped processing after panic")
	}

	if loop.Stats().Panics != 1 {
		t.Errorf("expected 1 recorded panic, got %d", loop.Stats().Panics)
	}
}

func TestLoopQueueFull(t *testing.T) {
	loop := NewLoop(
		WithQueueSize(1),
		WithLogger(discardLogger()),
	)
	defer loop.Close()

	block := make(chan struct{})
	release := make(chan struct{})

	// Occupy the loop goroutine
	if err := loop.Dispatch(func() {
		close(block)
		<-release
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	<-block

	// Fill the queue
	if err := loop.Dispatch(func() {}); err != nil {
		t.Fatalf("dispatch to fill queue failed: %v", err)
	}

	// Overflow
	err := loop.Dispatch(func() {})
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(release)
}

func TestLoopStats(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		if err := loop.Dispatch(func() { wg.Done() }); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
	}
	wg.Wait()

	stats := loop.Stats()
	if stats.Dispatched != 3 {
		t.Errorf("expected 3 dispatched, got %d", stats.Dispatched)
	}
	if stats.Dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", stats.Dropped)
	}
	if stats.QueueCap != DefaultQueueSize {
		t.Errorf("expected queue cap %d, got %d", DefaultQueueSize, stats.QueueCap)
	}
}
