package debounce

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bymeisam/use"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// queueDispatcher collects dispatched functions without running them, so
// tests can observe the gap between a timer firing and its commit applying.
type queueDispatcher struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queueDispatcher) Dispatch(fn func()) error {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	return nil
}

func (q *queueDispatcher) queued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

func (q *queueDispatcher) drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewInitialValues(t *testing.T) {
	d := New(5, 50*time.Millisecond)
	defer d.Stop()

	if got := d.Current(); got != 5 {
		t.Errorf("expected current 5, got %d", got)
	}
	if got := d.Value(); got != 5 {
		t.Errorf("expected committed 5, got %d", got)
	}
	if d.Pending() {
		t.Error("expected no pending commit before first Set")
	}
}

func TestSetUpdatesCurrentImmediately(t *testing.T) {
	d := New("", 200*time.Millisecond)
	defer d.Stop()

	d.Set("go")

	if got := d.Current(); got != "go" {
		t.Errorf("expected current %q, got %q", "go", got)
	}
	if got := d.Value(); got != "" {
		t.Errorf("expected committed value unchanged, got %q", got)
	}
	if !d.Pending() {
		t.Error("expected a pending commit after Set")
	}
}

func TestCommitAfterQuiescence(t *testing.T) {
	d := New(0, 50*time.Millisecond)
	defer d.Stop()

	d.Set(1)
	time.Sleep(250 * time.Millisecond)

	if got := d.Value(); got != 1 {
		t.Errorf("expected committed 1 after quiet period, got %d", got)
	}
	if d.Pending() {
		t.Error("expected no pending commit after it fired")
	}
}

func TestRapidSetsCommitOnce(t *testing.T) {
	loop := use.NewLoop(use.WithLogger(discardLogger()))
	defer loop.Close()

	var (
		d       *Debounced[int]
		mu      sync.Mutex
		commits []int
	)

	ready := make(chan struct{})
	if err := loop.Dispatch(func() {
		d = New(0, 50*time.Millisecond, Via(loop))
		use.CreateEffect(func() use.Cleanup {
			v := d.Value()
			mu.Lock()
			commits = append(commits, v)
			mu.Unlock()
			return nil
		})
		close(ready)
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	<-ready

	for i := 1; i <= 5; i++ {
		d.Set(i)
	}

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 2 {
		t.Fatalf("expected initial run plus exactly one commit, got %v", commits)
	}
	if commits[1] != 5 {
		t.Errorf("expected the last set value to commit, got %d", commits[1])
	}
}

func TestLaterSetSupersedesPendingCommit(t *testing.T) {
	d := New(0, 300*time.Millisecond)
	defer d.Stop()

	d.Set(1)
	time.Sleep(100 * time.Millisecond)
	d.Set(2)

	// The first commit would have fired 300ms after the first Set; the
	// second Set cancelled it and armed a new one 300ms out.
	time.Sleep(100 * time.Millisecond)
	if got := d.Value(); got != 0 {
		t.Errorf("expected no commit 200ms in, got %d", got)
	}
	if got := d.Current(); got != 2 {
		t.Errorf("expected current 2, got %d", got)
	}

	time.Sleep(400 * time.Millisecond)
	if got := d.Value(); got != 2 {
		t.Errorf("expected committed 2 after full quiet period, got %d", got)
	}
}

func TestSetSameValueRestartsWindow(t *testing.T) {
	d := New(0, 300*time.Millisecond)
	defer d.Stop()

	d.Set(1)
	time.Sleep(150 * time.Millisecond)
	// Same value: the signal suppresses the redundant notification, but the
	// quiet window still restarts.
	d.Set(1)

	time.Sleep(150 * time.Millisecond)
	if got := d.Value(); got != 0 {
		t.Errorf("expected window restarted by same-value Set, got commit %d", got)
	}

	time.Sleep(400 * time.Millisecond)
	if got := d.Value(); got != 1 {
		t.Errorf("expected committed 1, got %d", got)
	}
}

func TestStopCancelsPendingCommit(t *testing.T) {
	d := New(0, 50*time.Millisecond)

	d.Set(1)
	d.Stop()

	time.Sleep(200 * time.Millisecond)
	if got := d.Value(); got != 0 {
		t.Errorf("expected no commit after Stop, got %d", got)
	}
	if got := d.Current(); got != 1 {
		t.Errorf("current value should survive Stop, got %d", got)
	}

	// Sets after Stop update current but never commit.
	d.Set(2)
	if got := d.Current(); got != 2 {
		t.Errorf("expected current 2 after Stop, got %d", got)
	}
	if d.Pending() {
		t.Error("expected no pending commit after Stop")
	}
	time.Sleep(150 * time.Millisecond)
	if got := d.Value(); got != 0 {
		t.Errorf("expected committed value frozen after Stop, got %d", got)
	}

	// Idempotent.
	d.Stop()
}

func TestFlushCommitsImmediately(t *testing.T) {
	d := New(0, time.Hour)
	defer d.Stop()

	d.Set(1)
	d.Flush()

	if got := d.Value(); got != 1 {
		t.Errorf("expected committed 1 after Flush, got %d", got)
	}
	if d.Pending() {
		t.Error("expected no pending commit after Flush")
	}

	d.Set(2)
	d.Flush()
	if got := d.Value(); got != 2 {
		t.Errorf("expected committed 2 after second Flush, got %d", got)
	}
}

func TestZeroDelayDefersCommit(t *testing.T) {
	q := &queueDispatcher{}
	d := New(0, 0, Via(q))
	defer d.Stop()

	d.Set(1)

	waitFor(t, "zero-delay timer to dispatch", func() bool {
		return q.queued() > 0
	})
	if got := d.Peek(); got != 0 {
		t.Errorf("commit must not apply before the dispatcher runs it, got %d", got)
	}

	q.drain()
	if got := d.Peek(); got != 1 {
		t.Errorf("expected committed 1 after drain, got %d", got)
	}
}

func TestStaleDispatchedCommitDiscarded(t *testing.T) {
	q := &queueDispatcher{}
	d := New(0, 0, Via(q))
	defer d.Stop()

	d.Set(1)
	waitFor(t, "first commit to dispatch", func() bool {
		return q.queued() >= 1
	})

	// Supersede while the first commit sits undelivered in the queue.
	d.Set(2)
	waitFor(t, "second commit to dispatch", func() bool {
		return q.queued() >= 2
	})

	q.drain()
	if got := d.Peek(); got != 2 {
		t.Errorf("stale queued commit should be discarded, got %d", got)
	}
}

func TestUpdate(t *testing.T) {
	d := New(10, 50*time.Millisecond)
	defer d.Stop()

	d.Update(func(v int) int { return v + 1 })
	d.Update(func(v int) int { return v + 1 })

	if got := d.PeekCurrent(); got != 12 {
		t.Errorf("expected current 12, got %d", got)
	}

	time.Sleep(250 * time.Millisecond)
	if got := d.Peek(); got != 12 {
		t.Errorf("expected committed 12, got %d", got)
	}
}

func TestHookIdentityAcrossRenders(t *testing.T) {
	owner := use.NewOwner(nil)
	defer owner.Dispose()

	var first, second *Debounced[string]
	use.WithOwner(owner, func() {
		owner.StartRender()
		first = New("", 50*time.Millisecond)
		owner.EndRender()

		// Constructor arguments are only consulted on the first render.
		owner.StartRender()
		second = New("ignored", time.Hour)
		owner.EndRender()
	})

	if first != second {
		t.Error("expected the same instance across renders")
	}
}

func TestOwnerDisposeStopsCell(t *testing.T) {
	owner := use.NewOwner(nil)

	var d *Debounced[int]
	use.WithOwner(owner, func() {
		owner.StartRender()
		d = New(0, 30*time.Millisecond)
		owner.EndRender()
	})

	d.Set(1)
	owner.Dispose()

	time.Sleep(150 * time.Millisecond)
	if got := d.Peek(); got != 0 {
		t.Errorf("expected no commit after owner dispose, got %d", got)
	}
	if got := d.PeekCurrent(); got != 1 {
		t.Errorf("current value should survive dispose, got %d", got)
	}
}

func TestConcurrentSets(t *testing.T) {
	d := New(0, 50*time.Millisecond)
	defer d.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d.Set(base*100 + i)
			}
		}(g)
	}
	wg.Wait()

	time.Sleep(300 * time.Millisecond)

	if got, want := d.Peek(), d.PeekCurrent(); got != want {
		t.Errorf("expected committed to settle on current %d, got %d", want, got)
	}
}
