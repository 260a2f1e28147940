// Package debounce provides a value cell that separates a rapidly changing
// raw value from a settled, committed one.
//
// Every Set updates the current value synchronously; the committed value
// follows only after the configured delay has elapsed with no further
// sets. A burst of sets inside the delay window therefore commits exactly
// once, with the last value, one delay after the last set.
//
// Example:
//
//	query := debounce.New("", 300*time.Millisecond)
//	query.Set("g")
//	query.Set("go")       // cancels the pending commit, arms a new one
//	query.Current()       // "go" immediately
//	query.Value()         // "" until 300ms after the last Set
package debounce

import (
	"sync"
	"time"

	"github.com/bymeisam/use"
)

// Dispatcher delivers committed updates onto an event loop.
// *use.Loop implements it.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// Debounced is a dual value cell: Current tracks every set synchronously,
// Value lags behind until the input has been quiet for the delay.
type Debounced[T any] struct {
	current   *use.Signal[T]
	committed *use.Signal[T]
	delay     time.Duration
	via       Dispatcher

	// timerMu guards the deferred-commit state below.
	timerMu sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
	stopped bool
}

// Option configures a Debounced cell.
type Option interface {
	applyDebounce(*config)
}

type config struct {
	via Dispatcher
}

type viaOption struct {
	d Dispatcher
}

func (o viaOption) applyDebounce(c *config) {
	c.via = o.d
}

// Via routes commits through the given dispatcher so they execute on the
// embedding event loop instead of the timer goroutine. Commits dispatched
// after the loop closes are dropped, which is the desired teardown
// behavior.
//
// Example:
//
//	query := debounce.New("", 300*time.Millisecond, debounce.Via(loop))
func Via(d Dispatcher) Option {
	return viaOption{d: d}
}

// New creates a debounced cell with the given initial value and delay.
// Both Current and Value start at initial.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, and the cell stops automatically when the
// owning scope is disposed.
//
// A zero delay still defers commits to the next scheduling opportunity;
// they never run synchronously inside Set.
func New[T any](initial T, delay time.Duration, opts ...Option) *Debounced[T] {
	return use.HookSlot(use.HookDebounce, func() *Debounced[T] {
		var cfg config
		for _, opt := range opts {
			opt.applyDebounce(&cfg)
		}

		d := &Debounced[T]{
			current:   use.NewSignal(initial),
			committed: use.NewSignal(initial),
			delay:     delay,
			via:       cfg.via,
		}

		use.OnUnmount(d.Stop)

		return d
	})
}

// Current returns the raw value, which reflects every Set immediately.
// Tracked read: subscribes the current listener.
func (d *Debounced[T]) Current() T {
	return d.current.Get()
}

// PeekCurrent returns the raw value without subscribing.
func (d *Debounced[T]) PeekCurrent() T {
	return d.current.Peek()
}

// Value returns the committed value: the last raw value that survived a
// full delay without being superseded. Tracked read.
func (d *Debounced[T]) Value() T {
	return d.committed.Get()
}

// Peek returns the committed value without subscribing.
func (d *Debounced[T]) Peek() T {
	return d.committed.Peek()
}

// Pending reports whether a deferred commit is outstanding.
func (d *Debounced[T]) Pending() bool {
	d.timerMu.Lock()
	defer d.timerMu.Unlock()
	return d.pending
}

// Set records v as the current value and restarts the quiescence window.
//
// The current value is updated synchronously, observable before Set
// returns. Any outstanding deferred commit is cancelled unconditionally —
// even when v equals the value it would have committed — and a new commit
// is armed for one full delay from now. After Stop, Set still updates the
// current value but arms nothing.
func (d *Debounced[T]) Set(v T) {
	d.current.Set(v)

	d.timerMu.Lock()
	defer d.timerMu.Unlock()

	if d.stopped {
		return
	}

	// Supersede whatever is in flight: stop the timer if it hasn't fired,
	// and invalidate its commit if it has.
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() {
		d.commit(seq)
	})
}

// Update applies fn to the current value and Sets the result.
func (d *Debounced[T]) Update(fn func(T) T) {
	d.Set(fn(d.current.Peek()))
}

// Flush commits the current value immediately, cancelling any deferred
// commit.
func (d *Debounced[T]) Flush() {
	d.timerMu.Lock()
	if d.stopped {
		d.timerMu.Unlock()
		return
	}
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	value := d.current.Peek()
	d.timerMu.Unlock()

	d.committed.Set(value)
}

// Stop tears the cell down: the deferred commit, if any, is cancelled and
// no future Set will ever commit. Current keeps working so late writers
// see a consistent raw value. Stop is idempotent.
//
// Cells created inside an owner scope are stopped automatically when the
// scope is disposed.
func (d *Debounced[T]) Stop() {
	d.timerMu.Lock()
	defer d.timerMu.Unlock()

	d.stopped = true
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// commit applies the deferred commit armed with the given sequence.
// A commit that was superseded, flushed, or stopped after arming is
// silently discarded.
func (d *Debounced[T]) commit(seq uint64) {
	apply := func() {
		d.timerMu.Lock()
		if d.stopped || seq != d.seq {
			d.timerMu.Unlock()
			return
		}
		d.pending = false
		value := d.current.Peek()
		d.timerMu.Unlock()

		d.committed.Set(value)
	}

	if d.via != nil {
		// Loop closed means the surrounding scope is torn down; the
		// commit is dropped with it.
		_ = d.via.Dispatch(apply)
		return
	}
	apply()
}
