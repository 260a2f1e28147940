package use

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the dispatch queue capacity used when WithQueueSize
// is not given.
const DefaultQueueSize = 256

// Dispatcher accepts functions to run on an event loop.
// *Loop implements it; hook packages depend on this interface so tests can
// substitute a synchronous implementation.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// Loop executes dispatched functions one at a time on a single goroutine.
//
// Dispatch is safe to call from any goroutine and is the correct way to
// apply asynchronous results (timer fires, network replies, store
// notifications) to signals owned by a live component tree: each function
// runs serialized, and pending effects are drained after it completes.
type Loop struct {
	owner  *Owner
	logger *slog.Logger

	dispatchCh chan func()
	done       chan struct{} // Closed by Close to stop the loop
	stopped    chan struct{} // Closed by run when it exits

	closed    atomic.Bool
	closeOnce sync.Once

	// Statistics
	dispatched atomic.Uint64
	dropped    atomic.Uint64
	panics     atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*loopOptions)

type loopOptions struct {
	logger    *slog.Logger
	queueSize int
}

// WithLogger sets the logger for loop diagnostics (panics, dropped
// callbacks). Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoopOption {
	return func(o *loopOptions) {
		o.logger = logger
	}
}

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) LoopOption {
	return func(o *loopOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// NewLoop creates a Loop with a fresh root Owner and starts its goroutine.
// Callers must Close the loop when done to release the goroutine and
// dispose the owner.
func NewLoop(opts ...LoopOption) *Loop {
	options := loopOptions{
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	l := &Loop{
		owner:      NewOwner(nil),
		logger:     options.logger,
		dispatchCh: make(chan func(), options.queueSize),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go l.run()

	return l
}

// Owner returns the loop's root Owner. Hook cells created for the loop's
// component tree should be owned by it (or by one of its children) so
// Close tears them down.
func (l *Loop) Owner() *Owner {
	return l.owner
}

// Dispatch queues a function to run on the loop.
//
// The function will be executed serialized with all other dispatched
// functions. After it completes, pending effects run. Returns
// ErrLoopClosed after Close and ErrQueueFull when the queue is at
// capacity; in both cases the function is dropped and counted.
//
// Example:
//
//	go func() {
//	    pos, err := svc.Current(ctx)
//	    loop.Dispatch(func() {
//	        if err != nil {
//	            errSignal.Set(err)
//	        } else {
//	            posSignal.Set(pos)
//	        }
//	    })
//	}()
func (l *Loop) Dispatch(fn func()) error {
	if l.closed.Load() {
		l.dropped.Add(1)
		return ErrLoopClosed
	}

	select {
	case l.dispatchCh <- fn:
		return nil
	case <-l.done:
		l.dropped.Add(1)
		return ErrLoopClosed
	default:
		// Queue full - shouldn't happen normally, but log it
		l.dropped.Add(1)
		l.logger.Warn("dispatch queue full, discarding callback")
		return ErrQueueFull
	}
}

// run processes queued callbacks until the loop is closed.
func (l *Loop) run() {
	defer close(l.stopped)

	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)

		case <-l.done:
			return
		}
	}
}

// execute runs a dispatched function with panic recovery, then drains
// pending effects. The loop's owner is installed as the current owner so
// callbacks can create effects and hook cells that Close will dispose.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	l.dispatched.Add(1)

	WithOwner(l.owner, func() {
		fn()

		// Run pending effects (scheduled by signal updates)
		l.owner.RunPendingEffects()
	})
}

// Close stops the loop and disposes its owner. Functions still queued are
// dropped. Close is idempotent and safe to call from any goroutine,
// including from a dispatched callback.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)

		// Wait for the loop goroutine unless Close runs on it
		select {
		case <-l.stopped:
		default:
			if !l.onLoopGoroutine() {
				<-l.stopped
			}
		}

		l.owner.Dispose()
	})
}

// onLoopGoroutine reports whether the caller is the loop goroutine itself.
// A dispatched callback calling Close must not wait for run to exit.
func (l *Loop) onLoopGoroutine() bool {
	// The loop goroutine installs l.owner as current owner for the
	// duration of each callback.
	return getCurrentOwner() == l.owner
}

// LoopStats is a snapshot of a loop's counters.
type LoopStats struct {
	Dispatched uint64 `json:"dispatched"`
	Dropped    uint64 `json:"dropped"`
	Panics     uint64 `json:"panics"`
	QueueLen   int    `json:"queue_len"`
	QueueCap   int    `json:"queue_cap"`
}

// Stats returns loop statistics.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Dispatched: l.dispatched.Load(),
		Dropped:    l.dropped.Load(),
		Panics:     l.panics.Load(),
		QueueLen:   len(l.dispatchCh),
		QueueCap:   cap(l.dispatchCh),
	}
}
