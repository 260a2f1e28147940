// Package geo exposes a platform location service as reactive state.
//
// Locator wraps a Service with a small state machine:
//
//	StatePending → StateLoading → StateReady | StateError
//
// Locate asks for the position once; WatchPosition follows it continuously
// until ClearWatch. Results of superseded requests are discarded, so the
// cell never flips back to a stale position.
package geo

import (
	"context"
	"sync"
	"time"

	"github.com/bymeisam/use"
)

// Position is a geographic fix.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // meters
	Time      time.Time `json:"time"`
}

// Service is the platform location provider.
type Service interface {
	// Current resolves the device position once, honoring ctx cancellation
	// and deadline.
	Current(ctx context.Context) (Position, error)

	// Watch delivers position updates and errors to fn until the returned
	// cancel is called. fn may be called from any goroutine.
	Watch(fn func(Position, error)) (cancel func())
}

// Dispatcher delivers position updates onto an event loop.
// *use.Loop implements it.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// State describes where a Locator is in its request lifecycle.
type State int

const (
	// StatePending means no position has been requested yet.
	StatePending State = iota

	// StateLoading means a request or watch is waiting for its first fix.
	StateLoading

	// StateReady means Position holds a current fix.
	StateReady

	// StateError means the last request failed; Err holds the cause.
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures a Locator.
type Option interface {
	applyLocator(*config)
}

type config struct {
	timeout time.Duration
	via     Dispatcher
}

type timeoutOption time.Duration

func (o timeoutOption) applyLocator(c *config) {
	c.timeout = time.Duration(o)
}

// Timeout bounds each one-shot position request. Zero means no deadline.
func Timeout(d time.Duration) Option {
	return timeoutOption(d)
}

type viaOption struct {
	d Dispatcher
}

func (o viaOption) applyLocator(c *config) {
	c.via = o.d
}

// Via routes position updates through the given dispatcher so they apply
// on the embedding event loop instead of the service's goroutine.
func Via(d Dispatcher) Option {
	return viaOption{d: d}
}

// Locator is a reactive cell over a location Service.
type Locator struct {
	svc     Service
	timeout time.Duration
	via     Dispatcher

	state    *use.Signal[State]
	position *use.Signal[Position]
	err      *use.Signal[error]

	// mu guards the request bookkeeping below.
	mu          sync.Mutex
	locateSeq   uint64
	watchSeq    uint64
	cancel      context.CancelFunc
	watching    bool
	watchCancel func()
	closed      bool
}

// New creates a Locator over svc in StatePending.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, and any in-flight request or active watch
// is cancelled when the owning scope is disposed.
func New(svc Service, opts ...Option) *Locator {
	return use.HookSlot(use.HookGeo, func() *Locator {
		var cfg config
		for _, opt := range opts {
			opt.applyLocator(&cfg)
		}

		l := &Locator{
			svc:      svc,
			timeout:  cfg.timeout,
			via:      cfg.via,
			state:    use.NewSignal(StatePending),
			position: use.NewSignal(Position{}),
			err:      use.NewSignal[error](nil),
		}

		use.OnUnmount(l.Close)

		return l
	})
}

// State returns the lifecycle state. Tracked read.
func (l *Locator) State() State {
	return l.state.Get()
}

// Position returns the last fix, or the zero Position before the first
// one. Tracked read.
func (l *Locator) Position() Position {
	return l.position.Get()
}

// Err returns the cause of the last failure, or nil. Tracked read.
func (l *Locator) Err() error {
	return l.err.Get()
}

// Locate requests the position once. The cell moves to StateLoading
// immediately and to StateReady or StateError when the request resolves.
// A Locate issued while another is in flight supersedes it: the older
// result is discarded even if it arrives later.
func (l *Locator) Locate() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	l.locateSeq++
	seq := l.locateSeq
	if l.cancel != nil {
		l.cancel()
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	l.cancel = cancel
	l.mu.Unlock()

	l.state.Set(StateLoading)

	go func() {
		defer cancel()
		pos, err := l.svc.Current(ctx)
		l.applyLocate(seq, pos, err)
	}()
}

// WatchPosition starts following the position continuously. Only one watch
// is active at a time; starting a second one is a no-op. The first fix
// moves the cell from StateLoading to StateReady; later fixes update the
// position in place, and errors move to StateError without stopping the
// watch.
func (l *Locator) WatchPosition() {
	l.mu.Lock()
	if l.closed || l.watching {
		l.mu.Unlock()
		return
	}
	l.watching = true
	l.watchSeq++
	seq := l.watchSeq
	l.mu.Unlock()

	l.state.Set(StateLoading)

	cancel := l.svc.Watch(func(pos Position, err error) {
		l.applyWatch(seq, pos, err)
	})

	l.mu.Lock()
	if l.closed || !l.watching || seq != l.watchSeq {
		// Torn down while subscribing.
		l.mu.Unlock()
		cancel()
		return
	}
	l.watchCancel = cancel
	l.mu.Unlock()
}

// ClearWatch stops the active watch, if any. The cell keeps its last state.
func (l *Locator) ClearWatch() {
	l.mu.Lock()
	if !l.watching {
		l.mu.Unlock()
		return
	}
	l.watching = false
	l.watchSeq++
	cancel := l.watchCancel
	l.watchCancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close tears the Locator down: the in-flight request is cancelled, the
// watch is cleared, and no future update will be applied. Idempotent.
// Locators created inside an owner scope are closed automatically when the
// scope is disposed.
func (l *Locator) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.locateSeq++
	l.watchSeq++
	cancel := l.cancel
	l.cancel = nil
	watchCancel := l.watchCancel
	l.watchCancel = nil
	l.watching = false
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watchCancel != nil {
		watchCancel()
	}
}

func (l *Locator) applyLocate(seq uint64, pos Position, err error) {
	l.dispatch(func() {
		l.mu.Lock()
		if l.closed || seq != l.locateSeq {
			l.mu.Unlock()
			return
		}
		l.cancel = nil
		l.mu.Unlock()

		l.applySignals(pos, err)
	})
}

func (l *Locator) applyWatch(seq uint64, pos Position, err error) {
	l.dispatch(func() {
		l.mu.Lock()
		if l.closed || seq != l.watchSeq {
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()

		l.applySignals(pos, err)
	})
}

// applySignals moves the cell to StateError or StateReady. Writes are
// batched so listeners observe one consistent transition.
func (l *Locator) applySignals(pos Position, err error) {
	use.Batch(func() {
		if err != nil {
			l.err.Set(err)
			l.state.Set(StateError)
			return
		}
		l.position.Set(pos)
		l.err.Set(nil)
		l.state.Set(StateReady)
	})
}

func (l *Locator) dispatch(fn func()) {
	if l.via != nil {
		// A closed loop means the surrounding scope is gone; the update
		// is dropped with it.
		_ = l.via.Dispatch(fn)
		return
	}
	fn()
}
