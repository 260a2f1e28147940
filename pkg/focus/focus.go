// Package focus tracks whether a single element holds input focus.
//
// A Focus cell subscribes once to the platform's focus and blur events and
// exposes the element's focus state as a reactive boolean:
//
//	search := focus.Track(bus, "search-input")
//	search.Focused() // reactive read
//	search.OnChange(func(focused bool) { ... })
//
// The change callback lives in a mutable slot read at fire time, so it can
// be replaced on every render without touching the underlying event
// subscriptions.
package focus

import (
	"sync"

	"github.com/bymeisam/use"
	"github.com/bymeisam/use/pkg/events"
)

// Focus tracks the focus state of one target element.
type Focus struct {
	target   string
	focused  *use.Signal[bool]
	onChange *use.Ref[func(bool)]

	cancelFocus func()
	cancelBlur  func()
	closeOnce   sync.Once
}

// Track creates a focus tracker for target, fed by src. The element starts
// blurred.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, and the event subscriptions are released
// when the owning scope is disposed.
func Track(src events.Source, target string) *Focus {
	return use.HookSlot(use.HookFocus, func() *Focus {
		f := &Focus{
			target:   target,
			focused:  use.NewSignal(false),
			onChange: &use.Ref[func(bool)]{},
		}

		f.cancelFocus = src.Subscribe("focus", func(e events.Event) { f.apply(e, true) })
		f.cancelBlur = src.Subscribe("blur", func(e events.Event) { f.apply(e, false) })
		use.OnUnmount(f.Close)

		return f
	})
}

func (f *Focus) apply(e events.Event, focused bool) {
	if e.Target != f.target {
		return
	}

	changed := f.focused.Peek() != focused
	f.focused.Set(focused)

	// The callback only reports transitions; a repeated focus or blur of
	// the same element is not a change.
	if !changed {
		return
	}
	if fn := f.onChange.Current(); fn != nil {
		fn(focused)
	}
}

// Focused reports whether the target currently holds focus. Tracked read:
// subscribes the current listener.
func (f *Focus) Focused() bool {
	return f.focused.Get()
}

// Peek reports the focus state without subscribing.
func (f *Focus) Peek() bool {
	return f.focused.Peek()
}

// Target returns the element identifier being tracked.
func (f *Focus) Target() string {
	return f.target
}

// OnChange installs fn as the transition callback, replacing any previous
// one. The callback is read at event-fire time, so replacing it does not
// re-subscribe the event source. A nil fn disables the callback.
func (f *Focus) OnChange(fn func(focused bool)) {
	f.onChange.Set(fn)
}

// Close releases the event subscriptions. The cell keeps its last state.
// Safe to call multiple times. Cells created inside an owner scope are
// closed automatically when the scope is disposed.
func (f *Focus) Close() {
	f.closeOnce.Do(func() {
		f.cancelFocus()
		f.cancelBlur()
	})
}
