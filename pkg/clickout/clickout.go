// Package clickout invokes a handler when a click lands outside a watched
// set of elements — the standard dismiss behavior for dropdowns, modals,
// and popovers.
//
//	w := clickout.Watch(bus, func(events.Event) { menu.Close() }, "menu")
//
// A click is inside when its target, or any element on its ancestor path,
// is watched. The watched set and the handler can both be changed after
// construction without re-subscribing the event source.
package clickout

import (
	"sync"

	"github.com/bymeisam/use"
	"github.com/bymeisam/use/pkg/events"
)

// Watcher fires a callback for clicks outside its watched elements.
type Watcher struct {
	handler *use.Ref[func(events.Event)]
	cancel  func()

	mu      sync.Mutex
	targets map[string]struct{}

	closeOnce sync.Once
}

// Watch subscribes to click events on src and calls onOutside for every
// click that is not inside one of the watched targets. With no targets
// watched, no click counts as outside.
//
// This is a hook-like API: when called during a render pass it returns the
// same instance on every render, and the event subscription is released
// when the owning scope is disposed.
func Watch(src events.Source, onOutside func(events.Event), targets ...string) *Watcher {
	return use.HookSlot(use.HookClickOutside, func() *Watcher {
		w := &Watcher{
			handler: &use.Ref[func(events.Event)]{},
			targets: make(map[string]struct{}, len(targets)),
		}
		for _, target := range targets {
			w.targets[target] = struct{}{}
		}
		w.handler.Set(onOutside)

		w.cancel = src.Subscribe("click", w.onClick)
		use.OnUnmount(w.Close)

		return w
	})
}

func (w *Watcher) onClick(e events.Event) {
	if w.inside(e) {
		return
	}
	if fn := w.handler.Current(); fn != nil {
		fn(e)
	}
}

// inside reports whether the click landed on or within a watched element.
// An empty watched set means there is nothing to be outside of.
func (w *Watcher) inside(e events.Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.targets) == 0 {
		return true
	}
	if _, ok := w.targets[e.Target]; ok {
		return true
	}
	for _, id := range e.Path {
		if _, ok := w.targets[id]; ok {
			return true
		}
	}
	return false
}

// Add includes target in the watched set.
func (w *Watcher) Add(target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.targets[target] = struct{}{}
}

// Remove drops target from the watched set.
func (w *Watcher) Remove(target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.targets, target)
}

// Watched returns the watched element identifiers, in no particular order.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, 0, len(w.targets))
	for id := range w.targets {
		ids = append(ids, id)
	}
	return ids
}

// SetHandler replaces the outside-click callback. The callback is read at
// event-fire time, so replacing it does not re-subscribe the event source.
// A nil fn disables the callback.
func (w *Watcher) SetHandler(fn func(events.Event)) {
	w.handler.Set(fn)
}

// Close releases the event subscription. Safe to call multiple times.
// Watchers created inside an owner scope are closed automatically when the
// scope is disposed.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.cancel()
	})
}
