// Package events carries platform UI notifications (focus, blur, click,
// and friends) from an event source to subscribed handlers.
//
// Bus is the in-process fan-out: handlers subscribe by event name and
// receive every matching Emit. Feed pumps events into a Bus from a
// WebSocket connection, which is how a browser front end reaches the
// hooks in this module.
package events

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Event is a single platform notification.
type Event struct {
	// Name is the event kind: "click", "focus", "blur", etc.
	Name string `json:"name"`

	// Target is the identifier of the element the event fired on.
	Target string `json:"target"`

	// Path lists the element identifiers from the target up to the root,
	// target first. Containment checks walk this chain.
	Path []string `json:"path,omitempty"`

	// X, Y are pointer coordinates for pointer events.
	X int `json:"x"`
	Y int `json:"y"`

	// Data carries event-specific payload, such as an input's value.
	Data map[string]any `json:"data,omitempty"`

	// Time is when the event was received locally. Set on Emit if zero.
	Time time.Time `json:"-"`
}

// Handler consumes events. Handlers run on the goroutine that emits.
type Handler func(Event)

// Source is anything handlers can subscribe to by event name.
// The returned cancel function removes the subscription; calling it more
// than once is harmless.
type Source interface {
	Subscribe(name string, h Handler) (cancel func())
}

type subscription struct {
	id uint64
	h  Handler
}

// Bus is an in-process event fan-out.
// Handlers for an event name are invoked in subscription order. A panicking
// handler is recovered and logged; the remaining handlers still run.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// NewBus creates an event bus. A nil logger falls back to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[string][]subscription),
	}
}

// Subscribe registers h for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, h: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		list := b.subs[name]
		for i, sub := range list {
			if sub.id == id {
				b.subs[name] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every handler subscribed to e.Name, in subscription
// order, on the calling goroutine. An unset Time is stamped with the
// current time before delivery.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	// Copy before notify so handlers can subscribe or cancel freely.
	b.mu.RLock()
	list := b.subs[e.Name]
	handlers := make([]Handler, len(list))
	for i, sub := range list {
		handlers[i] = sub.h
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.safeCall(h, e)
	}
}

// safeCall runs a handler with panic recovery.
func (b *Bus) safeCall(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			b.logger.Error("event handler panic",
				"event", e.Name,
				"target", e.Target,
				"panic", r,
				"stack", string(stack))
		}
	}()

	h(e)
}

var _ Source = (*Bus)(nil)
