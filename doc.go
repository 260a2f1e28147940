// Package use provides the reactive core that the hook packages in this
// module are built on.
//
// The reactive system provides fine-grained reactivity where dependencies
// are tracked automatically at runtime. Reading a signal during a tracked
// context (component render, memo computation, or effect execution)
// automatically subscribes the current listener to that signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := use.NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := use.NewMemo(func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if dependencies changed
//
// Effect runs side effects when dependencies change:
//
//	use.CreateEffect(func() use.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { /* cleanup */ }
//	})
//
// Owner scopes tie the lifetime of signals, effects, and hook instances to
// the component that created them. Disposing an owner disposes everything
// it owns, in reverse creation order.
//
// # Hooks
//
// The subpackages (debounce, toggle, storage, focus, clickout, geo) build
// small state cells on top of these primitives. Hook constructors called
// during a render pass store their instance in the owner's hook slots, so
// repeated renders return the same cell rather than creating a new one.
//
// # Scheduling
//
// Timer scheduling (ScheduleAfter, Timeout, Interval) and the Loop
// dispatcher serialize asynchronous work. A Loop executes dispatched
// functions one at a time on a single goroutine and drains pending effects
// after each one, which is the correct way to apply async results to
// signals owned by a live component tree.
//
// # Thread Safety
//
// All reactive primitives are thread-safe and can be accessed from multiple
// goroutines. The tracking context is per-goroutine, so spawning goroutines
// requires explicit context propagation via WithOwner.
package use
