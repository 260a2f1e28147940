package use

// DebugMode enables dev-time validation throughout the package, such as
// hook order checking. Set at startup; do not change during runtime.
var DebugMode bool

// Batch groups multiple signal updates into a single notification phase.
// All signal updates within the batch function are collected, deduplicated,
// and then all affected listeners are notified once when the batch completes.
//
// This is useful for updating multiple related signals without triggering
// intermediate re-renders.
//
// Batches can be nested. Notifications only fire when the outermost batch
// completes.
//
// Example:
//
//	use.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	    age.Set(30)
//	})
//	// Subscribers are notified once with all three changes applied
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	// Deduplicate by listener ID
	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	for _, listener := range unique {
		listener.MarkDirty()
	}
}

// Untracked runs a function without tracking signal reads as dependencies.
// Useful when you need to read signal values without creating subscriptions.
//
// Example:
//
//	use.Untracked(func() {
//	    // Reading count here won't subscribe the current listener
//	    value := count.Get()
//	    fmt.Println("Current value:", value)
//	})
//
// Note: for single signal reads, signal.Peek() is more efficient and
// clearer in intent.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedGet reads a signal's value without creating a dependency.
// This is a convenience function equivalent to signal.Peek().
func UntrackedGet[T any](s *Signal[T]) T {
	return s.Peek()
}
