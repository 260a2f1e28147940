package use

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by effects, memos, and by the hook cells
// that need to react to signal updates.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For effects, this schedules the effect to re-run.
	// For memos, this invalidates the cached value.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()
