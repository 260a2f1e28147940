package use

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Note: DebugMode is declared in batch.go and shared across the package.
// It enables dev-time validation like hook order checking.

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookSignal HookType = iota + 1
	HookMemo
	HookEffect
	HookRef
	HookDebounce
	HookToggle
	HookStored
	HookFocus
	HookClickOutside
	HookGeo
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookSignal:
		return "Signal"
	case HookMemo:
		return "Memo"
	case HookEffect:
		return "Effect"
	case HookRef:
		return "Ref"
	case HookDebounce:
		return "Debounce"
	case HookToggle:
		return "Toggle"
	case HookStored:
		return "Stored"
	case HookFocus:
		return "Focus"
	case HookClickOutside:
		return "ClickOutside"
	case HookGeo:
		return "Geo"
	default:
		return "Unknown"
	}
}

// hookRecord records a single hook call for order validation.
type hookRecord struct {
	Type HookType
}

// Owner represents a component scope that owns reactive primitives.
// When an Owner is disposed, all effects, hook cells, and child owners it
// contains are also disposed. This ensures proper cleanup and prevents
// leaked timers and subscriptions.
//
// Owners form a hierarchy: each component creates an Owner that is a child
// of its parent component's Owner, mirroring the component tree.
type Owner struct {
	id uint64

	// parent is the parent Owner in the hierarchy.
	// nil for a root Owner (typically the session or loop).
	parent *Owner

	// children are child Owners (sub-components).
	children   []*Owner
	childrenMu sync.Mutex

	// effects owned by this scope.
	effects   []*Effect
	effectsMu sync.Mutex

	// cleanups are manual cleanup functions registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// pendingEffects are effects scheduled to run after the current
	// render or dispatch completes.
	pendingEffects   []*Effect
	pendingEffectsMu sync.Mutex

	// disposed indicates whether this Owner has been disposed.
	disposed atomic.Bool

	// Dev-mode hook order tracking (only used when DebugMode is true)
	hookOrder   []hookRecord // Expected order from first render
	hookIndex   int          // Current index during render
	renderCount int          // 0 = first render, 1+ = subsequent

	// Hook slot storage for stable identity across renders.
	// Always active (not just in DebugMode) because hook cells like
	// Toggle and Debounce need stable identity for correctness.
	hookSlots   []any // Stored hook state values (one per hook)
	hookSlotIdx int   // Current slot index during render
}

// NewOwner creates a new Owner with the given parent.
// The new Owner is automatically registered as a child of the parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// addChild registers a child Owner.
func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

// removeChild removes a child Owner from this Owner's children.
func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerEffect adds an effect to this Owner.
// The effect will be disposed when this Owner is disposed.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}

	o.effectsMu.Lock()
	defer o.effectsMu.Unlock()
	o.effects = append(o.effects, e)
}

// OnCleanup registers a cleanup function to run when this Owner is disposed.
// If the Owner is already disposed, the cleanup runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// scheduleEffect adds an effect to the pending effects queue.
// Effects are run via RunPendingEffects after the render or dispatch phase.
func (o *Owner) scheduleEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	defer o.pendingEffectsMu.Unlock()
	o.pendingEffects = append(o.pendingEffects, e)
}

// RunPendingEffects executes all pending effects on this owner and its
// children. The loop runtime calls this after each dispatched function and
// after event handlers execute.
func (o *Owner) RunPendingEffects() {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	effects := o.pendingEffects
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	for _, e := range effects {
		if e.pending.Load() {
			e.run()
		}
	}

	// Recursively run pending effects on child owners
	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		child.RunPendingEffects()
	}
}

// HasPendingEffects returns true if this owner or any child has pending effects.
func (o *Owner) HasPendingEffects() bool {
	if o.disposed.Load() {
		return false
	}

	o.pendingEffectsMu.Lock()
	hasPending := len(o.pendingEffects) > 0
	o.pendingEffectsMu.Unlock()

	if hasPending {
		return true
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		if child.HasPendingEffects() {
			return true
		}
	}

	return false
}

// Dispose disposes this Owner and all its children, effects, and cleanups.
// Children are disposed in reverse order (last created first), then effects,
// then cleanups in reverse registration order.
// After disposal, the Owner cannot be used.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		// Already disposed
		return
	}

	// Remove from parent's children list
	if o.parent != nil {
		o.parent.removeChild(o)
	}

	// Dispose children in reverse order
	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	// Dispose effects
	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()

	for _, e := range effects {
		e.dispose()
	}

	// Run cleanups in reverse order
	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	// Clear pending effects
	o.pendingEffectsMu.Lock()
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()
}

// StartRender is called at the beginning of a component render.
// It resets the hook slot index for stable identity, and in debug mode,
// also resets the hook order validation index.
func (o *Owner) StartRender() {
	beginRender()

	// Always reset slot index for stable hook identity
	o.hookSlotIdx = 0

	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a component render.
// In debug mode, it validates that all expected hooks were called.
func (o *Owner) EndRender() {
	endRender()

	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		// First render complete, lock in hook order
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(fmt.Sprintf("use: hook order changed: expected %d hooks, got %d",
			len(o.hookOrder), o.hookIndex))
	}
}

// TrackHook records a hook call during render for order validation.
// In debug mode, it validates that hooks are called in the same order on
// every render. Violations cause a panic with a descriptive error.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		// First render: record hook order
		o.hookOrder = append(o.hookOrder, hookRecord{Type: ht})
	} else {
		// Subsequent renders: validate order
		if o.hookIndex >= len(o.hookOrder) {
			panic(fmt.Sprintf("use: hook order changed: extra %s hook at index %d",
				ht, o.hookIndex))
		}
		expected := o.hookOrder[o.hookIndex]
		if expected.Type != ht {
			panic(fmt.Sprintf("use: hook order changed at index %d: expected %s, got %s",
				o.hookIndex, expected.Type, ht))
		}
	}
	o.hookIndex++
}

// UseHookSlot returns the stored value for the current hook slot, or nil on
// first render. This provides stable identity for hook cells across renders.
//
// Usage pattern:
//
//	if slot := owner.UseHookSlot(); slot != nil {
//	    return slot.(*Cell) // Subsequent render: return stored instance
//	}
//	cell := newCell()
//	owner.SetHookSlot(cell) // First render: store new instance
//	return cell
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		// Subsequent render: return stored value
		return o.hookSlots[idx]
	}

	// First render: no slot yet. Caller should create the value and
	// call SetHookSlot.
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil (first render).
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}

// TrackHook records a hook call on the current owner, if any.
// Package-level convenience used by hook constructors.
func TrackHook(ht HookType) {
	if owner := getCurrentOwner(); owner != nil {
		owner.TrackHook(ht)
	}
}

// HookSlot resolves a hook cell with stable identity across renders.
// During a render pass with a current owner, the first call stores the
// value produced by create in the owner's next hook slot and subsequent
// renders return the stored instance. Outside render (or without an owner)
// every call creates a fresh instance.
//
// The stored instance must be of type *T; a mismatch panics, which surfaces
// conditional hook calls as early as possible.
func HookSlot[T any](ht HookType, create func() *T) *T {
	owner := getCurrentOwner()
	if owner == nil || !isInRender() {
		return create()
	}

	owner.TrackHook(ht)
	if slot := owner.UseHookSlot(); slot != nil {
		cell, ok := slot.(*T)
		if !ok {
			panic(fmt.Sprintf("use: hook slot type mismatch for %s", ht))
		}
		return cell
	}

	cell := create()
	owner.SetHookSlot(cell)
	return cell
}
