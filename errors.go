package use

import "errors"

// ErrLoopClosed is returned by Loop.Dispatch after the loop has been closed.
// Callbacks dispatched to a closed loop are dropped, never executed, so
// late async results cannot mutate state that belongs to a torn-down scope.
//
// Applications can usually ignore this error: it is the expected outcome
// for work that completes after its component unmounted.
var ErrLoopClosed = errors.New("use: loop closed")

// ErrQueueFull is returned by Loop.Dispatch when the dispatch queue is at
// capacity. The callback is dropped and counted in the loop's statistics.
//
// Applications should handle this by reducing dispatch frequency or by
// sizing the queue for their workload via WithQueueSize.
var ErrQueueFull = errors.New("use: dispatch queue full")
