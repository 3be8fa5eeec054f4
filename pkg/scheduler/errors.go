package scheduler

import "errors"

// ErrBudgetExceeded is wrapped by the warning raised when a flush stops
// early because of WithMaxRunsPerFlush.
var ErrBudgetExceeded = errors.New("scheduler: flush budget exceeded")

// ErrLoopStopped is returned by Post once the loop has been closed.
var ErrLoopStopped = errors.New("scheduler: loop stopped")

// ErrQueueFull is wrapped by the error Post returns when the posted task
// queue is at capacity.
var ErrQueueFull = errors.New("scheduler: task queue full")

// ErrEffectPanicked is wrapped by the warning raised when an effect panics
// during a flush.
var ErrEffectPanicked = errors.New("scheduler: effect panicked")
