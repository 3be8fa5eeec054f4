package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// DefaultTaskBuffer is the default capacity of the posted task queue.
const DefaultTaskBuffer = 256

// Loop is a cooperative event loop with a microtask queue.
//
// Turn, RunPending and Run execute tasks on the calling goroutine and must
// not be called concurrently with each other. Post is safe from any
// goroutine.
type Loop struct {
	logger *slog.Logger

	// tasks holds macrotasks posted with Post.
	tasks chan func()

	mu    sync.Mutex
	micro []func()

	turns  atomic.Uint64
	closed atomic.Bool
	done   chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used for task panics and dropped tasks.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTaskBuffer sets the capacity of the posted task queue.
func WithTaskBuffer(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// NewLoop creates a Loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		logger: slog.Default(),
		tasks:  make(chan func(), DefaultTaskBuffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "scheduler.loop")
	return l
}

// Microtask queues fn to run at the end of the current turn, after the
// turn's own code and every microtask queued before it.
func (l *Loop) Microtask(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// Turn runs fn as one macrotask, then drains the microtask queue,
// including microtasks queued while draining.
func (l *Loop) Turn(fn func()) {
	l.turns.Add(1)
	l.execute(fn)
	l.Drain()
}

// Drain runs queued microtasks until none remain.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.mu.Unlock()

		l.execute(fn)
	}
}

// execute runs one task, recovering and logging a panic so the loop
// survives it.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post queues fn to run as a later turn. It is safe to call from any
// goroutine. Post fails once the loop is closed or when the queue is full.
func (l *Loop) Post(fn func()) error {
	if l.closed.Load() {
		return ErrLoopStopped
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	default:
		l.logger.Warn("task queue full, discarding task")
		return rerrors.New("R021").
			WithDetailf("capacity %d", cap(l.tasks)).
			Wrap(ErrQueueFull)
	}
}

// RunPending runs, one turn each, the tasks that were posted before the
// call. Tasks posted while it runs wait for the next call. It returns the
// number of turns run.
func (l *Loop) RunPending() int {
	n := len(l.tasks)
	for i := 0; i < n; i++ {
		select {
		case fn := <-l.tasks:
			l.Turn(fn)
		default:
			return i
		}
	}
	return n
}

// Run executes posted tasks until ctx is cancelled or the loop is closed.
// It returns nil in both cases.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.tasks:
			l.Turn(fn)
		case <-ctx.Done():
			return nil
		case <-l.done:
			return nil
		}
	}
}

// Close stops the loop. Run returns, and Post reports ErrLoopStopped.
// Close is idempotent.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.done)
	}
}

// Pending returns the number of posted tasks and microtasks not yet run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.micro)
}

// Turns returns the number of turns run so far.
func (l *Loop) Turns() uint64 {
	return l.turns.Load()
}
