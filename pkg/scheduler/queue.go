package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const defaultTracerName = "reactive"

// Queue is a batching reactive.Scheduler.
//
// Scheduling an effect that is already queued is a no-op, so any number of
// notifications between two flushes produce one run. The first Schedule
// after a flush queues a flush microtask on the loop; with a nil loop the
// caller flushes explicitly.
type Queue struct {
	loop    *Loop
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	onWarn  func(error)
	maxRuns int

	pending []*reactive.Effect
	queued  map[*reactive.Effect]struct{}

	// flushPending is set while a flush microtask is queued.
	flushPending bool

	// deferred is set while leftover jobs wait for a posted flush.
	deferred bool

	// turn and used track the budget spent in the current loop turn.
	turn uint64
	used int
}

var _ reactive.Scheduler = (*Queue)(nil)

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueLogger sets the logger.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithQueueMetrics records flush metrics in m.
func WithQueueMetrics(m *Metrics) QueueOption {
	return func(q *Queue) {
		q.metrics = m
	}
}

// WithTracer sets the tracer used for flush spans. The default is the
// global provider's "reactive" tracer.
func WithTracer(tracer trace.Tracer) QueueOption {
	return func(q *Queue) {
		if tracer != nil {
			q.tracer = tracer
		}
	}
}

// WithWarningHandler receives warnings such as an exceeded flush budget.
func WithWarningHandler(fn func(error)) QueueOption {
	return func(q *Queue) {
		q.onWarn = fn
	}
}

// WithMaxRunsPerFlush caps the effects run by the flushes of one loop turn,
// or by one Flush call when the queue has no loop. Leftover jobs are
// deferred to a flush posted as a later turn. Zero means unlimited.
func WithMaxRunsPerFlush(n int) QueueOption {
	return func(q *Queue) {
		if n >= 0 {
			q.maxRuns = n
		}
	}
}

// NewQueue creates a Queue flushing on loop. A nil loop leaves flushing to
// the caller.
func NewQueue(loop *Loop, opts ...QueueOption) *Queue {
	q := &Queue{
		loop:   loop,
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
		queued: make(map[*reactive.Effect]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With("component", "scheduler.queue")
	return q
}

// Schedule queues e unless it is already queued.
func (q *Queue) Schedule(e *reactive.Effect) {
	if _, ok := q.queued[e]; ok {
		q.metrics.jobDeduped()
		return
	}
	q.queued[e] = struct{}{}
	q.pending = append(q.pending, e)

	if q.loop == nil || q.flushPending || q.deferred {
		return
	}
	q.flushPending = true
	q.loop.Microtask(q.flushMicrotask)
}

// Len returns the number of queued effects.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Flush runs the queued effects in queue order and returns how many ran.
// Effects scheduled while flushing join the queue behind the snapshot.
// Stopped effects are dropped without running. A panicking effect is
// reported as R022 and the flush moves on to the next job.
func (q *Queue) Flush() int {
	if len(q.pending) == 0 {
		return 0
	}

	jobs := q.pending
	q.pending = nil

	_, span := q.tracer.Start(context.Background(), "reactive.scheduler.flush",
		trace.WithAttributes(attribute.Int("reactive.jobs", len(jobs))))
	defer span.End()

	q.resetBudget()
	ran := 0
	for i, e := range jobs {
		if q.maxRuns > 0 && q.used >= q.maxRuns {
			q.deferRest(jobs[i:], span)
			break
		}
		delete(q.queued, e)
		if !e.Active() {
			continue
		}
		q.run(e)
		ran++
		q.used++
	}

	span.SetAttributes(attribute.Int("reactive.runs", ran))
	q.metrics.flushed(ran)
	return ran
}

// run executes e, recovering a panic so the rest of the batch still runs.
func (q *Queue) run(e *reactive.Effect) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("effect panic",
				"effect", e.ID(),
				"name", e.Name(),
				"panic", r,
				"stack", string(debug.Stack()))
			q.warn(rerrors.New("R022").
				WithDetailf("effect %d %q: %v", e.ID(), e.Name(), r).
				Wrap(ErrEffectPanicked))
		}
	}()
	e.Run()
}

func (q *Queue) resetBudget() {
	if q.loop == nil {
		q.used = 0
		return
	}
	if turn := q.loop.Turns(); turn != q.turn {
		q.turn = turn
		q.used = 0
	}
}

func (q *Queue) flushMicrotask() {
	q.flushPending = false
	if q.deferred {
		return
	}
	q.Flush()
}

func (q *Queue) flushDeferred() {
	q.deferred = false
	q.Flush()
}

// deferRest puts rest back at the head of the queue and arranges a later
// flush for it.
func (q *Queue) deferRest(rest []*reactive.Effect, span trace.Span) {
	q.pending = append(append([]*reactive.Effect(nil), rest...), q.pending...)
	q.metrics.jobsDeferred(len(rest))
	span.SetAttributes(attribute.Int("reactive.deferred", len(rest)))

	q.warn(rerrors.New("R020").
		WithDetailf("%d jobs deferred after %d runs this turn", len(rest), q.used).
		WithSuggestion("Look for effects that keep re-triggering each other, or raise max_runs_per_flush.").
		Wrap(ErrBudgetExceeded))

	if q.loop == nil || q.deferred {
		return
	}
	if err := q.loop.Post(q.flushDeferred); err != nil {
		q.logger.Error("deferred flush not posted", "error", err)
		return
	}
	q.deferred = true
}

func (q *Queue) warn(err *rerrors.ReactiveError) {
	q.logger.Warn(err.Message, "code", err.Code, "detail", err.Detail)
	if q.onWarn != nil {
		q.onWarn(err)
	}
}
