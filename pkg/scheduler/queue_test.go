package scheduler

import (
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestBatchedMutationsRunOnce(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()))
	state := rt.Reactive(reactive.FromMap(map[string]any{"a": 0, "b": 0}))

	var seen [][2]any
	rt.Effect(func() {
		seen = append(seen, [2]any{state.Get("a"), state.Get("b")})
	}, reactive.WithScheduler(queue))

	loop.Turn(func() {
		state.Set("a", 1)
		state.Set("b", 2)
		state.Set("a", 3)
		state.Set("b", 4)

		if len(seen) != 1 {
			t.Errorf("effect ran inside the turn: %v", seen)
		}
		if queue.Len() != 1 {
			t.Errorf("Len() = %d, want 1", queue.Len())
		}
	})

	want := [][2]any{{0, 0}, {3, 4}}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
	if queue.Len() != 0 {
		t.Errorf("queue not empty after turn: %d", queue.Len())
	}
}

func TestFlushRunsInScheduleOrder(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0, "y": 0}))

	var order []string
	rt.Effect(func() {
		_ = state.Get("x")
		order = append(order, "x")
	}, reactive.WithScheduler(queue))
	rt.Effect(func() {
		_ = state.Get("y")
		order = append(order, "y")
	}, reactive.WithScheduler(queue))
	order = nil

	loop.Turn(func() {
		state.Set("y", 1)
		state.Set("x", 1)
	})

	if !reflect.DeepEqual(order, []string{"y", "x"}) {
		t.Errorf("order = %v", order)
	}
}

func TestJobsScheduledDuringFlushRunInSameTurn(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0, "y": 0}))

	aRuns, bRuns := 0, 0
	rt.Effect(func() {
		aRuns++
		state.Set("y", state.Get("x").(int)*10)
	}, reactive.WithScheduler(queue))
	rt.Effect(func() {
		bRuns++
		_ = state.Get("y")
	}, reactive.WithScheduler(queue))

	loop.Turn(func() {
		state.Set("x", 1)
	})

	if aRuns != 2 || bRuns != 2 {
		t.Errorf("a=%d b=%d, want 2 and 2", aRuns, bRuns)
	}
	if v, _ := state.Raw().(*reactive.Object).Get("y"); v != 10 {
		t.Errorf("y = %v, want 10", v)
	}
}

func TestStoppedEffectsAreDropped(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0}))

	runs := 0
	e := rt.Effect(func() {
		_ = state.Get("x")
		runs++
	}, reactive.WithScheduler(queue))

	loop.Turn(func() {
		state.Set("x", 1)
		e.Stop()
	})

	if runs != 1 {
		t.Errorf("stopped effect ran from the queue, got %d runs", runs)
	}
}

func TestPanickingEffectDoesNotStrandBatch(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	w := &warnings{}
	queue := NewQueue(loop,
		WithQueueLogger(discardLogger()),
		WithWarningHandler(w.handle),
	)
	state := rt.Reactive(reactive.FromMap(map[string]any{"n": 0}))

	rt.Effect(func() {
		if n, _ := state.Get("n").(int); n > 0 {
			panic("boom")
		}
	}, reactive.WithScheduler(queue), reactive.EffectName("faulty"))

	runs := 0
	rt.Effect(func() {
		_ = state.Get("n")
		runs++
	}, reactive.WithScheduler(queue))

	for n := 1; n <= 3; n++ {
		loop.Turn(func() { state.Set("n", n) })
	}

	if runs != 4 {
		t.Errorf("sibling effect should run on every turn, got %d runs", runs)
	}
	if got := w.count(ErrEffectPanicked); got != 3 {
		t.Errorf("expected 3 panic warnings, got %d", got)
	}
	if queue.Len() != 0 {
		t.Errorf("queue not empty: %d", queue.Len())
	}
	if rt.ActiveEffect() != nil {
		t.Error("active effect left on the stack after a panic")
	}
}

func TestManualFlushWithoutLoop(t *testing.T) {
	rt := newTestRuntime()
	queue := NewQueue(nil, WithQueueLogger(discardLogger()))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0}))

	runs := 0
	rt.Effect(func() {
		_ = state.Get("x")
		runs++
	}, reactive.WithScheduler(queue))

	state.Set("x", 1)
	state.Set("x", 2)
	if runs != 1 || queue.Len() != 1 {
		t.Fatalf("runs=%d len=%d before Flush", runs, queue.Len())
	}

	if n := queue.Flush(); n != 1 {
		t.Errorf("Flush() = %d, want 1", n)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if n := queue.Flush(); n != 0 {
		t.Errorf("empty Flush() = %d", n)
	}
}

func TestBudgetDefersToNextTurn(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	w := &warnings{}
	queue := NewQueue(loop,
		WithQueueLogger(discardLogger()),
		WithMaxRunsPerFlush(2),
		WithWarningHandler(w.handle),
	)
	state := rt.Reactive(reactive.FromMap(map[string]any{"a": 0, "b": 0, "c": 0}))

	var order []string
	for _, key := range []string{"a", "b", "c"} {
		key := key
		rt.Effect(func() {
			_ = state.Get(key)
			order = append(order, key)
		}, reactive.WithScheduler(queue))
	}
	order = nil

	loop.Turn(func() {
		state.Set("a", 1)
		state.Set("b", 1)
		state.Set("c", 1)
	})

	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Fatalf("order after first turn = %v", order)
	}
	if w.count(ErrBudgetExceeded) != 1 {
		t.Errorf("expected 1 budget warning, got %d", w.count(ErrBudgetExceeded))
	}
	if loop.Pending() != 1 {
		t.Errorf("expected a posted flush, Pending() = %d", loop.Pending())
	}

	loop.RunPending()

	if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Errorf("order after deferred flush = %v", order)
	}
	if queue.Len() != 0 {
		t.Errorf("queue not empty: %d", queue.Len())
	}
}

func TestBudgetStopsPingPong(t *testing.T) {
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	w := &warnings{}
	queue := NewQueue(loop,
		WithQueueLogger(discardLogger()),
		WithMaxRunsPerFlush(10),
		WithWarningHandler(w.handle),
	)
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0, "y": 0}))

	rt.Effect(func() {
		state.Set("y", state.Get("x").(int)+1)
	}, reactive.WithScheduler(queue))
	rt.Effect(func() {
		state.Set("x", state.Get("y").(int)+1)
	}, reactive.WithScheduler(queue))

	loop.Turn(func() {
		state.Set("x", 100)
	})

	if w.count(ErrBudgetExceeded) == 0 {
		t.Error("expected the budget to trip")
	}
	if loop.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 deferred flush", loop.Pending())
	}
}

func TestImmediateRunsInline(t *testing.T) {
	rt := newTestRuntime()
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0}))

	runs := 0
	rt.Effect(func() {
		_ = state.Get("x")
		runs++
	}, reactive.WithScheduler(Immediate{}))

	state.Set("x", 1)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestQueueMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()), WithQueueMetrics(m))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0}))

	rt.Effect(func() { _ = state.Get("x") }, reactive.WithScheduler(queue))

	loop.Turn(func() {
		state.Set("x", 1)
		state.Set("x", 2)
		state.Set("x", 3)
	})

	if got := testutil.ToFloat64(m.flushes); got != 1 {
		t.Errorf("flushes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.deduped); got != 2 {
		t.Errorf("deduped = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.flushJobs); got != 1 {
		t.Errorf("flush_jobs series = %d, want 1", got)
	}
	if NewMetrics(nil, "") != nil {
		t.Error("NewMetrics(nil) should return nil")
	}
}

func TestFlushSpan(t *testing.T) {
	tracer := &recordingTracer{}
	rt := newTestRuntime()
	loop := NewLoop(WithLoopLogger(discardLogger()))
	queue := NewQueue(loop, WithQueueLogger(discardLogger()), WithTracer(tracer))
	state := rt.Reactive(reactive.FromMap(map[string]any{"x": 0}))

	rt.Effect(func() { _ = state.Get("x") }, reactive.WithScheduler(queue))
	loop.Turn(func() { state.Set("x", 1) })

	if !reflect.DeepEqual(tracer.names, []string{"reactive.scheduler.flush"}) {
		t.Fatalf("spans = %v", tracer.names)
	}
	want := attribute.Int("reactive.jobs", 1)
	if len(tracer.attrs) != 1 || tracer.attrs[0] != want {
		t.Errorf("attrs = %v", tracer.attrs)
	}
}
