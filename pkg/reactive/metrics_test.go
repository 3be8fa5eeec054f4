package reactive

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, _ := newTestRuntime(t, WithMetrics(reg, WithNamespace("test")))
	m := rt.metrics

	obj := rt.Reactive(FromMap(map[string]any{"foo": 1}))
	rt.Effect(func() {
		_ = obj.Get("foo")
		_ = obj.Keys()
	})
	rt.Effect(func() { _ = obj.Get("foo") }, WithScheduler(SchedulerFunc(func(*Effect) {})))

	obj.Set("foo", 2)
	obj.Set("bar", 1)
	rt.Readonly(obj.Raw()).Set("foo", 3)
	rt.Readonly(obj.Raw()).Delete("foo")

	if got := testutil.ToFloat64(m.tracks); got != 7 {
		t.Errorf("tracks = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.effectRuns); got != 4 {
		t.Errorf("effect runs = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.effectsScheduled); got != 1 {
		t.Errorf("effects scheduled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.triggers.WithLabelValues("set")); got != 1 {
		t.Errorf("set triggers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.triggers.WithLabelValues("add")); got != 1 {
		t.Errorf("add triggers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.readonlyViolations.WithLabelValues("set")); got != 1 {
		t.Errorf("readonly set violations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.readonlyViolations.WithLabelValues("delete")); got != 1 {
		t.Errorf("readonly delete violations = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, name := range []string{"test_tracks_total", "test_triggers_total", "test_effect_runs_total"} {
		if !names[name] {
			t.Errorf("missing metric family %s", name)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.trackRecorded()
	m.triggerFired(TriggerAdd)
	m.effectRan()
	m.effectScheduled()
	m.readonlyViolation("set")

	if NewMetrics(nil) != nil {
		t.Error("NewMetrics(nil) should return nil")
	}
}

func TestSharedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	for i := 0; i < 2; i++ {
		rt, _ := newTestRuntime(t, WithCollectors(m))
		rt.Effect(func() {})
	}

	if got := testutil.ToFloat64(m.effectRuns); got != 2 {
		t.Errorf("effect runs = %v, want 2", got)
	}
}
