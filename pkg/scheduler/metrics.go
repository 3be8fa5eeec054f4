package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the queue collectors. A nil *Metrics records nothing.
type Metrics struct {
	flushes   prometheus.Counter
	flushJobs prometheus.Histogram
	deduped   prometheus.Counter
	deferred  prometheus.Counter
}

// NewMetrics creates and registers the scheduler collectors with reg under
// namespace, subsystem "scheduler". It returns nil when reg is nil.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		return nil
	}
	if namespace == "" {
		namespace = "reactive"
	}
	factory := promauto.With(reg)

	return &Metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "flushes_total",
			Help:      "Total number of queue flushes that ran at least one job",
		}),
		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "flush_jobs",
			Help:      "Effects run per flush",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		deduped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "deduped_total",
			Help:      "Total number of notifications for effects already queued",
		}),
		deferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "deferred_total",
			Help:      "Total number of jobs deferred by the flush budget",
		}),
	}
}

func (m *Metrics) flushed(runs int) {
	if m == nil || runs == 0 {
		return
	}
	m.flushes.Inc()
	m.flushJobs.Observe(float64(runs))
}

func (m *Metrics) jobDeduped() {
	if m == nil {
		return
	}
	m.deduped.Inc()
}

func (m *Metrics) jobsDeferred(n int) {
	if m == nil {
		return
	}
	m.deferred.Add(float64(n))
}
