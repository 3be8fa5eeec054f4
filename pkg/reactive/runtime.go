package reactive

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// DebugConfig controls debug logging for a Runtime.
type DebugConfig struct {
	// LogEffectRuns logs each effect run at debug level.
	LogEffectRuns bool

	// LogTriggers logs each notification with the number of effects it reaches.
	LogTriggers bool

	// LogTracks logs each newly recorded dependency.
	LogTracks bool
}

// Runtime is an independent tracking context: the active-effect stack,
// the dependency store and the ambient logger and metrics. Views and
// effects belong to the runtime that created them.
type Runtime struct {
	id      string
	logger  *slog.Logger
	metrics *Metrics
	debug   DebugConfig
	onWarn  func(error)

	store *targetMap

	// stack holds the running effects, innermost last.
	stack []*Effect

	// shouldTrack is false inside Untracked.
	shouldTrack bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The runtime adds its own attributes.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics registers the runtime's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer, opts ...MetricsOption) Option {
	return func(rt *Runtime) {
		rt.metrics = NewMetrics(reg, opts...)
	}
}

// WithCollectors records into collectors created earlier with NewMetrics,
// so several runtimes can report to one registry.
func WithCollectors(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithWarningHandler receives every non-fatal diagnostic, such as writes
// through a readonly view. It is called in addition to logging.
func WithWarningHandler(fn func(error)) Option {
	return func(rt *Runtime) {
		rt.onWarn = fn
	}
}

// WithDebug enables debug logging features.
func WithDebug(cfg DebugConfig) Option {
	return func(rt *Runtime) {
		rt.debug = cfg
	}
}

// WithID overrides the generated runtime identifier used in logs.
func WithID(id string) Option {
	return func(rt *Runtime) {
		rt.id = id
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		id:          uuid.NewString(),
		logger:      slog.Default(),
		store:       newTargetMap(),
		shouldTrack: true,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.With("component", "reactive", "runtime", rt.id)
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide runtime used by the package-level
// helpers. Prefer an explicit Runtime where isolation matters.
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

// ID returns the runtime identifier.
func (rt *Runtime) ID() string {
	return rt.id
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// TrackedTargets returns the number of raw targets that currently have an
// entry in the dependency store.
func (rt *Runtime) TrackedTargets() int {
	return rt.store.size()
}

// warn reports a non-fatal diagnostic.
func (rt *Runtime) warn(err *rerrors.ReactiveError) {
	rt.logger.Warn(err.Message, "code", err.Code, "detail", err.Detail)
	if rt.onWarn != nil {
		rt.onWarn(err)
	}
}
