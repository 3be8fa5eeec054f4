package script

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scheduler"
)

// maxSettleTurns bounds the deferred turns run after each step.
const maxSettleTurns = 16

// Runner executes scenarios. Every run gets a fresh runtime.
type Runner struct {
	logger   *slog.Logger
	debug    reactive.DebugConfig
	mode     string
	override string
	maxRuns  int
	tracer   trace.Tracer

	runtimeMetrics   *reactive.Metrics
	schedulerMetrics *scheduler.Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger handed to the engine.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDebug enables engine debug logging.
func WithDebug(cfg reactive.DebugConfig) RunnerOption {
	return func(r *Runner) {
		r.debug = cfg
	}
}

// WithSchedulerMode sets the mode used by scenarios that do not name one.
func WithSchedulerMode(mode string) RunnerOption {
	return func(r *Runner) {
		r.mode = strings.ToLower(mode)
	}
}

// WithSchedulerOverride forces mode for every scenario.
func WithSchedulerOverride(mode string) RunnerOption {
	return func(r *Runner) {
		r.override = strings.ToLower(mode)
	}
}

// WithMaxRunsPerFlush sets the batch scheduler's flush budget.
func WithMaxRunsPerFlush(n int) RunnerOption {
	return func(r *Runner) {
		r.maxRuns = n
	}
}

// WithTracer sets the tracer for scheduler flush spans.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// WithMetrics records engine metrics into the given collectors. Either may
// be nil.
func WithMetrics(rm *reactive.Metrics, sm *scheduler.Metrics) RunnerOption {
	return func(r *Runner) {
		r.runtimeMetrics = rm
		r.schedulerMetrics = sm
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: slog.Default(),
		mode:   "batch",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one scenario run.
type Result struct {
	Name string

	// Mode is the scheduler mode the scenario ran with.
	Mode string

	// Trace holds one line per step, effect run and warning.
	Trace []string

	// Failures lists mismatches against the scenario's expected trace.
	Failures []string
}

// Passed reports whether the trace matched the expectation.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Err returns an R063 error describing the failures, or nil.
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return errors.New("R063").
		WithDetailf("%s: %s", r.Name, strings.Join(r.Failures, "; "))
}

// Text returns the trace, one line per entry.
func (r *Result) Text() string {
	if len(r.Trace) == 0 {
		return ""
	}
	return strings.Join(r.Trace, "\n") + "\n"
}

// Run executes s. It returns an error only when the scenario cannot run;
// a trace that differs from the expectation is reported in the Result.
func (r *Runner) Run(s *Scenario) (*Result, error) {
	mode := r.resolveMode(s)
	res := &Result{Name: s.Name, Mode: mode}
	record := func(line string) {
		res.Trace = append(res.Trace, line)
	}
	onWarn := func(err error) {
		var re *errors.ReactiveError
		if stderrors.As(err, &re) {
			record("warn " + re.FormatCompact())
			return
		}
		record("warn " + err.Error())
	}

	logger := r.logger.With("scenario", s.Name)
	rt := reactive.New(
		reactive.WithLogger(logger),
		reactive.WithCollectors(r.runtimeMetrics),
		reactive.WithDebug(r.debug),
		reactive.WithWarningHandler(onWarn),
	)

	var (
		loop  *scheduler.Loop
		sched reactive.Scheduler = scheduler.Immediate{}
	)
	if mode == "batch" {
		loop = scheduler.NewLoop(scheduler.WithLoopLogger(logger))
		defer loop.Close()
		opts := []scheduler.QueueOption{
			scheduler.WithQueueLogger(logger),
			scheduler.WithQueueMetrics(r.schedulerMetrics),
			scheduler.WithMaxRunsPerFlush(r.maxRuns),
			scheduler.WithWarningHandler(onWarn),
		}
		if r.tracer != nil {
			opts = append(opts, scheduler.WithTracer(r.tracer))
		}
		sched = scheduler.NewQueue(loop, opts...)
	}

	ex := &execution{
		scenario: s,
		rt:       rt,
		views:    make(env),
		effects:  make(map[string]*reactive.Effect),
		record:   record,
	}
	targets := make(map[string]reactive.Target, len(s.Targets))
	for _, name := range s.TargetNames() {
		t, ok := reactive.FromValue(s.Targets[name]).(reactive.Target)
		if !ok {
			return nil, errors.New("R060").WithDetailf("target %q must be a mapping or a sequence", name)
		}
		targets[name] = t
	}
	for _, spec := range s.ViewSpecs() {
		viewMode, err := ParseMode(spec.Mode)
		if err != nil {
			return nil, err
		}
		t, ok := targets[spec.Target]
		if !ok {
			return nil, errors.New("R062").WithDetailf("view %q refers to unknown target %q", spec.Name, spec.Target)
		}
		ex.views[spec.Name] = rt.View(t, viewMode)
	}

	for _, spec := range s.Effects {
		if err := ex.createEffect(spec, sched); err != nil {
			return nil, err
		}
	}

	for i := range s.Steps {
		step := &s.Steps[i]
		var err error
		if loop != nil {
			loop.Turn(func() { err = ex.step(step) })
			for n := 0; n < maxSettleTurns && loop.Pending() > 0; n++ {
				loop.RunPending()
			}
		} else {
			err = ex.step(step)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(s.Expect) > 0 {
		res.Failures = diffTrace(s.Expect, res.Trace)
	}
	logger.Debug("scenario finished", "mode", mode, "lines", len(res.Trace), "passed", res.Passed())
	return res, nil
}

func (r *Runner) resolveMode(s *Scenario) string {
	switch {
	case r.override != "":
		return r.override
	case s.Scheduler != "":
		return strings.ToLower(s.Scheduler)
	default:
		return r.mode
	}
}

// execution is the state of one scenario run.
type execution struct {
	scenario *Scenario
	rt       *reactive.Runtime
	views    env
	effects  map[string]*reactive.Effect
	record   func(string)
}

func (ex *execution) createEffect(spec EffectSpec, sched reactive.Scheduler) error {
	exprs := make([]Expr, len(spec.Log))
	for i, src := range spec.Log {
		e, err := ParseExpr(src)
		if err != nil {
			return err
		}
		exprs[i] = e
	}

	opts := []reactive.EffectOption{
		reactive.EffectName(spec.Name),
		reactive.WithScheduler(sched),
	}
	if spec.Lazy {
		opts = append(opts, reactive.Lazy())
	}

	name := spec.Name
	ex.effects[name] = ex.rt.Effect(func() {
		parts := make([]string, len(exprs))
		for i, e := range exprs {
			v, err := ex.views.eval(e)
			if err != nil {
				parts[i] = "<" + err.Error() + ">"
				continue
			}
			parts[i] = FormatValue(v)
		}
		ex.record(fmt.Sprintf("effect %s: %s", name, strings.Join(parts, " ")))
	}, opts...)
	return nil
}

func (ex *execution) step(st *Step) error {
	if err := ex.apply(st); err != nil {
		re := errors.FromError(err, "R061")
		if loc := ex.scenario.Path(); loc != "" && re.Location == nil && st.Line > 0 {
			re.WithLocation(loc, st.Line, st.Column)
		}
		return re
	}
	return nil
}

func (ex *execution) apply(st *Step) error {
	switch st.Op() {
	case "set":
		view, key, err := ex.property(st.Set)
		if err != nil {
			return err
		}
		ex.record(fmt.Sprintf("set %s = %s", st.Set, FormatValue(st.Value)))
		view.Set(key, reactive.FromValue(st.Value))

	case "delete":
		view, key, err := ex.property(st.Delete)
		if err != nil {
			return err
		}
		ex.record("delete " + st.Delete)
		view.Delete(key)

	case "push":
		arr, err := ex.array(st.Push)
		if err != nil {
			return err
		}
		ex.record(fmt.Sprintf("push %s %s", st.Push, FormatValue(st.Value)))
		arr.Push(reactive.FromValue(st.Value))

	case "pop":
		arr, err := ex.array(st.Pop)
		if err != nil {
			return err
		}
		ex.record("pop " + st.Pop)
		arr.Pop()

	case "length":
		arr, err := ex.array(st.Length)
		if err != nil {
			return err
		}
		n, _ := st.Value.(int)
		ex.record(fmt.Sprintf("length %s = %d", st.Length, n))
		arr.SetLen(n)

	case "run":
		ex.record("run " + st.Run)
		ex.effects[st.Run].Run()

	case "stop":
		ex.record("stop " + st.Stop)
		ex.effects[st.Stop].Stop()

	case "batch":
		ex.record("batch begin")
		for i := range st.Batch {
			if err := ex.step(&st.Batch[i]); err != nil {
				return err
			}
		}
		ex.record("batch end")

	default:
		return errors.New("R060").WithDetailf("step must have exactly one operation, found %v", st.ops())
	}
	return nil
}

// property resolves the view holding the last segment of src and that
// segment. The parent is read untracked.
func (ex *execution) property(src string) (reactive.View, any, error) {
	p, err := ParsePath(src)
	if err != nil {
		return nil, nil, err
	}
	parent, key, ok := p.Parent()
	if !ok {
		return nil, nil, errors.New("R061").WithDetailf("%q is not a property path", src)
	}
	container, err := ex.resolveUntracked(parent)
	if err != nil {
		return nil, nil, err
	}
	view, ok := container.(reactive.View)
	if !ok {
		return nil, nil, errors.New("R061").
			WithDetailf("%s is %s, not a view", parent, FormatValue(container))
	}
	return view, key, nil
}

func (ex *execution) array(src string) (*reactive.ArrayView, error) {
	p, err := ParsePath(src)
	if err != nil {
		return nil, err
	}
	v, err := ex.resolveUntracked(p)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*reactive.ArrayView)
	if !ok {
		return nil, errors.New("R061").WithDetailf("%s is %s, not an array view", src, FormatValue(v))
	}
	return arr, nil
}

func (ex *execution) resolveUntracked(p Path) (any, error) {
	var (
		v   any
		err error
	)
	ex.rt.Untracked(func() {
		v, err = ex.views.resolve(p)
	})
	return v, err
}

// diffTrace compares expected and actual trace lines.
func diffTrace(want, got []string) []string {
	var failures []string
	n := max(len(want), len(got))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(got):
			failures = append(failures, fmt.Sprintf("line %d: missing %q", i+1, want[i]))
		case i >= len(want):
			failures = append(failures, fmt.Sprintf("line %d: unexpected %q", i+1, got[i]))
		case want[i] != got[i]:
			failures = append(failures, fmt.Sprintf("line %d: want %q, got %q", i+1, want[i], got[i]))
		}
	}
	return failures
}
