package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/script"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scheduler"
)

// runOptions are the flags shared by run and demo.
type runOptions struct {
	scheduler string
	maxRuns   int
	trace     bool
	metrics   bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.scheduler, "scheduler", "", "Force the scheduler mode: sync or batch")
	cmd.Flags().IntVar(&o.maxRuns, "max-runs-per-flush", -1, "Cap effect runs per loop turn (default from config, 0 = unlimited)")
	cmd.Flags().BoolVarP(&o.trace, "trace", "t", false, "Print the full trace of every scenario")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "Print engine metrics in Prometheus text format after the run")
}

func runCmd(a *app) *cobra.Command {
	var (
		opts  runOptions
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenario files",
		Long: `Run one or more scenario files and check their traces.

A scenario passes when its trace matches its expect lines, or when it
has none. The command fails if any scenario fails.

Examples:
  reactive run scenarios/*.yaml
  reactive run --scheduler=sync --trace basic.yaml
  reactive run --watch basic.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(opts)
			if err != nil {
				return err
			}
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return a.watch(ctx, s, args)
			}
			return a.finish(s, s.runFiles(args))
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run scenarios when their files change")

	return cmd
}

// session is one invocation's runner plus the metrics it records into.
type session struct {
	app      *app
	runner   *script.Runner
	registry *prometheus.Registry
	trace    bool
}

func (a *app) session(opts runOptions) (*session, error) {
	mode := a.cfg.Scheduler.Mode
	runnerOpts := []script.RunnerOption{
		script.WithLogger(a.logger),
		script.WithDebug(reactive.DebugConfig{
			LogEffectRuns: a.cfg.Debug.LogEffectRuns,
			LogTriggers:   a.cfg.Debug.LogTriggers,
			LogTracks:     a.cfg.Debug.LogTracks,
		}),
		script.WithSchedulerMode(mode),
		script.WithMaxRunsPerFlush(a.cfg.Scheduler.MaxRunsPerFlush),
	}
	switch opts.scheduler {
	case "":
	case "sync", "batch":
		runnerOpts = append(runnerOpts, script.WithSchedulerOverride(opts.scheduler))
	default:
		return nil, errors.New("R040").
			WithDetailf("--scheduler must be sync or batch, got %q", opts.scheduler)
	}
	if opts.maxRuns >= 0 {
		runnerOpts = append(runnerOpts, script.WithMaxRunsPerFlush(opts.maxRuns))
	}

	s := &session{app: a, trace: opts.trace}
	if opts.metrics || a.cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		ns := a.cfg.Metrics.Namespace
		runnerOpts = append(runnerOpts, script.WithMetrics(
			reactive.NewMetrics(s.registry, reactive.WithNamespace(ns)),
			scheduler.NewMetrics(s.registry, ns),
		))
	}
	s.runner = script.NewRunner(runnerOpts...)
	return s, nil
}

// runFiles loads and runs each file, reporting as it goes. It returns the
// number of scenarios that did not pass.
func (s *session) runFiles(paths []string) int {
	failed := 0
	for _, path := range paths {
		sc, err := script.Load(path)
		if err != nil {
			errors.PrintError(s.app.out, err)
			failed++
			continue
		}
		if !s.runScenario(sc) {
			failed++
		}
	}
	return failed
}

// runScenario runs one scenario and reports whether it passed.
func (s *session) runScenario(sc *script.Scenario) bool {
	res, err := s.runner.Run(sc)
	if err != nil {
		s.app.failure("%s", sc.Name)
		errors.PrintError(s.app.out, err)
		return false
	}

	if res.Passed() {
		s.app.success("%s (%s, %d lines)", res.Name, res.Mode, len(res.Trace))
	} else {
		s.app.failure("%s (%s)", res.Name, res.Mode)
		for _, f := range res.Failures {
			s.app.info("%s", f)
		}
	}
	if s.trace || !res.Passed() {
		for _, line := range res.Trace {
			s.app.info("| %s", line)
		}
	}
	return res.Passed()
}

// finish prints the metrics and turns the failure count into an error.
func (a *app) finish(s *session, failed int) error {
	if s.registry != nil {
		families, err := s.registry.Gather()
		if err != nil {
			return err
		}
		if err := writeMetrics(a.out, families); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.New("R063").WithDetailf("%d scenario(s) failed", failed)
	}
	return nil
}

// writeMetrics writes families in the Prometheus text exposition format.
func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
