package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scheduler"
)

const twoEffects = `
name: two-effects
targets:
  s: {a: 1}
effects:
  - {name: one, log: s.a}
  - {name: two, log: s.a}
steps:
  - set: s.a
    value: 2
`

func TestRunner_ExpectationMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
targets:
  s: {a: 1}
effects:
  - {name: log, log: s.a}
steps:
  - set: s.a
    value: 2
expect:
  - "effect log: 1"
  - "set s.a = 2"
  - "effect log: 3"
`)

	res, err := newTestRunner().Run(s)
	require.NoError(t, err)
	assert.False(t, res.Passed())
	require.NotEmpty(t, res.Failures)
	assert.Contains(t, res.Failures[0], "effect log: 3")

	resErr := res.Err()
	require.Error(t, resErr)
	var re *rerrors.ReactiveError
	require.True(t, errors.As(resErr, &re))
	assert.Equal(t, "R063", re.Code)
	assert.Contains(t, re.Detail, "mismatch")
}

func TestRunner_NoExpectationPasses(t *testing.T) {
	res, err := newTestRunner().Run(mustParse(t, twoEffects))
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.NoError(t, res.Err())
	assert.Equal(t, "batch", res.Mode)
	assert.Equal(t, []string{
		"effect one: 1",
		"effect two: 1",
		"set s.a = 2",
		"effect one: 2",
		"effect two: 2",
	}, res.Trace)
}

func TestRunner_SchedulerModes(t *testing.T) {
	s := mustParse(t, twoEffects)

	res, err := newTestRunner(WithSchedulerMode("sync")).Run(s)
	require.NoError(t, err)
	assert.Equal(t, "sync", res.Mode)

	s.Scheduler = "batch"
	res, err = newTestRunner(WithSchedulerMode("sync")).Run(s)
	require.NoError(t, err)
	assert.Equal(t, "batch", res.Mode, "scenario choice beats the runner default")

	res, err = newTestRunner(WithSchedulerOverride("sync")).Run(s)
	require.NoError(t, err)
	assert.Equal(t, "sync", res.Mode, "override beats the scenario")
}

func TestRunner_BudgetDefersToNextTurn(t *testing.T) {
	res, err := newTestRunner(WithMaxRunsPerFlush(1)).Run(mustParse(t, twoEffects))
	require.NoError(t, err)

	require.Len(t, res.Trace, 6)
	assert.Equal(t, "set s.a = 2", res.Trace[2])
	assert.Equal(t, "effect one: 2", res.Trace[3])
	assert.True(t, strings.HasPrefix(res.Trace[4], "warn R020: Flush budget exceeded"), res.Trace[4])
	assert.Equal(t, "effect two: 2", res.Trace[5])
}

func TestRunner_BatchStepCoalesces(t *testing.T) {
	s := mustParse(t, `
name: coalesce
targets:
  s: {a: 1, b: 1}
effects:
  - {name: sum, log: [s.a, s.b]}
steps:
  - batch:
      - set: s.a
        value: 2
      - set: s.b
        value: 3
`)

	batched, err := newTestRunner().Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"effect sum: 1 1",
		"batch begin",
		"set s.a = 2",
		"set s.b = 3",
		"batch end",
		"effect sum: 2 3",
	}, batched.Trace)

	immediate, err := newTestRunner(WithSchedulerOverride("sync")).Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"effect sum: 1 1",
		"batch begin",
		"set s.a = 2",
		"effect sum: 2 1",
		"set s.b = 3",
		"effect sum: 2 3",
		"batch end",
	}, immediate.Trace)
}

func TestRunner_RuntimeErrorHasLocation(t *testing.T) {
	s := mustParse(t, `
name: scalar
targets:
  s: {a: 1}
effects: []
steps:
  - set: s.a.b
    value: 1
`)

	_, err := newTestRunner().Run(s)
	require.Error(t, err)
	var re *rerrors.ReactiveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "R061", re.Code)
}

func TestRunner_SharesCollectorsAcrossRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	rm := reactive.NewMetrics(reg, reactive.WithNamespace("test"))
	sm := scheduler.NewMetrics(reg, "test")
	runner := newTestRunner(WithMetrics(rm, sm))

	s := mustParse(t, twoEffects)
	for i := 0; i < 2; i++ {
		res, err := runner.Run(s)
		require.NoError(t, err)
		assert.True(t, res.Passed())
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_effect_runs_total")
	assert.Contains(t, names, "test_scheduler_flushes_total")
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "test_scheduler_flushes_total"))
}
