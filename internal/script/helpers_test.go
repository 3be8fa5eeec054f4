package script

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRunner(opts ...RunnerOption) *Runner {
	base := []RunnerOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return NewRunner(append(base, opts...)...)
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := Parse([]byte(src), "test.yaml")
	require.NoError(t, err)
	return s
}
