package reactive

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

// warnings collects diagnostics from a runtime's warning channel.
type warnings struct {
	errs []error
}

func (w *warnings) count(target error) int {
	n := 0
	for _, err := range w.errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *warnings) {
	t.Helper()
	w := &warnings{}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithWarningHandler(func(err error) {
			w.errs = append(w.errs, err)
		}),
	}
	return New(append(base, opts...)...), w
}
