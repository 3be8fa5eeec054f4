package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRuntime() *reactive.Runtime {
	return reactive.New(reactive.WithLogger(discardLogger()))
}

type warnings struct {
	errs []error
}

func (w *warnings) handle(err error) {
	w.errs = append(w.errs, err)
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

// recordingTracer remembers the spans it starts.
type recordingTracer struct {
	noop.Tracer
	names []string
	attrs []attribute.KeyValue
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.names = append(r.names, name)
	cfg := trace.NewSpanStartConfig(opts...)
	r.attrs = append(r.attrs, cfg.Attributes()...)
	return r.Tracer.Start(ctx, name, opts...)
}
