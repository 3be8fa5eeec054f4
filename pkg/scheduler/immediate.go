package scheduler

import "github.com/vango-dev/reactive/pkg/reactive"

// Immediate runs every notified effect synchronously, the same as having no
// scheduler. It exists so callers can pick a scheduler by configuration.
type Immediate struct{}

var _ reactive.Scheduler = Immediate{}

// Schedule runs e at once.
func (Immediate) Schedule(e *reactive.Effect) {
	e.Run()
}
