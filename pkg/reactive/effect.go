package reactive

import (
	"fmt"
	"time"
)

// Scheduler decides when a notified effect actually runs.
type Scheduler interface {
	Schedule(e *Effect)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(e *Effect)

// Schedule calls f(e).
func (f SchedulerFunc) Schedule(e *Effect) { f(e) }

// Effect is a re-runnable computation whose reads are tracked.
//
// Each run first removes the effect from every dep it joined during the
// previous run, so the membership list always equals what the latest run
// actually read.
type Effect struct {
	id uint64
	rt *Runtime

	// fn is the effect body.
	fn func() any

	// deps are the dep sets this effect currently belongs to.
	deps []*Dep

	// scheduler, when set, receives notifications instead of an inline run.
	scheduler Scheduler

	lazy   bool
	name   string
	active bool

	onStop    func()
	onTrack   func(TrackEvent)
	onTrigger func(TriggerEvent)
}

// EffectOption is an option for configuring an Effect.
type EffectOption interface {
	isEffectOption()
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) isEffectOption()       {}
func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// Lazy skips the initial run; the effect runs on the first Run call.
func Lazy() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.lazy = true
	})
}

// WithScheduler hands notifications to s instead of running inline.
// Explicit Run calls are not affected.
func WithScheduler(s Scheduler) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.scheduler = s
	})
}

// EffectName sets the name used in logs and debug events.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// OnStop registers fn to run once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onStop = fn
	})
}

// OnTrack registers a debug hook called for each newly recorded dependency.
func OnTrack(fn func(TrackEvent)) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onTrack = fn
	})
}

// OnTrigger registers a debug hook called each time a mutation notifies
// the effect, before it runs or is scheduled.
func OnTrigger(fn func(TriggerEvent)) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onTrigger = fn
	})
}

// Effect registers fn as an effect and, unless Lazy is given, runs it
// immediately.
//
// Example:
//
//	rt.Effect(func() {
//	    fmt.Println("foo is", state.Get("foo"))
//	})
func (rt *Runtime) Effect(fn func(), opts ...EffectOption) *Effect {
	return rt.EffectValue(func() any {
		fn()
		return nil
	}, opts...)
}

// EffectValue is Effect for bodies that produce a value, returned by Run.
func (rt *Runtime) EffectValue(fn func() any, opts ...EffectOption) *Effect {
	e := &Effect{
		id:     nextID(),
		rt:     rt,
		fn:     fn,
		active: true,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if !e.lazy {
		e.Run()
	}
	return e
}

// CreateEffect registers an effect on the Default runtime.
func CreateEffect(fn func(), opts ...EffectOption) *Effect {
	return Default().Effect(fn, opts...)
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the configured name, or "" if none was set.
func (e *Effect) Name() string {
	return e.name
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

// Dependencies returns the dep sets the effect currently belongs to.
func (e *Effect) Dependencies() []*Dep {
	return append([]*Dep(nil), e.deps...)
}

// Run executes the body synchronously, rebuilding the effect's
// dependencies, and returns the body's result.
//
// Running an effect that is already executing further up the call chain
// is a no-op returning nil. A stopped effect runs its body untracked.
func (e *Effect) Run() any {
	rt := e.rt
	if !e.active {
		var result any
		rt.Untracked(func() { result = e.fn() })
		return result
	}
	if rt.onStack(e) {
		if rt.debug.LogEffectRuns {
			rt.logger.Debug("effect run skipped", "effect", e.label(), "reason", "already running")
		}
		return nil
	}

	e.cleanup()

	rt.pushEffect(e)
	oldTrack := rt.shouldTrack
	rt.shouldTrack = true
	defer func() {
		rt.shouldTrack = oldTrack
		rt.popEffect()
	}()

	rt.metrics.effectRan()
	if rt.debug.LogEffectRuns {
		start := time.Now()
		defer func() {
			rt.logger.Debug("effect run", "effect", e.label(), "deps", len(e.deps), "elapsed", time.Since(start))
		}()
	}

	return e.fn()
}

// Stop removes the effect from every dependency and runs its OnStop hook.
// Later notifications never reach it. Stop is idempotent.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanup()
	e.active = false
	if e.onStop != nil {
		e.onStop()
	}
}

// cleanup removes the effect from every dep it belongs to.
func (e *Effect) cleanup() {
	for i, d := range e.deps {
		delete(d.subs, e)
		e.deps[i] = nil
	}
	e.deps = e.deps[:0]
}

// label identifies the effect in logs.
func (e *Effect) label() string {
	if e.name != "" {
		return e.name
	}
	return fmt.Sprintf("effect#%d", e.id)
}
