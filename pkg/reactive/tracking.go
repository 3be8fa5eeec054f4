package reactive

// TrackOp identifies the kind of read that recorded a dependency.
type TrackOp uint8

const (
	TrackGet TrackOp = iota + 1
	TrackHas
	TrackIterate
)

// String returns a human-readable name for the track operation.
func (op TrackOp) String() string {
	switch op {
	case TrackGet:
		return "get"
	case TrackHas:
		return "has"
	case TrackIterate:
		return "iterate"
	default:
		return "unknown"
	}
}

// TrackEvent describes a dependency recorded for an effect.
type TrackEvent struct {
	Effect *Effect
	Target Target
	Key    any
	Op     TrackOp
}

// activeEffect returns the innermost running effect, or nil.
func (rt *Runtime) activeEffect() *Effect {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// ActiveEffect returns the innermost running effect, or nil when no effect
// is running.
func (rt *Runtime) ActiveEffect() *Effect {
	return rt.activeEffect()
}

// onStack reports whether e is running anywhere in the current call chain.
func (rt *Runtime) onStack(e *Effect) bool {
	for _, running := range rt.stack {
		if running == e {
			return true
		}
	}
	return false
}

func (rt *Runtime) pushEffect(e *Effect) {
	rt.stack = append(rt.stack, e)
}

func (rt *Runtime) popEffect() {
	rt.stack[len(rt.stack)-1] = nil
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// Untracked runs fn without recording reads as dependencies of the running
// effect.
//
// Example:
//
//	rt.Effect(func() {
//	    total := state.Get("total") // tracked
//	    rt.Untracked(func() {
//	        log.Println(state.Get("debug")) // not tracked
//	    })
//	    _ = total
//	})
func (rt *Runtime) Untracked(fn func()) {
	old := rt.shouldTrack
	rt.shouldTrack = false
	defer func() { rt.shouldTrack = old }()
	fn()
}

// track records the running effect as a subscriber of (t, key).
// It is a no-op when no effect is running or tracking is paused.
func (rt *Runtime) track(t Target, key any, op TrackOp) {
	if !rt.shouldTrack {
		return
	}
	e := rt.activeEffect()
	if e == nil {
		return
	}

	d := rt.store.dep(t, key)
	if d.Has(e) {
		return
	}
	d.subs[e] = struct{}{}
	e.deps = append(e.deps, d)

	rt.metrics.trackRecorded()
	if rt.debug.LogTracks {
		rt.logger.Debug("track", "effect", e.label(), "key", describeKey(key), "op", op.String())
	}
	if e.onTrack != nil {
		e.onTrack(TrackEvent{Effect: e, Target: t, Key: key, Op: op})
	}
}
