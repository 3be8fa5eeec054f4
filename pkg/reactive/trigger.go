package reactive

// TriggerOp classifies a mutation.
type TriggerOp uint8

const (
	// TriggerSet is a value update of a key that already existed.
	TriggerSet TriggerOp = iota + 1

	// TriggerAdd is a structural add: a new key, an array index at or
	// past the current length, or a write into an array hole.
	TriggerAdd

	// TriggerDelete is a structural delete of an own key.
	TriggerDelete
)

// String returns a human-readable name for the trigger operation.
func (op TriggerOp) String() string {
	switch op {
	case TriggerSet:
		return "set"
	case TriggerAdd:
		return "add"
	case TriggerDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// TriggerEvent describes a notification delivered to an effect.
type TriggerEvent struct {
	Effect   *Effect
	Target   Target
	Key      any
	Op       TriggerOp
	NewValue any
	OldValue any
}

// trigger resolves every effect interested in a mutation of (t, key) and
// runs or schedules each exactly once.
func (rt *Runtime) trigger(t Target, op TriggerOp, key, newValue, oldValue any) {
	rt.metrics.triggerFired(op)

	km := rt.store.lookup(t)
	if km == nil {
		return
	}

	active := rt.activeEffect()
	seen := make(map[*Effect]struct{})
	var effects []*Effect
	add := func(d *Dep) {
		if d == nil {
			return
		}
		for e := range d.subs {
			if e == active {
				continue
			}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			effects = append(effects, e)
		}
	}

	add(km[key])

	if op == TriggerAdd || op == TriggerDelete {
		add(km[IterateKey])
	}

	// A write into a hole adds a key without changing the length.
	_, filled := oldValue.(hole)
	if filled {
		oldValue = nil
	}

	_, isArray := t.(*Array)
	if isArray && op == TriggerAdd && !filled {
		add(km[LengthKey])
	}

	if isArray && key == any(LengthKey) {
		newLen, _ := newValue.(int)
		if oldLen, ok := oldValue.(int); ok && newLen < oldLen {
			add(km[IterateKey])
		}
		for k, d := range km {
			if i, ok := k.(int); ok && i >= newLen {
				add(d)
			}
		}
	}

	if len(effects) == 0 {
		return
	}
	sortEffects(effects)

	if rt.debug.LogTriggers {
		rt.logger.Debug("trigger", "key", describeKey(key), "op", op.String(), "effects", len(effects))
	}

	for _, e := range effects {
		if e.onTrigger != nil {
			e.onTrigger(TriggerEvent{
				Effect:   e,
				Target:   t,
				Key:      key,
				Op:       op,
				NewValue: newValue,
				OldValue: oldValue,
			})
		}
		if e.scheduler != nil {
			rt.metrics.effectScheduled()
			e.scheduler.Schedule(e)
			continue
		}
		e.Run()
	}
}
