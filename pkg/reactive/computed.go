package reactive

// Computed is a cached derived value built on a lazy effect.
//
// The getter runs on the first Get and again only after one of its
// dependencies changed. A Computed is itself trackable: effects reading it
// re-run when it is invalidated.
//
// Example:
//
//	doubled := reactive.NewComputed(rt, func() int {
//	    n, _ := state.Get("count").(int)
//	    return n * 2
//	})
//	doubled.Get()
type Computed[T any] struct {
	rt     *Runtime
	effect *Effect

	// anchor is the raw target readers of this value subscribe to.
	anchor *Object

	value T
	dirty bool
}

// NewComputed creates a Computed on rt.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{
		rt:     rt,
		anchor: NewObject(),
		dirty:  true,
	}
	c.effect = rt.EffectValue(func() any {
		return getter()
	}, Lazy(), EffectName("computed"), WithScheduler(SchedulerFunc(func(*Effect) {
		if c.dirty {
			return
		}
		c.dirty = true
		rt.trigger(c.anchor, TriggerSet, computedValueKey, nil, nil)
	})))
	return c
}

// Get returns the value, recomputing it if a dependency changed, and
// records a dependency on it.
func (c *Computed[T]) Get() T {
	c.refresh()
	c.rt.track(c.anchor, computedValueKey, TrackGet)
	return c.value
}

// Peek returns the value without recording a dependency.
// It still recomputes if the value is stale.
func (c *Computed[T]) Peek() T {
	c.refresh()
	return c.value
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Effect returns the lazy effect computing the value.
func (c *Computed[T]) Effect() *Effect {
	return c.effect
}

// Stop detaches the computed from its dependencies. The last value stays
// readable.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}

func (c *Computed[T]) refresh() {
	if !c.dirty || !c.effect.Active() {
		return
	}
	if v, ok := c.effect.Run().(T); ok {
		c.value = v
	} else {
		var zero T
		c.value = zero
	}
	c.dirty = false
}
