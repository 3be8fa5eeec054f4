// Package reactive provides a dependency-tracking and notification engine
// over plain keyed data.
//
// A View intercepts reads and writes on a raw Object or Array. Reads made
// while an Effect is running subscribe that effect to the (target, key)
// pair; later writes through any mutable view of the same target re-run
// the subscribed effects, either inline or through a Scheduler.
//
// # Core Types
//
// Runtime holds the tracking state (the active-effect stack and the
// dependency store). Independent runtimes never observe each other:
//
//	rt := reactive.New()
//	state := rt.Reactive(reactive.FromMap(map[string]any{"count": 0}))
//
//	rt.Effect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//
//	state.Set("count", 1) // prints "count is 1" before Set returns
//
// Views come in four modes: Reactive, ShallowReactive, Readonly and
// ShallowReadonly. Deep views wrap nested Objects and Arrays on access;
// readonly views reject writes through the warning channel and never
// record dependencies.
//
// # Structural Changes
//
// Keys() depends on the target's shape rather than any single property,
// so adding or deleting a key re-runs it while a same-shape value update
// does not. On arrays, appending past the end also notifies readers of
// "length", and shrinking "length" notifies readers of every index at or
// beyond the new bound.
//
// # Scheduling
//
// Effects created with WithScheduler hand themselves to the scheduler
// instead of running on notification. See package scheduler for a
// deduplicating queue flushed once per loop turn.
//
// # Thread Safety
//
// A Runtime and the views it creates must be used from one goroutine at a
// time. The dependency store is pruned concurrently by the garbage
// collector when raw targets become unreachable; that path is locked
// internally.
package reactive
