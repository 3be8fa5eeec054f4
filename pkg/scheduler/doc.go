// Package scheduler batches effect re-runs.
//
// A Loop models a single-threaded host: every synchronous section runs as a
// turn, and microtasks queued during a turn run as soon as the turn's own
// code returns. A Queue is a reactive.Scheduler that collects notified
// effects, deduplicates them, and flushes them once per turn from a
// microtask.
//
//	loop := scheduler.NewLoop()
//	queue := scheduler.NewQueue(loop)
//
//	rt.Effect(func() {
//	    fmt.Println(state.Get("a"), state.Get("b"))
//	}, reactive.WithScheduler(queue))
//
//	loop.Turn(func() {
//	    state.Set("a", 1)
//	    state.Set("b", 2)
//	})
//	// The effect ran once, after both writes.
//
// Work produced on other goroutines is handed to the loop with Post and
// executed by Run or RunPending.
package scheduler
