// Package script runs YAML scenarios against the reactive engine.
//
// A scenario declares raw targets, views over them, effects that log an
// expression each time they run, and a list of steps that mutate the
// views. Running it produces a trace: one line per step, per effect run,
// and per warning. Scenarios may list the trace they expect.
//
// # Scenario Format
//
//	name: basic-link
//	description: An effect re-runs when a property it read changes.
//	scheduler: sync          # sync or batch (optional)
//	targets:
//	  state: {foo: 1}        # mappings become Objects, sequences Arrays
//	views:                   # optional; defaults to a reactive view per target
//	  - name: frozen
//	    target: state
//	    mode: readonly       # reactive, shallowReactive, readonly, shallowReadonly
//	effects:
//	  - name: log
//	    log: state.foo       # one expression or a list
//	    lazy: false
//	steps:
//	  - set: state.foo
//	    value: 2
//	  - delete: state.foo
//	  - push: list
//	    value: x
//	  - pop: list
//	  - length: list
//	    value: 0
//	  - run: log
//	  - stop: log
//	  - batch:
//	      - set: state.a
//	        value: 1
//	expect:
//	  - "effect log: 1"
//	  - "set state.foo = 2"
//	  - "effect log: 2"
//
// # Expressions
//
// Expressions address values through views: state.foo, list[0],
// list.length, state.nested.x, plus the functions keys(x), has(x.key) and
// len(x). Reads inside an effect are tracked like any other view read.
package script
