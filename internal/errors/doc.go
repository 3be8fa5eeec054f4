// Package errors provides coded, categorised diagnostics for the reactive
// engine and its tooling.
//
// Every diagnostic carries a registered code (e.g. "R001") that maps to a
// category, a short message and a longer explanation. The engine never
// returns these as fatal errors: they travel through the runtime's warning
// channel, or out of the scenario loader and CLI.
//
// # Error Categories
//
//   - runtime: permission violations and misuse of views
//   - scheduler: flush budget and loop lifecycle problems
//   - config: invalid configuration files or flags
//   - scenario: malformed scenario files and expressions
//
// # Usage
//
//	err := errors.New("R001").
//	    WithDetail(`Set("foo") on a readonly view`).
//	    Wrap(reactive.ErrReadonly)
//
//	fmt.Println(err.FormatCompact())
//	// R001: Set on readonly view
package errors
