package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/script"
)

func demoCmd(a *app) *cobra.Command {
	var (
		opts runOptions
		list bool
	)

	cmd := &cobra.Command{
		Use:   "demo [name]...",
		Short: "Run the built-in scenarios",
		Long: `Run the scenarios embedded in the binary.

Each one demonstrates a part of the engine: dependency links, array
length handling, enumeration, readonly views, batching and effect
lifecycle. Without names every scenario runs.

Examples:
  reactive demo --list
  reactive demo basic-link --trace
  reactive demo --scheduler=sync`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return a.listBuiltins()
			}

			s, err := a.session(opts)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = script.BuiltinNames()
			}
			failed := 0
			for _, name := range names {
				sc, err := script.Builtin(name)
				if err != nil {
					return err
				}
				if !s.runScenario(sc) {
					failed++
				}
			}
			return a.finish(s, failed)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the built-in scenarios")

	return cmd
}

func (a *app) listBuiltins() error {
	for _, name := range script.BuiltinNames() {
		sc, err := script.Builtin(name)
		if err != nil {
			return err
		}
		a.info("%-16s %s", name, sc.Description)
	}
	return nil
}
