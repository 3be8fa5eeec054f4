package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/errors"
)

func codesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "codes [code]...",
		Short: "List diagnostic codes",
		Long:  `List every diagnostic code the engine and CLI report, or explain the given codes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := args
			if len(codes) == 0 {
				codes = errors.GetAllCodes()
			}
			for _, code := range codes {
				code = strings.ToUpper(code)
				tmpl, ok := errors.GetTemplate(code)
				if !ok {
					return errors.Newf(errors.CategoryCLI, "unknown code %q", code)
				}
				a.info("%s  %-9s %s", code, tmpl.Category, tmpl.Message)
				if len(args) > 0 && tmpl.Detail != "" {
					a.info("      %s", tmpl.Detail)
				}
			}
			return nil
		},
	}
}
