package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app is the state shared by every command once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		rerrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reactive",
		Short: "Run scripted scenarios against the reactive engine",
		Long: `Reactive drives the dependency-tracking engine from YAML scenarios.

A scenario declares raw targets, the views over them and a set of
effects, then mutates the views step by step. Every step, effect run
and warning becomes one trace line, which can be checked against the
scenario's expected trace.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: ./"+config.ConfigFileName+" if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		runCmd(a),
		demoCmd(a),
		initCmd(a),
		codesCmd(a),
		versionCmd(a),
	)
	return rootCmd
}

// setup loads the configuration and applies the global flags.
func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	if a.noColor || os.Getenv("NO_COLOR") != "" {
		rerrors.DisableColors()
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if a.logFormat != "" {
		cfg.Log.Format = strings.ToLower(a.logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(a.errOut)
	return nil
}

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", a.paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.out, "  %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failure message.
func (a *app) failure(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", a.paint("\033[31m", "✗"), fmt.Sprintf(format, args...))
}

func (a *app) paint(code, text string) string {
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		return text
	}
	return code + text + "\033[0m"
}
