package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for harness-demo.
const (
	// ExitSuccess indicates every suite fully passed.
	ExitSuccess = 0

	// ExitTestFailure indicates at least one suite had a
	// failed assertion.
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration error.
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage.
	ExitUsageError = 64
)

var (
	errTestFailure = errors.New("some suites did not fully pass")
	errConfig      = errors.New("configuration error")
)

type rootOptions struct {
	configPath string
	envFile    string
	noColor    bool
	verbose    bool
	monitor    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "harness-demo",
		Short: "Run example programs against the test harness",
		Long: `harness-demo runs small example programs through the
harness: each program opens a suite, makes assertions, and closes
it. A summary of every suite is printed at the end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "",
		"path to a YAML config file")
	pf.StringVar(&opts.envFile, "env-file", "",
		"path to a .env file with HARNESS_* variables")
	pf.BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false,
		"print debug diagnostics to stderr")
	pf.StringVar(&opts.monitor, "monitor", "",
		"serve a live console mirror over WebSocket on this address")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newListCmd())
	return root
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errTestFailure):
		return ExitTestFailure
	case errors.Is(err, errConfig):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfigError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsageError
	}
}
