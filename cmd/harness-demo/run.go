package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/config"
	"digital.vasic.harness/pkg/env"
	"digital.vasic.harness/pkg/harness"
	"digital.vasic.harness/pkg/logging"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [program...]",
		Short: "Run example programs",
		Long: `Run the named example programs in order, or all of them
when none is named, then print the final summary.

Examples:
  harness-demo run
  harness-demo run twice pluralize
  harness-demo run --no-color safe_invert`,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return programNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd, opts, args)
		},
	}
}

func runPrograms(cmd *cobra.Command, opts *rootOptions, names []string) error {
	selected, err := selectPrograms(names)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), cfg.Verbose)
	defer logger.Close()

	h, err := harness.New(cfg,
		harness.WithOutput(cmd.OutOrStdout()),
		harness.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Shutdown(ctx); err != nil {
			logger.Warn("shutdown failed", logging.ErrorField(err))
		}
	}()

	h.Banner("Testing harness ...")
	for _, p := range selected {
		if err := p.run(h); err != nil {
			return err
		}
	}

	if err := h.Report(); err != nil {
		return err
	}
	if !h.Summary().AllPassed() {
		return errTestFailure
	}
	return nil
}

// loadConfig layers the config file, the environment, and the
// command-line flags, in that order of increasing precedence.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	loader := env.NewLoader()
	if opts.envFile != "" {
		if err := loader.Load(opts.envFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(loader); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-color") {
		cfg.NoColor = opts.noColor
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("monitor") {
		cfg.MonitorAddr = opts.monitor
	}
	return cfg, nil
}
