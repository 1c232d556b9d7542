// Package harness assembles a registry, an assertion engine, a
// console printer, and a summary reporter into a single entry
// point for test programs.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/config"
	"digital.vasic.harness/pkg/console"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/monitor"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/report"
)

// Option configures a Harness.
type Option func(*Harness)

// WithOutput sets the progress and summary stream. Defaults to
// stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) {
		if w != nil {
			h.out = w
		}
	}
}

// WithLogger sets the diagnostic logger. Defaults to a console
// logger on stderr, verbose when the config says so. With a
// monitor configured, diagnostics are also mirrored to it at
// debug level.
func WithLogger(l logging.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithReporter replaces the text summary reporter.
func WithReporter(r report.Reporter) Option {
	return func(h *Harness) {
		if r != nil {
			h.reporter = r
		}
	}
}

// Harness is one test program's session: every suite opened
// through it lands in the same registry and the same summary.
type Harness struct {
	cfg      *config.Config
	out      io.Writer
	logger   logging.Logger
	reporter report.Reporter
	printer  *console.Printer
	reg      *registry.Registry
	engine   *assertion.Engine
	monitor  *monitor.Server
	stop     context.CancelFunc
}

// New builds a Harness from cfg. A nil cfg uses
// config.Default(). When cfg.MonitorAddr is set the console
// output is mirrored to a WebSocket monitor listening there.
func New(cfg *config.Config, opts ...Option) (*Harness, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid harness config: %w", err)
	}

	h := &Harness{
		cfg: cfg,
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.NewConsoleLogger(cfg.Verbose)
	}
	if h.reporter == nil {
		h.reporter = report.NewTextReporter(
			report.WithNoColor(cfg.NoColor),
		)
	}

	progress := h.out
	if cfg.MonitorAddr != "" {
		// The monitor keeps the operator logger only; logging
		// its own writes back into itself would recurse.
		h.monitor = monitor.NewServer(monitor.WithLogger(h.logger))
		ctx, cancel := context.WithCancel(context.Background())
		if err := h.monitor.Listen(ctx, cfg.MonitorAddr); err != nil {
			cancel()
			return nil, err
		}
		h.stop = cancel
		progress = io.MultiWriter(h.out, h.monitor)
		h.out = progress
		h.logger = logging.NewMultiLogger(
			h.logger,
			logging.NewConsoleLoggerTo(h.monitor, true),
		)
	}

	h.printer = console.New(
		console.WithWriter(progress),
		console.WithNoColor(cfg.NoColor),
	)
	h.reg = registry.New(
		registry.WithLogger(h.logger),
		registry.WithNotifier(h.printer),
	)
	h.engine = assertion.New(h.reg,
		assertion.WithTolerance(cfg.Tolerance),
		assertion.WithTracer(h.printer),
		assertion.WithLogger(h.logger),
	)

	h.logger.Debug("harness ready",
		logging.LogField("tolerance", cfg.Tolerance),
		logging.LogField("no_color", cfg.NoColor),
		logging.StringField("monitor", h.MonitorAddr()))
	return h, nil
}

// Banner prints a heading line to the progress stream.
func (h *Harness) Banner(title string) {
	h.printer.Banner(title)
}

// Open creates the named suite and makes it active.
func (h *Harness) Open(name string) (*registry.Handle, error) {
	return h.reg.Open(name)
}

// Close completes the named suite.
func (h *Harness) Close(name string) error {
	return h.reg.Close(name)
}

// Suite opens the named suite, hands fn an engine bound to it,
// and closes the suite when fn returns or panics.
func (h *Harness) Suite(name string, fn func(a *assertion.Engine)) error {
	return h.reg.Run(name, func(*registry.Handle) {
		fn(h.engine.In(name))
	})
}

// Assert returns the engine that targets the active suite.
func (h *Harness) Assert() *assertion.Engine {
	return h.engine
}

// Registry returns the underlying suite registry.
func (h *Harness) Registry() *registry.Registry {
	return h.reg
}

// Summary aggregates every suite registered so far.
func (h *Harness) Summary() *report.Report {
	return report.Build(h.reg)
}

// Report renders the summary to the progress stream.
func (h *Harness) Report() error {
	return h.reporter.Render(h.out, h.Summary())
}

// MonitorAddr returns the live monitor's address, or "" when
// no monitor is running.
func (h *Harness) MonitorAddr() string {
	if h.monitor == nil {
		return ""
	}
	return h.monitor.Addr()
}

// Shutdown stops the live monitor, if any. Suites are left as
// they are.
func (h *Harness) Shutdown(ctx context.Context) error {
	if h.monitor == nil {
		return nil
	}
	defer h.stop()
	if err := h.monitor.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop monitor: %w", err)
	}
	return nil
}
