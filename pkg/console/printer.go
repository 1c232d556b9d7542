// Package console prints human-readable harness progress: suite
// opened and closed notices and one trace line per assertion.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/suite"
)

// Printer writes progress text. It implements
// registry.Notifier and assertion.Tracer.
type Printer struct {
	writer   io.Writer
	noColor  bool
	passed   *color.Color
	failed   *color.Color
	excepted *color.Color
	bold     *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithWriter sets the output stream. Defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		p.writer = w
	}
}

// WithNoColor disables ANSI colors for this printer.
func WithNoColor(nc bool) Option {
	return func(p *Printer) {
		p.noColor = nc
	}
}

// New creates a Printer.
func New(opts ...Option) *Printer {
	p := &Printer{
		writer:   os.Stdout,
		passed:   color.New(color.FgGreen),
		failed:   color.New(color.FgRed),
		excepted: color.New(color.FgYellow),
		bold:     color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.noColor {
		for _, c := range []*color.Color{
			p.passed, p.failed, p.excepted, p.bold,
		} {
			c.DisableColor()
		}
	}
	return p
}

// Writer returns the output stream.
func (p *Printer) Writer() io.Writer {
	return p.writer
}

// Banner prints a heading line, typically once per program.
func (p *Printer) Banner(title string) {
	fmt.Fprintf(p.writer, "%s\n", p.bold.Sprint(title))
}

// SuiteOpened prints the notice for a newly opened suite.
func (p *Printer) SuiteOpened(name string) {
	fmt.Fprintf(p.writer, "\n%s %s ...\n",
		p.bold.Sprint("Testing"), strconv.Quote(name))
}

// SuiteClosed prints the final counters of a completed suite.
func (p *Printer) SuiteClosed(s suite.Suite) {
	fmt.Fprintf(p.writer,
		"... %s testing completed (%s passed, %s failed, %s excepted)\n",
		strconv.Quote(s.Name),
		p.count(p.passed, s.Passed),
		p.count(p.failed, s.Failed),
		p.count(p.excepted, s.Excepted),
	)
}

// Trace prints one assertion line.
func (p *Printer) Trace(t assertion.Trace) {
	fmt.Fprintf(p.writer, "   %d. %s: %s\n",
		t.Attempt, p.Label(t.Outcome), t.Call())
}

// Label returns the colored trace label of an outcome.
func (p *Printer) Label(o suite.Outcome) string {
	switch o {
	case suite.Passed:
		return p.passed.Sprint(o.String())
	case suite.Failed:
		return p.failed.Sprint(o.String())
	default:
		return p.excepted.Sprint(o.String())
	}
}

func (p *Printer) count(c *color.Color, n int) string {
	if n == 0 {
		return "0"
	}
	return c.Sprint(n)
}
