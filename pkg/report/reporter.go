// Package report aggregates suite counters into a final summary
// and renders it as human-readable text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders a Report.
type Reporter interface {
	// Render writes the report to w.
	Render(w io.Writer, r *Report) error
}

const rule = "----------------------------------------------------------------"

// TextReporter renders the summary block printed at the end of
// a run: one group per suite followed by suite and case totals.
type TextReporter struct {
	noColor bool
	bold    *color.Color
	good    *color.Color
	bad     *color.Color
}

// Option configures a TextReporter.
type Option func(*TextReporter)

// WithNoColor disables ANSI colors.
func WithNoColor(nc bool) Option {
	return func(t *TextReporter) {
		t.noColor = nc
	}
}

// NewTextReporter creates a TextReporter.
func NewTextReporter(opts ...Option) *TextReporter {
	t := &TextReporter{
		bold: color.New(color.Bold),
		good: color.New(color.FgGreen),
		bad:  color.New(color.FgRed),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.noColor {
		t.bold.DisableColor()
		t.good.DisableColor()
		t.bad.DisableColor()
	}
	return t
}

// Render writes the summary block to w.
func (t *TextReporter) Render(w io.Writer, r *Report) error {
	var sb strings.Builder

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(t.bold.Sprint(" Final Summary of All Tests") + "\n")
	sb.WriteString(rule + "\n")

	for _, s := range r.Suites {
		pct := Shares(s.Attempted, s.Passed, s.Failed, s.Excepted)
		sb.WriteString(fmt.Sprintf(
			"%s: %d attempted\n",
			strconv.Quote(s.Name), s.Attempted,
		))
		sb.WriteString(fmt.Sprintf(
			"    %d passed (%.1f%%), %d failed (%.1f%%), "+
				"%d exceptions (%.1f%%)\n",
			s.Passed, pct[0],
			s.Failed, pct[1],
			s.Excepted, pct[2],
		))
	}

	suites := Shares(r.SuitesTotal(), r.SuitesPassed, r.SuitesFailed())
	sb.WriteString("\n")
	writeLine(&sb, line("Total suites attempted", r.SuitesTotal(), -1))
	writeLine(&sb, t.good.Sprint(line(
		"Total suites completely passed", r.SuitesPassed, suites[0],
	)))
	writeLine(&sb, t.colorIf(r.SuitesFailed() > 0, line(
		"Total suites partially failed", r.SuitesFailed(), suites[1],
	)))

	cases := Shares(r.Attempted, r.Passed, r.Failed, r.Excepted)
	sb.WriteString("\n")
	writeLine(&sb, line("Total cases attempted", r.Attempted, -1))
	writeLine(&sb, line("Total cases passed", r.Passed, cases[0]))
	writeLine(&sb, t.colorIf(r.Failed > 0, line(
		"Total cases failed", r.Failed, cases[1],
	)))
	writeLine(&sb, line("Total cases excepted", r.Excepted, cases[2]))
	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (t *TextReporter) colorIf(bad bool, s string) string {
	if bad {
		return t.bad.Sprint(s)
	}
	return s
}

// line renders one right-aligned total. A negative pct omits
// the percentage.
func line(label string, n int, pct float64) string {
	if pct < 0 {
		return fmt.Sprintf("%30s: %2d", label, n)
	}
	return fmt.Sprintf("%30s: %2d (%.1f%%)", label, n, pct)
}

func writeLine(sb *strings.Builder, s string) {
	sb.WriteString(s)
	sb.WriteString("\n")
}

// Shares converts parts of whole into percentages rounded to one
// decimal place such that the rounded values never sum past
// 100. Each share is floored to a tenth, and the tenths left
// over go to the parts with the largest remainders, earlier
// parts first on ties. All shares are 0 when whole is zero.
func Shares(whole int, parts ...int) []float64 {
	out := make([]float64, len(parts))
	if whole <= 0 {
		return out
	}

	tenths := make([]int, len(parts))
	rems := make([]int, len(parts))
	sum, used := 0, 0
	for i, p := range parts {
		tenths[i] = p * 1000 / whole
		rems[i] = p * 1000 % whole
		sum += p
		used += tenths[i]
	}

	// The whole sum of parts rounds to this many tenths.
	target := (sum*1000*2 + whole) / (2 * whole)
	for left := target - used; left > 0; left-- {
		best := -1
		for i, r := range rems {
			if r > 0 && (best < 0 || r > rems[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		tenths[best]++
		rems[best] = 0
	}

	for i, n := range tenths {
		out[i] = float64(n) / 10
	}
	return out
}
