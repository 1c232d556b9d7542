package assertion

import (
	"fmt"
	"strconv"

	"digital.vasic.harness/pkg/suite"
)

// faultOperand stands in for an operand that could not be
// computed because evaluation faulted.
const faultOperand = "<fault>"

// Trace describes one evaluated assertion.
type Trace struct {
	// Suite is the suite the assertion was counted against.
	Suite string

	// Attempt is the running attempt number within the suite.
	Attempt int

	// Outcome is the classification of the assertion.
	Outcome suite.Outcome

	// Kind is the comparison performed.
	Kind Kind

	// Expected is the textual expected operand. Empty for
	// unary kinds.
	Expected string

	// Actual is the textual actual operand.
	Actual string

	// Fault is set when Outcome is suite.Excepted.
	Fault error
}

// Call renders the assertion as KIND(expected, actual), with
// the fault appended for excepted assertions.
func (t Trace) Call() string {
	var call string
	if t.Kind.Unary() {
		call = fmt.Sprintf("%s(%s)", t.Kind, t.Actual)
	} else {
		call = fmt.Sprintf("%s(%s, %s)", t.Kind, t.Expected, t.Actual)
	}
	if t.Fault != nil {
		call += fmt.Sprintf(" [fault: %v]", t.Fault)
	}
	return call
}

// String renders the full trace line without indentation.
func (t Trace) String() string {
	return fmt.Sprintf("%d. %s: %s", t.Attempt, t.Outcome, t.Call())
}

// Tracer receives one Trace per counted assertion. Calls are
// made while the registry lock is held, so a Tracer must not
// use the registry or the engine. A panicking Tracer is logged
// and does not change the outcome.
type Tracer interface {
	Trace(t Trace)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(t Trace)

// Trace calls f(t).
func (f TracerFunc) Trace(t Trace) { f(t) }

func formatInt(v int) string { return strconv.Itoa(v) }

func formatString(v string) string { return strconv.Quote(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string { return strconv.FormatBool(v) }

func formatAny(v any) string {
	if s, ok := v.(string); ok {
		return formatString(s)
	}
	return fmt.Sprintf("%v", v)
}
