// Package assertion evaluates checks against the suites of a
// registry and classifies each one as passed, failed, or
// excepted.
package assertion

import (
	"math"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/suite"
)

// DefaultTolerance is the absolute difference below which two
// floating-point values compare equal.
const DefaultTolerance = 0.00001

// Predicate evaluates a comparison. A returned error or a panic
// is a fault and classifies the assertion as suite.Excepted.
type Predicate func() (bool, error)

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance sets the default float tolerance. Non-positive
// and NaN values are ignored.
func WithTolerance(tolerance float64) Option {
	return func(e *Engine) {
		if tolerance > 0 {
			e.tolerance = tolerance
		}
	}
}

// WithTracer sets the receiver of per-assertion trace records.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine evaluates assertions. It holds no suite state: every
// call resolves its suite through the registry at the moment of
// evaluation. Every method returns the outcome, or an error
// wrapping one of the registry usage errors when the assertion
// could not be counted, in which case the outcome is
// meaningless.
type Engine struct {
	reg       *registry.Registry
	target    string
	tolerance float64
	tracer    Tracer
	logger    logging.Logger
}

// New creates an Engine that records into reg and targets the
// active suite.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:       reg,
		tolerance: DefaultTolerance,
		logger:    logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// In returns an Engine that targets the named suite instead of
// the active one.
func (e *Engine) In(name string) *Engine {
	c := *e
	c.target = name
	return &c
}

// Tolerance returns the default float tolerance.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Check counts one assertion of the given kind. The operand
// texts are used only for tracing.
func (e *Engine) Check(
	kind Kind,
	expected, actual string,
	p Predicate,
) (suite.Outcome, error) {
	return e.evaluate(kind, expected, func() (string, bool, error) {
		ok, err := p()
		return actual, ok, err
	})
}

// evaluate is the single fault boundary. ev computes the
// textual actual operand and the predicate result together so
// that operands produced by code under test are evaluated
// inside the boundary. ev runs without the registry lock, so
// code under test may itself use the harness.
func (e *Engine) evaluate(
	kind Kind,
	expected string,
	ev func() (actual string, ok bool, err error),
) (suite.Outcome, error) {
	outcome := suite.Excepted
	actual := faultOperand
	var fault error

	compare := func() suite.Outcome {
		var ok bool
		fault = capture(func() error {
			var err error
			actual, ok, err = ev()
			return err
		})

		switch {
		case fault != nil:
			outcome = suite.Excepted
		case ok:
			outcome = suite.Passed
		default:
			outcome = suite.Failed
		}
		return outcome
	}

	var observe func(registry.Attempt, suite.Outcome)
	if e.tracer != nil {
		observe = func(a registry.Attempt, o suite.Outcome) {
			e.tracer.Trace(Trace{
				Suite:    a.Suite,
				Attempt:  a.Number,
				Outcome:  o,
				Kind:     kind,
				Expected: expected,
				Actual:   actual,
				Fault:    fault,
			})
		}
	}

	s, err := e.reg.Record(e.target, compare, observe)
	if err != nil {
		return 0, err
	}

	if outcome == suite.Excepted {
		e.logger.Debug("assertion excepted",
			logging.SuiteField(s.Name),
			logging.StringField("kind", string(kind)),
			logging.IntField("attempt", s.Attempted))
	}
	return outcome, nil
}

// EqualInt passes when actual == expected.
func (e *Engine) EqualInt(expected, actual int) (suite.Outcome, error) {
	return e.EqualIntFunc(expected, constant(actual))
}

// NotEqualInt passes when actual != expected.
func (e *Engine) NotEqualInt(expected, actual int) (suite.Outcome, error) {
	return e.evaluate(KindNotEqualInt, formatInt(expected),
		func() (string, bool, error) {
			return formatInt(actual), actual != expected, nil
		})
}

// EqualIntFunc passes when the value returned by actual equals
// expected. A panic or error from actual is a fault.
func (e *Engine) EqualIntFunc(
	expected int,
	actual func() (int, error),
) (suite.Outcome, error) {
	return e.evaluate(KindEqualInt, formatInt(expected),
		func() (string, bool, error) {
			v, err := actual()
			if err != nil {
				return faultOperand, false, err
			}
			return formatInt(v), v == expected, nil
		})
}

// EqualString passes when actual == expected.
func (e *Engine) EqualString(
	expected, actual string,
) (suite.Outcome, error) {
	return e.EqualStringFunc(expected, constant(actual))
}

// NotEqualString passes when actual != expected.
func (e *Engine) NotEqualString(
	expected, actual string,
) (suite.Outcome, error) {
	return e.evaluate(KindNotEqualString, formatString(expected),
		func() (string, bool, error) {
			return formatString(actual), actual != expected, nil
		})
}

// EqualStringFunc passes when the value returned by actual
// equals expected.
func (e *Engine) EqualStringFunc(
	expected string,
	actual func() (string, error),
) (suite.Outcome, error) {
	return e.evaluate(KindEqualString, formatString(expected),
		func() (string, bool, error) {
			v, err := actual()
			if err != nil {
				return faultOperand, false, err
			}
			return formatString(v), v == expected, nil
		})
}

// EqualFloat passes when |expected - actual| is below the
// engine's tolerance.
func (e *Engine) EqualFloat(
	expected, actual float64,
) (suite.Outcome, error) {
	return e.EqualFloatWithin(expected, actual, e.tolerance)
}

// EqualFloatWithin passes when |expected - actual| < tolerance.
// A non-positive tolerance falls back to the engine default.
func (e *Engine) EqualFloatWithin(
	expected, actual, tolerance float64,
) (suite.Outcome, error) {
	return e.equalFloat(expected, constant(actual), tolerance)
}

// EqualFloatFunc compares the value returned by actual with
// the engine's tolerance.
func (e *Engine) EqualFloatFunc(
	expected float64,
	actual func() (float64, error),
) (suite.Outcome, error) {
	return e.equalFloat(expected, actual, e.tolerance)
}

func (e *Engine) equalFloat(
	expected float64,
	actual func() (float64, error),
	tolerance float64,
) (suite.Outcome, error) {
	if !(tolerance > 0) {
		tolerance = e.tolerance
	}
	return e.evaluate(KindEqualFloat, formatFloat(expected),
		func() (string, bool, error) {
			v, err := actual()
			if err != nil {
				return faultOperand, false, err
			}
			return formatFloat(v), math.Abs(expected-v) < tolerance, nil
		})
}

// IsTrue passes when actual is true.
func (e *Engine) IsTrue(actual bool) (suite.Outcome, error) {
	return e.IsTrueFunc(constant(actual))
}

// IsFalse passes when actual is false.
func (e *Engine) IsFalse(actual bool) (suite.Outcome, error) {
	return e.evaluate(KindIsFalse, "", func() (string, bool, error) {
		return formatBool(actual), !actual, nil
	})
}

// IsTrueFunc passes when the value returned by actual is true.
func (e *Engine) IsTrueFunc(
	actual func() (bool, error),
) (suite.Outcome, error) {
	return e.evaluate(KindIsTrue, "", func() (string, bool, error) {
		v, err := actual()
		if err != nil {
			return faultOperand, false, err
		}
		return formatBool(v), v, nil
	})
}

// Equal passes when the value returned by actual equals
// expected. It covers comparable types without a dedicated
// method.
func Equal[T comparable](
	e *Engine,
	expected T,
	actual func() (T, error),
) (suite.Outcome, error) {
	return e.evaluate(KindEqual, formatAny(expected),
		func() (string, bool, error) {
			v, err := actual()
			if err != nil {
				return faultOperand, false, err
			}
			return formatAny(v), v == expected, nil
		})
}

// Thunk adapts a function without an error result for the
// ...Func assertions.
func Thunk[T any](fn func() T) func() (T, error) {
	return func() (T, error) {
		return fn(), nil
	}
}

func constant[T any](v T) func() (T, error) {
	return func() (T, error) {
		return v, nil
	}
}
