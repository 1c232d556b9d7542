package assertion

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/suite"
)

// traceRecorder collects every trace emitted by an engine.
type traceRecorder struct {
	traces []Trace
}

func (r *traceRecorder) Trace(t Trace) {
	r.traces = append(r.traces, t)
}

func (r *traceRecorder) last(t *testing.T) Trace {
	t.Helper()
	require.NotEmpty(t, r.traces)
	return r.traces[len(r.traces)-1]
}

func newEngine(
	t *testing.T, name string, opts ...Option,
) (*Engine, *registry.Registry, *traceRecorder) {
	t.Helper()
	reg := registry.New()
	if name != "" {
		_, err := reg.Open(name)
		require.NoError(t, err)
	}
	rec := &traceRecorder{}
	opts = append([]Option{WithTracer(rec)}, opts...)
	return New(reg, opts...), reg, rec
}

func requireOutcome(
	t *testing.T, want suite.Outcome, got suite.Outcome, err error,
) {
	t.Helper()
	require.NoError(t, err)
	require.Equal(t, want, got, "want %s, got %s", want, got)
}

var zero int

func twice(x int) (int, error) {
	if x == -1 {
		return 0, errors.New("can't call twice on -1")
	}
	return 2 * x, nil
}

func TestEngine_EqualInt(t *testing.T) {
	e, reg, rec := newEngine(t, "math")

	o, err := e.EqualInt(4, 2*2)
	requireOutcome(t, suite.Passed, o, err)

	o, err = e.EqualInt(4, 3*2)
	requireOutcome(t, suite.Failed, o, err)

	s, _ := reg.Get("math")
	assert.Equal(t, 2, s.Attempted)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)

	tr := rec.last(t)
	assert.Equal(t, "2. FAILED: EQUAL_INT(4, 6)", tr.String())
	assert.Equal(t, "math", tr.Suite)
}

func TestEngine_NotEqualInt(t *testing.T) {
	e, _, rec := newEngine(t, "twice")

	o, err := e.NotEqualInt(4, 6)
	requireOutcome(t, suite.Passed, o, err)
	o, err = e.NotEqualInt(4, 4)
	requireOutcome(t, suite.Failed, o, err)
	assert.Equal(t, "NOT_EQUAL_INT(4, 4)", rec.last(t).Call())
}

func TestEngine_EqualString(t *testing.T) {
	e, _, rec := newEngine(t, "pluralize")

	o, err := e.EqualString("cats", "cats")
	requireOutcome(t, suite.Passed, o, err)
	assert.Equal(t, `EQUAL_STR("cats", "cats")`, rec.last(t).Call())

	o, err = e.EqualString("babies", "babys")
	requireOutcome(t, suite.Failed, o, err)

	o, err = e.NotEqualString("cat", "cats")
	requireOutcome(t, suite.Passed, o, err)
}

func TestEngine_EqualFloat_DefaultTolerance(t *testing.T) {
	e, _, _ := newEngine(t, "floats")

	o, err := e.EqualFloat(1.0/3.0, 0.3333333)
	requireOutcome(t, suite.Passed, o, err)

	o, err = e.EqualFloat(0.5, 0.50002)
	requireOutcome(t, suite.Failed, o, err)

	o, err = e.EqualFloat(0.3, 1.0/3.0)
	requireOutcome(t, suite.Failed, o, err)
}

func TestEngine_EqualFloatWithin(t *testing.T) {
	e, _, _ := newEngine(t, "floats")

	o, err := e.EqualFloatWithin(0.5, 0.50002, 0.001)
	requireOutcome(t, suite.Passed, o, err)

	o, err = e.EqualFloatWithin(0.5, 0.50002, 0)
	requireOutcome(t, suite.Failed, o, err)
}

func TestEngine_WithTolerance(t *testing.T) {
	e, _, _ := newEngine(t, "floats", WithTolerance(0.1))
	assert.Equal(t, 0.1, e.Tolerance())

	o, err := e.EqualFloat(0.3, 1.0/3.0)
	requireOutcome(t, suite.Passed, o, err)

	ignored, _, _ := newEngine(t, "floats", WithTolerance(-1))
	assert.Equal(t, DefaultTolerance, ignored.Tolerance())
}

func TestEngine_EqualFloat_NaNFails(t *testing.T) {
	e, _, _ := newEngine(t, "floats")
	nan := 0.0
	nan /= nan

	o, err := e.EqualFloat(nan, nan)
	requireOutcome(t, suite.Failed, o, err)
}

func TestEngine_IsTrueIsFalse(t *testing.T) {
	e, _, rec := newEngine(t, "bools")

	o, err := e.IsTrue(0.5 == 1.0/2.0)
	requireOutcome(t, suite.Passed, o, err)
	assert.Equal(t, "IS_TRUE(true)", rec.last(t).Call())

	o, err = e.IsTrue(false)
	requireOutcome(t, suite.Failed, o, err)

	o, err = e.IsFalse(false)
	requireOutcome(t, suite.Passed, o, err)
	assert.Equal(t, "IS_FALSE(false)", rec.last(t).Call())

	o, err = e.IsFalse(true)
	requireOutcome(t, suite.Failed, o, err)
}

func TestEngine_EqualIntFunc_ErrorIsExcepted(t *testing.T) {
	e, reg, rec := newEngine(t, "twice")

	o, err := e.EqualIntFunc(4, func() (int, error) { return twice(2) })
	requireOutcome(t, suite.Passed, o, err)

	o, err = e.EqualIntFunc(1, func() (int, error) { return twice(-1) })
	requireOutcome(t, suite.Excepted, o, err)

	tr := rec.last(t)
	assert.Equal(t, suite.Excepted, tr.Outcome)
	assert.EqualError(t, tr.Fault, "can't call twice on -1")
	assert.Equal(t,
		"2. EXCEPTION: EQUAL_INT(1, <fault>) [fault: can't call twice on -1]",
		tr.String())

	s, _ := reg.Get("twice")
	assert.Equal(t, 1, s.Excepted)
	assert.Zero(t, s.Failed)
}

func TestEngine_DivisionByZero_IsExceptedAndDoesNotAbort(t *testing.T) {
	e, reg, rec := newEngine(t, "divide")

	o, err := e.EqualIntFunc(1, func() (int, error) {
		return 10 / zero, nil
	})
	requireOutcome(t, suite.Excepted, o, err)

	var fault *Fault
	require.ErrorAs(t, rec.last(t).Fault, &fault)
	var rtErr runtime.Error
	assert.ErrorAs(t, rec.last(t).Fault, &rtErr)

	o, err = e.EqualInt(4, 4)
	requireOutcome(t, suite.Passed, o, err)

	s, _ := reg.Get("divide")
	assert.Equal(t, 2, s.Attempted)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Excepted)
	assert.Zero(t, s.Failed)
}

func TestEngine_PanickingFuncs_AreExcepted(t *testing.T) {
	e, reg, _ := newEngine(t, "panics")

	_, err := e.EqualStringFunc("x", func() (string, error) {
		panic("string boom")
	})
	require.NoError(t, err)
	_, err = e.EqualFloatFunc(0.5, func() (float64, error) {
		panic(errors.New("safe_invert: can't invert 0"))
	})
	require.NoError(t, err)
	_, err = e.IsTrueFunc(func() (bool, error) {
		var m map[string]int
		m["x"] = 1
		return true, nil
	})
	require.NoError(t, err)

	s, _ := reg.Get("panics")
	assert.Equal(t, 3, s.Excepted)
	assert.Equal(t, s.Attempted, s.Passed+s.Failed+s.Excepted)
}

func TestEngine_Check_Custom(t *testing.T) {
	e, _, rec := newEngine(t, "custom")

	o, err := e.Check("SORTED", "[1 2 3]", "[1 2 3]",
		func() (bool, error) { return true, nil })
	requireOutcome(t, suite.Passed, o, err)
	assert.Equal(t, "SORTED([1 2 3], [1 2 3])", rec.last(t).Call())

	o, err = e.Check("SORTED", "", "", func() (bool, error) {
		return false, errors.New("cannot sort")
	})
	requireOutcome(t, suite.Excepted, o, err)
}

func TestEqual_Generic(t *testing.T) {
	e, _, rec := newEngine(t, "generic")

	type point struct{ X, Y int }
	o, err := Equal(e, point{1, 2}, Thunk(func() point {
		return point{1, 2}
	}))
	requireOutcome(t, suite.Passed, o, err)
	assert.Equal(t, "EQUAL({1 2}, {1 2})", rec.last(t).Call())

	o, err = Equal(e, "a", Thunk(func() string { return "b" }))
	requireOutcome(t, suite.Failed, o, err)
	assert.Equal(t, `EQUAL("a", "b")`, rec.last(t).Call())

	o, err = Equal(e, 1, func() (int, error) { return 0, errors.New("x") })
	requireOutcome(t, suite.Excepted, o, err)
}

func TestEngine_NoActiveSuite(t *testing.T) {
	e, reg, rec := newEngine(t, "")

	_, err := e.EqualInt(1, 1)
	assert.ErrorIs(t, err, registry.ErrNoActiveSuite)
	assert.Empty(t, rec.traces)
	assert.Zero(t, reg.Count())
}

func TestEngine_NoActiveSuite_LeavesCountersUnchanged(t *testing.T) {
	e, reg, _ := newEngine(t, "math")
	_, err := e.EqualInt(1, 1)
	require.NoError(t, err)
	require.NoError(t, reg.Close("math"))

	_, err = e.EqualInt(1, 1)
	assert.ErrorIs(t, err, registry.ErrNoActiveSuite)

	s, _ := reg.Get("math")
	assert.Equal(t, 1, s.Attempted)
	assert.Equal(t, 1, s.Passed)
}

func TestEngine_In_ClosedSuite(t *testing.T) {
	e, reg, rec := newEngine(t, "math")
	require.NoError(t, reg.Close("math"))

	called := false
	_, err := e.In("math").EqualIntFunc(1, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, registry.ErrSuiteAlreadyCompleted)
	assert.False(t, called)
	assert.Empty(t, rec.traces)

	s, _ := reg.Get("math")
	assert.Zero(t, s.Attempted)
}

func TestEngine_In_UnknownSuite(t *testing.T) {
	e, _, _ := newEngine(t, "math")
	_, err := e.In("ghost").IsTrue(true)
	assert.ErrorIs(t, err, registry.ErrUnknownSuite)
}

func TestEngine_In_TargetsNamedSuite(t *testing.T) {
	e, reg, rec := newEngine(t, "first")
	_, err := reg.Open("second")
	require.NoError(t, err)

	_, err = e.In("first").EqualInt(1, 1)
	require.NoError(t, err)
	_, err = e.EqualInt(1, 2)
	require.NoError(t, err)

	first, _ := reg.Get("first")
	second, _ := reg.Get("second")
	assert.Equal(t, 1, first.Passed)
	assert.Equal(t, 1, second.Failed)
	assert.Equal(t, "second", rec.last(t).Suite)
	assert.Equal(t, 1, rec.last(t).Attempt)
}

func TestEngine_TracerFunc(t *testing.T) {
	reg := registry.New()
	_, err := reg.Open("fn")
	require.NoError(t, err)

	var lines []string
	e := New(reg, WithTracer(TracerFunc(func(tr Trace) {
		lines = append(lines, tr.String())
	})))

	_, err = e.EqualInt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. PASSED: EQUAL_INT(1, 1)"}, lines)
}

func TestEngine_PanickingTracer_KeepsOutcome(t *testing.T) {
	reg := registry.New()
	_, err := reg.Open("fn")
	require.NoError(t, err)

	e := New(reg, WithTracer(TracerFunc(func(Trace) {
		panic("tracer")
	})))
	o, err := e.EqualInt(1, 2)
	requireOutcome(t, suite.Failed, o, err)

	s, _ := reg.Get("fn")
	assert.Equal(t, 1, s.Failed)
	assert.Zero(t, s.Excepted)
}

// returnsWithin fails the test if fn blocks, as it would if the
// registry lock were held while code under test runs.
func returnsWithin(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("assertion did not return")
	}
}

func TestEngine_ThunkQueriesRegistry(t *testing.T) {
	e, reg, _ := newEngine(t, "math")

	returnsWithin(t, func() {
		o, err := e.IsTrueFunc(func() (bool, error) {
			name, err := reg.Active()
			return name == "math", err
		})
		requireOutcome(t, suite.Passed, o, err)
	})
}

func TestEngine_ThunkMakesNestedAssertion(t *testing.T) {
	e, reg, rec := newEngine(t, "math")

	helper := func(x int) (int, error) {
		if _, err := e.EqualInt(x, x); err != nil {
			return 0, err
		}
		return 2 * x, nil
	}

	returnsWithin(t, func() {
		o, err := e.EqualIntFunc(4, func() (int, error) { return helper(2) })
		requireOutcome(t, suite.Passed, o, err)
	})

	s, _ := reg.Get("math")
	assert.Equal(t, 2, s.Attempted)
	assert.Equal(t, 2, s.Passed)

	require.Len(t, rec.traces, 2)
	assert.Equal(t, "1. PASSED: EQUAL_INT(2, 2)", rec.traces[0].String())
	assert.Equal(t, "2. PASSED: EQUAL_INT(4, 4)", rec.traces[1].String())
}

func TestEngine_ThunkClosesSuite(t *testing.T) {
	e, reg, rec := newEngine(t, "math")

	_, err := e.IsTrueFunc(func() (bool, error) {
		return true, reg.Close("math")
	})
	assert.ErrorIs(t, err, registry.ErrSuiteAlreadyCompleted)
	assert.Empty(t, rec.traces)

	s, _ := reg.Get("math")
	assert.Zero(t, s.Attempted)
}
