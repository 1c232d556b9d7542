package main

import (
	"errors"
	"fmt"
	"strings"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/harness"
)

type program struct {
	name    string
	summary string
	run     func(h *harness.Harness) error
}

var programs = []program{
	{"twice", "integer doubling with a faulting input", runTwice},
	{"pluralize", "English plural suffixes", runPluralize},
	{"safe_invert", "float reciprocal with tolerance and a fault", runSafeInvert},
}

func programNames() []string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = p.name
	}
	return names
}

func selectPrograms(names []string) ([]program, error) {
	if len(names) == 0 {
		return programs, nil
	}

	selected := make([]program, 0, len(names))
	for _, name := range names {
		found := false
		for _, p := range programs {
			if p.name == name {
				selected = append(selected, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown program %q (available: %s)",
				name, strings.Join(programNames(), ", "))
		}
	}
	return selected, nil
}

func twice(x int) (int, error) {
	if x == -1 {
		return 0, errors.New("can't call twice on -1")
	}
	return 2 * x, nil
}

func runTwice(h *harness.Harness) error {
	return h.Suite("twice", func(a *assertion.Engine) {
		_, _ = a.EqualIntFunc(4, func() (int, error) { return twice(2) })
		_, _ = a.EqualIntFunc(4, func() (int, error) { return twice(3) })
		_, _ = a.EqualIntFunc(1, func() (int, error) { return twice(-1) })
	})
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"):
		return s
	case strings.HasSuffix(s, "y"):
		return strings.TrimSuffix(s, "y") + "ies"
	default:
		return s + "s"
	}
}

func runPluralize(h *harness.Harness) error {
	return h.Suite("pluralize", func(a *assertion.Engine) {
		_, _ = a.EqualString("cats", pluralize("cats"))
		_, _ = a.EqualString("cats", pluralize("cat"))
		_, _ = a.EqualString("babies", pluralize("baby"))
	})
}

func safeInvert(x float64) (float64, error) {
	if x == 0 {
		return 0, errors.New("safe_invert: can't invert 0")
	}
	return 1 / x, nil
}

func runSafeInvert(h *harness.Harness) error {
	invert := func(x float64) func() (float64, error) {
		return func() (float64, error) { return safeInvert(x) }
	}

	return h.Suite("safe_invert", func(a *assertion.Engine) {
		_, _ = a.EqualFloatFunc(0.5, invert(2))
		_, _ = a.EqualFloatFunc(0.3, invert(3))
		_, _ = a.EqualFloatFunc(0.3333333, invert(3))
		_, _ = a.EqualFloatFunc(0.0, invert(0))
		_, _ = a.IsTrueFunc(func() (bool, error) {
			v, err := safeInvert(2)
			return v == 0.5, err
		})
	})
}
