package report

import "digital.vasic.harness/pkg/suite"

// Source is the read-only view of a registry that reporting
// needs.
type Source interface {
	// List returns every suite in insertion order.
	List() []suite.Suite
}

// Report aggregates the counters of every suite in a run.
type Report struct {
	// Suites holds a copy of each suite in insertion order.
	Suites []suite.Suite

	Attempted int
	Passed    int
	Failed    int
	Excepted  int

	// SuitesPassed counts suites with no failed assertion.
	SuitesPassed int
}

// Build aggregates the suites of src. It never fails, including
// for suites with zero attempts.
func Build(src Source) *Report {
	r := &Report{Suites: src.List()}

	for _, s := range r.Suites {
		r.Attempted += s.Attempted
		r.Passed += s.Passed
		r.Failed += s.Failed
		r.Excepted += s.Excepted

		if s.FullyPassed() {
			r.SuitesPassed++
		}
	}

	return r
}

// SuitesTotal returns the number of suites.
func (r *Report) SuitesTotal() int {
	return len(r.Suites)
}

// SuitesFailed returns the number of suites with at least one
// failed assertion.
func (r *Report) SuitesFailed() int {
	return r.SuitesTotal() - r.SuitesPassed
}

// AllPassed reports whether every suite is fully passed.
func (r *Report) AllPassed() bool {
	return r.SuitesFailed() == 0
}

// SuitesPassedPct returns the fully passed share of suites.
func (r *Report) SuitesPassedPct() float64 {
	return suite.Percent(r.SuitesPassed, r.SuitesTotal())
}

// SuitesFailedPct returns the partially failed share of suites.
func (r *Report) SuitesFailedPct() float64 {
	return suite.Percent(r.SuitesFailed(), r.SuitesTotal())
}

// PassPct returns the passed share of all attempts.
func (r *Report) PassPct() float64 {
	return suite.Percent(r.Passed, r.Attempted)
}

// FailPct returns the failed share of all attempts.
func (r *Report) FailPct() float64 {
	return suite.Percent(r.Failed, r.Attempted)
}

// ExceptPct returns the excepted share of all attempts.
func (r *Report) ExceptPct() float64 {
	return suite.Percent(r.Excepted, r.Attempted)
}
