// Package suite defines the named suite record and the outcome
// classification shared by the registry, the assertion engine,
// and reporting.
package suite

// Outcome is the classification of a single assertion.
type Outcome int

const (
	// Passed means the comparison completed and held.
	Passed Outcome = iota
	// Failed means the comparison completed and did not hold.
	Failed
	// Excepted means evaluating the comparison raised a fault.
	Excepted
)

// String returns the trace label of an outcome.
func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	case Excepted:
		return "EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// Suite captures the counters of one named group of
// assertions. Attempted always equals Passed + Failed +
// Excepted.
type Suite struct {
	// Name is the identity key, unique for the lifetime of
	// the registry that created it.
	Name string

	// Attempted counts every assertion evaluated against the
	// suite.
	Attempted int

	// Passed counts assertions classified as Passed.
	Passed int

	// Failed counts assertions classified as Failed.
	Failed int

	// Excepted counts assertions classified as Excepted.
	Excepted int

	// Completed is set once the suite is closed. A completed
	// suite accepts no further assertions.
	Completed bool
}

// New returns an open suite with all counters at zero.
func New(name string) *Suite {
	return &Suite{Name: name}
}

// Begin counts a new attempt and returns its 1-based number.
func (s *Suite) Begin() int {
	s.Attempted++
	return s.Attempted
}

// Tally counts the outcome of an attempt started with Begin.
func (s *Suite) Tally(o Outcome) {
	switch o {
	case Passed:
		s.Passed++
	case Failed:
		s.Failed++
	default:
		s.Excepted++
	}
}

// FullyPassed reports whether no assertion in the suite
// failed. A suite with zero attempts is fully passed.
func (s Suite) FullyPassed() bool {
	return s.Failed == 0
}

// PassPct returns the passed share of attempts as a
// percentage, or 0 when nothing was attempted.
func (s Suite) PassPct() float64 {
	return Percent(s.Passed, s.Attempted)
}

// FailPct returns the failed share of attempts.
func (s Suite) FailPct() float64 {
	return Percent(s.Failed, s.Attempted)
}

// ExceptPct returns the excepted share of attempts.
func (s Suite) ExceptPct() float64 {
	return Percent(s.Excepted, s.Attempted)
}

// Percent returns 100*part/whole, or 0 when whole is zero.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
