package registry

import "errors"

// Usage errors. They report misuse of the harness and are
// never counted as assertion outcomes. Call sites wrap them
// with the offending suite name; test with errors.Is.
var (
	// ErrEmptyName is returned when a suite is opened with an
	// empty name.
	ErrEmptyName = errors.New("suite name is empty")

	// ErrDuplicateSuite is returned when a suite name is
	// reused, even after the earlier suite was closed.
	ErrDuplicateSuite = errors.New("suite already exists")

	// ErrUnknownSuite is returned when an operation names a
	// suite that was never opened.
	ErrUnknownSuite = errors.New("suite not found")

	// ErrNoActiveSuite is returned when an assertion names no
	// suite and none is active.
	ErrNoActiveSuite = errors.New("no active suite")

	// ErrSuiteAlreadyCompleted is returned when an assertion
	// targets a closed suite.
	ErrSuiteAlreadyCompleted = errors.New("suite already completed")
)
