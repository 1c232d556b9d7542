// Package registry owns every suite opened in a run and the
// notion of the currently active suite.
package registry

import (
	"fmt"
	"strconv"
	"sync"

	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/suite"
)

// Notifier receives suite lifecycle notices. Calls are made
// while the registry lock is held and must not call back into
// the registry.
type Notifier interface {
	// SuiteOpened is called after a suite becomes active.
	SuiteOpened(name string)

	// SuiteClosed is called with the final counters of a
	// suite that has just completed.
	SuiteClosed(s suite.Suite)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNotifier sets the receiver of suite opened and closed
// notices.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		r.notifier = n
	}
}

// Registry maps suite names to their records in insertion
// order and tracks at most one active suite. All mutations,
// including each assertion's count-and-tally step, are
// serialized behind a single lock. The comparison itself runs
// outside the lock.
type Registry struct {
	mu       sync.Mutex
	suites   map[string]*suite.Suite
	order    []string
	active   string
	notifier Notifier
	logger   logging.Logger
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		suites: make(map[string]*suite.Suite),
		logger: logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates the named suite, makes it the active suite, and
// returns a handle whose Close completes it. Names are unique
// for the lifetime of the registry.
func (r *Registry) Open(name string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		r.logger.Warn("open rejected", logging.ErrorField(ErrEmptyName))
		return nil, ErrEmptyName
	}
	if _, exists := r.suites[name]; exists {
		err := fmt.Errorf("%w: %s", ErrDuplicateSuite, strconv.Quote(name))
		r.logger.Warn("open rejected",
			logging.SuiteField(name), logging.ErrorField(err))
		return nil, err
	}
	if r.active != "" {
		r.logger.Debug("active suite replaced",
			logging.SuiteField(name),
			logging.StringField("previous", r.active))
	}

	r.suites[name] = suite.New(name)
	r.order = append(r.order, name)
	r.active = name

	r.logger.Debug("suite opened", logging.SuiteField(name))
	if r.notifier != nil {
		r.notifier.SuiteOpened(name)
	}
	return &Handle{reg: r, name: name}, nil
}

// Close completes the named suite and clears the active slot
// if it names this suite. Closing a completed suite is a
// no-op.
func (r *Registry) Close(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.suites[name]
	if !exists {
		err := fmt.Errorf("%w: %s", ErrUnknownSuite, strconv.Quote(name))
		r.logger.Warn("close rejected",
			logging.SuiteField(name), logging.ErrorField(err))
		return err
	}
	if s.Completed {
		return nil
	}

	s.Completed = true
	if r.active == name {
		r.active = ""
	}

	r.logger.Debug("suite closed",
		logging.SuiteField(name),
		logging.IntField("attempted", s.Attempted),
		logging.IntField("passed", s.Passed),
		logging.IntField("failed", s.Failed),
		logging.IntField("excepted", s.Excepted))
	if r.notifier != nil {
		r.notifier.SuiteClosed(*s)
	}
	return nil
}

// Active returns the name of the active suite.
func (r *Registry) Active() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == "" {
		return "", ErrNoActiveSuite
	}
	return r.active, nil
}

// Get returns a copy of the named suite.
func (r *Registry) Get(name string) (suite.Suite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.suites[name]
	if !exists {
		return suite.Suite{}, false
	}
	return *s, true
}

// List returns copies of all suites in the order they were
// opened.
func (r *Registry) List() []suite.Suite {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]suite.Suite, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.suites[name])
	}
	return out
}

// Count returns the number of suites ever opened.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Attempt identifies one assertion being counted.
type Attempt struct {
	// Suite is the resolved suite name.
	Suite string

	// Number is the 1-based attempt number within the suite.
	Number int
}

// Record evaluates one assertion against target, or against
// the active suite when target is empty.
//
// The suite is resolved and checked first. eval then runs
// without the registry lock held, so it may call back into the
// registry, including making nested assertions. A panic
// escaping eval classifies the assertion as suite.Excepted.
// Finally, under the lock, the suite is checked again, its
// Attempted counter is incremented, the outcome is tallied, and
// observe (if non-nil) is called with the attempt number; these
// steps are indivisible. observe must not call back into the
// registry. A panic from observe is logged and does not change
// the outcome.
//
// If the suite was closed while eval ran, nothing is counted
// and ErrSuiteAlreadyCompleted is returned. The returned suite
// reflects the counters after tallying.
func (r *Registry) Record(
	target string,
	eval func() suite.Outcome,
	observe func(a Attempt, o suite.Outcome),
) (suite.Suite, error) {
	r.mu.Lock()
	name, s, err := r.resolve(target)
	r.mu.Unlock()
	if err != nil {
		return s, err
	}

	outcome := evaluate(eval)

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.suites[name]
	if rec.Completed {
		err := fmt.Errorf(
			"%w: %s", ErrSuiteAlreadyCompleted, strconv.Quote(name),
		)
		r.logger.Warn("assertion discarded, suite closed during evaluation",
			logging.SuiteField(name), logging.ErrorField(err))
		return *rec, err
	}

	attempt := Attempt{Suite: name, Number: rec.Begin()}
	rec.Tally(outcome)
	if observe != nil {
		r.notify(observe, attempt, outcome)
	}

	r.logger.Debug("assertion recorded",
		logging.SuiteField(name),
		logging.IntField("attempt", attempt.Number),
		logging.StringField("outcome", outcome.String()))
	return *rec, nil
}

// resolve finds the suite an assertion is aimed at. The caller
// holds r.mu.
func (r *Registry) resolve(target string) (string, suite.Suite, error) {
	name := target
	if name == "" {
		if r.active == "" {
			r.logger.Warn("assertion rejected",
				logging.ErrorField(ErrNoActiveSuite))
			return "", suite.Suite{}, ErrNoActiveSuite
		}
		name = r.active
	}

	s, exists := r.suites[name]
	if !exists {
		err := fmt.Errorf("%w: %s", ErrUnknownSuite, strconv.Quote(name))
		r.logger.Warn("assertion rejected",
			logging.SuiteField(name), logging.ErrorField(err))
		return "", suite.Suite{}, err
	}
	if s.Completed {
		err := fmt.Errorf(
			"%w: %s", ErrSuiteAlreadyCompleted, strconv.Quote(name),
		)
		r.logger.Warn("assertion rejected",
			logging.SuiteField(name), logging.ErrorField(err))
		return "", *s, err
	}
	return name, *s, nil
}

func evaluate(eval func() suite.Outcome) (outcome suite.Outcome) {
	defer func() {
		if recover() != nil {
			outcome = suite.Excepted
		}
	}()
	return eval()
}

func (r *Registry) notify(
	observe func(a Attempt, o suite.Outcome),
	a Attempt,
	o suite.Outcome,
) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Warn("assertion observer panicked",
				logging.SuiteField(a.Suite),
				logging.IntField("attempt", a.Number),
				logging.LogField("panic", v))
		}
	}()
	observe(a, o)
}

// Run opens the named suite, calls fn, and closes the suite on
// every exit path. A panic from fn is re-raised after the
// suite is closed.
func (r *Registry) Run(name string, fn func(h *Handle)) (err error) {
	h, err := r.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	fn(h)
	return nil
}
