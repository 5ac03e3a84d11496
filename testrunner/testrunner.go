// Package testrunner implements the test adapter from spec.md §4.6: drive
// §4.5's runner once per compiled test function (empty arguments, gas
// disabled), interpret the outcome against the function's declared
// expectation, and aggregate a {passed, failed, ignored} summary. Tests run
// concurrently over a bounded worker pool, the same shape the teacher's
// shiroclient/batch.Driver.Ticker.Tick uses for its per-request fan-out,
// generalized from an unbounded goroutine-per-item loop to a
// concurrency-capped, error-propagating errgroup.Group.
package testrunner

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/runner"
)

// ExpectationKind is the closed set of test expectations spec.md §4.6
// interprets a run's outcome against.
type ExpectationKind int

const (
	// ExpectSuccess corresponds to TestExpectation::Success.
	ExpectSuccess ExpectationKind = iota
	// ExpectPanicsAny corresponds to Panics(Any).
	ExpectPanicsAny
	// ExpectPanicsExact corresponds to Panics(Exact(E)).
	ExpectPanicsExact
)

// Expectation is a test function's declared expectation.
type Expectation struct {
	Kind ExpectationKind
	// Data is the expected panic payload; only meaningful for ExpectPanicsExact.
	Data []felt.Felt
}

// Success builds a Success expectation.
func Success() Expectation { return Expectation{Kind: ExpectSuccess} }

// PanicsAny builds a Panics(Any) expectation.
func PanicsAny() Expectation { return Expectation{Kind: ExpectPanicsAny} }

// PanicsExact builds a Panics(Exact(data)) expectation.
func PanicsExact(data []felt.Felt) Expectation {
	return Expectation{Kind: ExpectPanicsExact, Data: data}
}

// Case is one compiled test function.
type Case struct {
	Name        string
	Ignored     bool
	Expectation Expectation
	// Invoke runs the test function per spec.md §4.5, with empty arguments
	// and gas disabled, and returns its outcome.
	Invoke func(ctx context.Context) (runner.Outcome, error)
}

// Status is a single test's terminal state.
type Status string

// The three terminal statuses a test case can reach.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusIgnored Status = "ignored"
)

// Result is one test's outcome.
type Result struct {
	Name    string
	Status  Status
	Message string
}

// Summary aggregates every test's Result.
type Summary struct {
	Passed  int
	Failed  int
	Ignored int
	Results []Result
}

// Options configures a Run.
type Options struct {
	// Filter keeps only tests whose name contains Filter (spec.md §4.6
	// "Filter tests by substring before running"). Empty means no filter.
	Filter string
	// IncludeIgnored runs ignored tests alongside the rest.
	IncludeIgnored bool
	// IgnoredOnly runs only ignored tests; implies IncludeIgnored.
	IgnoredOnly bool
	// Concurrency bounds the worker pool size; 0 means unbounded.
	Concurrency int
	Log         *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.New()
}

// Run filters cases per opts, then executes the surviving ones concurrently
// (bounded by opts.Concurrency), grading each against its Expectation, and
// returns the aggregate summary in a stable, name-sorted order.
func Run(ctx context.Context, cases []Case, opts Options) Summary {
	log := opts.logger()
	selected := selectCases(cases, opts)

	var mu sync.Mutex
	results := make([]Result, 0, len(selected))
	record := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	group, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		group.SetLimit(opts.Concurrency)
	}

	for _, c := range selected {
		c := c
		if c.Ignored && !opts.IncludeIgnored && !opts.IgnoredOnly {
			record(Result{Name: c.Name, Status: StatusIgnored})
			continue
		}
		group.Go(func() error {
			r := runCase(gctx, c, log)
			record(r)
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	summary := Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusIgnored:
			summary.Ignored++
		}
	}
	return summary
}

func selectCases(cases []Case, opts Options) []Case {
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		if opts.Filter != "" && !strings.Contains(c.Name, opts.Filter) {
			continue
		}
		if opts.IgnoredOnly && !c.Ignored {
			continue
		}
		if c.Ignored && !opts.IncludeIgnored && !opts.IgnoredOnly {
			continue
		}
		out = append(out, c)
	}
	return out
}

func runCase(ctx context.Context, c Case, log *logrus.Logger) Result {
	fields := logrus.Fields{"test": c.Name}
	_, err := c.Invoke(ctx)

	var panicErr *runner.PanicError
	switch {
	case err == nil:
		return grade(c, true, nil)
	case errors.As(err, &panicErr):
		log.WithFields(fields).WithError(err).Debug("test panicked")
		return grade(c, false, panicErr.Data)
	default:
		log.WithFields(fields).WithError(err).Error("test run failed")
		return Result{Name: c.Name, Status: StatusFailed, Message: err.Error()}
	}
}

func grade(c Case, succeeded bool, panicData []felt.Felt) Result {
	switch c.Expectation.Kind {
	case ExpectSuccess:
		if succeeded {
			return Result{Name: c.Name, Status: StatusPassed}
		}
		return Result{Name: c.Name, Status: StatusFailed, Message: "expected success, program panicked"}

	case ExpectPanicsAny:
		if !succeeded {
			return Result{Name: c.Name, Status: StatusPassed}
		}
		return Result{Name: c.Name, Status: StatusFailed, Message: "expected a panic, program succeeded"}

	case ExpectPanicsExact:
		if !succeeded && feltsEqual(panicData, c.Expectation.Data) {
			return Result{Name: c.Name, Status: StatusPassed}
		}
		return Result{Name: c.Name, Status: StatusFailed, Message: "panic data did not match the expected payload"}

	default:
		return Result{Name: c.Name, Status: StatusFailed, Message: "unknown test expectation"}
	}
}

func feltsEqual(a, b []felt.Felt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
