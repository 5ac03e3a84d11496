package testrunner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/runner"
)

func succeedCase(name string) Case {
	return Case{
		Name:        name,
		Expectation: Success(),
		Invoke: func(ctx context.Context) (runner.Outcome, error) {
			return runner.Outcome{}, nil
		},
	}
}

func panicCase(name string, data []felt.Felt) Case {
	return Case{
		Name:        name,
		Expectation: PanicsAny(),
		Invoke: func(ctx context.Context) (runner.Outcome, error) {
			return runner.Outcome{}, &runner.PanicError{Data: data}
		},
	}
}

func TestRunGradesSuccessAndPanicAny(t *testing.T) {
	cases := []Case{
		succeedCase("test_a"),
		panicCase("test_b", []felt.Felt{felt.FromUint64(1)}),
	}
	summary := Run(context.Background(), cases, Options{})
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Ignored)
}

func TestRunGradesExactPanicMismatch(t *testing.T) {
	cases := []Case{
		{
			Name:        "test_exact",
			Expectation: PanicsExact([]felt.Felt{felt.FromUint64(7)}),
			Invoke: func(ctx context.Context) (runner.Outcome, error) {
				return runner.Outcome{}, &runner.PanicError{Data: []felt.Felt{felt.FromUint64(8)}}
			},
		},
	}
	summary := Run(context.Background(), cases, Options{})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusFailed, summary.Results[0].Status)
}

func TestRunGradesExactPanicMatch(t *testing.T) {
	data := []felt.Felt{felt.FromUint64(7), felt.FromUint64(9)}
	cases := []Case{
		{
			Name:        "test_exact",
			Expectation: PanicsExact(data),
			Invoke: func(ctx context.Context) (runner.Outcome, error) {
				return runner.Outcome{}, &runner.PanicError{Data: data}
			},
		},
	}
	summary := Run(context.Background(), cases, Options{})
	assert.Equal(t, 1, summary.Passed)
}

func TestRunSuccessExpectedButPanicsFails(t *testing.T) {
	cases := []Case{panicCaseNamedSuccess("test_a")}
	summary := Run(context.Background(), cases, Options{})
	assert.Equal(t, 1, summary.Failed)
}

func panicCaseNamedSuccess(name string) Case {
	return Case{
		Name:        name,
		Expectation: Success(),
		Invoke: func(ctx context.Context) (runner.Outcome, error) {
			return runner.Outcome{}, &runner.PanicError{Data: nil}
		},
	}
}

func TestRunTreatsNonPanicErrorAsFailure(t *testing.T) {
	cases := []Case{
		{
			Name:        "test_vm_error",
			Expectation: Success(),
			Invoke: func(ctx context.Context) (runner.Outcome, error) {
				return runner.Outcome{}, errors.New("vm blew up")
			},
		},
	}
	summary := Run(context.Background(), cases, Options{})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusFailed, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Message, "vm blew up")
}

func TestRunFiltersBySubstring(t *testing.T) {
	cases := []Case{succeedCase("sqrt_test"), succeedCase("other_test")}
	summary := Run(context.Background(), cases, Options{Filter: "sqrt"})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "sqrt_test", summary.Results[0].Name)
}

func TestRunSkipsIgnoredByDefault(t *testing.T) {
	c := succeedCase("ignored_test")
	c.Ignored = true
	summary := Run(context.Background(), []Case{c, succeedCase("normal_test")}, Options{})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "normal_test", summary.Results[0].Name)
}

func TestRunIncludesIgnoredWhenRequested(t *testing.T) {
	c := succeedCase("ignored_test")
	c.Ignored = true
	summary := Run(context.Background(), []Case{c, succeedCase("normal_test")}, Options{IncludeIgnored: true})
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 0, summary.Ignored)
	assert.Equal(t, 2, summary.Passed)
}

func TestRunIgnoredOnly(t *testing.T) {
	c := succeedCase("ignored_test")
	c.Ignored = true
	summary := Run(context.Background(), []Case{c, succeedCase("normal_test")}, Options{IgnoredOnly: true})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "ignored_test", summary.Results[0].Name)
	assert.Equal(t, StatusPassed, summary.Results[0].Status)
}

func TestRunBoundsConcurrency(t *testing.T) {
	cases := make([]Case, 20)
	for i := range cases {
		cases[i] = succeedCase("t")
	}
	summary := Run(context.Background(), cases, Options{Concurrency: 2})
	assert.Equal(t, 20, summary.Passed)
}
