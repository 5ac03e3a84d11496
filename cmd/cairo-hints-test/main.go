// Command cairo-hints-test runs a compiled test suite against a configured
// oracle, the Go port of
// original_source/cairo-hints/scarb-hints-test/main.rs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reilabs/cairo-hints-go/cmd/internal/cliargs"
	"github.com/reilabs/cairo-hints-go/hint"
	"github.com/reilabs/cairo-hints-go/oracle"
	"github.com/reilabs/cairo-hints-go/program"
	"github.com/reilabs/cairo-hints-go/runner"
	"github.com/reilabs/cairo-hints-go/schema"
	"github.com/reilabs/cairo-hints-go/testrunner"
	"github.com/reilabs/cairo-hints-go/vm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		filter         string
		includeIgnored bool
		ignoredOnly    bool
		layout         string
		oracleLock     string
		serversFile    string
		concurrency    int
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   "cairo-hints-test <tests.json>",
		Short: "Run a compiled test suite under the oracle hint interceptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testsFile := args[0]

			log := logrus.New()
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			if err := cliargs.ValidateLayout(layout); err != nil {
				return printAndFail(err)
			}

			testCases, err := program.LoadTestCases(testsFile)
			if err != nil {
				return printAndFail(err)
			}

			configuration, err := schema.LoadConfiguration(oracleLock)
			if err != nil {
				return printAndFail(fmt.Errorf("loading oracle lock file: %w", err))
			}
			servers, err := schema.LoadServerRegistry(serversFile)
			if err != nil {
				return printAndFail(fmt.Errorf("loading servers configuration: %w", err))
			}
			client := oracle.New()

			cases := make([]testrunner.Case, len(testCases))
			for i, tc := range testCases {
				tc := tc
				expectation, err := toExpectation(tc)
				if err != nil {
					return printAndFail(fmt.Errorf("test %s: %w", tc.Name, err))
				}
				cases[i] = testrunner.Case{
					Name:        tc.Name,
					Ignored:     tc.Ignored,
					Expectation: expectation,
					Invoke: func(ctx context.Context) (runner.Outcome, error) {
						return invokeTestCase(ctx, tc, configuration, servers, client)
					},
				}
			}

			summary := testrunner.Run(cmd.Context(), cases, testrunner.Options{
				Filter:         filter,
				IncludeIgnored: includeIgnored,
				IgnoredOnly:    ignoredOnly,
				Concurrency:    concurrency,
				Log:            log,
			})

			printSummary(summary)
			if summary.Failed > 0 {
				return silentFailure{}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only run tests whose name contains this substring")
	cmd.Flags().BoolVar(&includeIgnored, "include-ignored", false, "run ignored tests alongside the rest")
	cmd.Flags().BoolVar(&ignoredOnly, "ignored", false, "run only ignored tests")
	cmd.Flags().StringVar(&layout, "layout", "plain", "Cairo VM memory layout")
	cmd.Flags().StringVar(&oracleLock, "oracle-lock", "Oracle.lock", "path to the oracle lock file")
	cmd.Flags().StringVar(&serversFile, "servers-config-file", "servers.json", "path to the oracle servers configuration")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "bound the test worker pool size (0 = unbounded)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func toExpectation(tc program.TestCase) (testrunner.Expectation, error) {
	switch tc.Expectation {
	case "success":
		return testrunner.Success(), nil
	case "panics_any":
		return testrunner.PanicsAny(), nil
	case "panics_exact":
		data, err := program.ParseFelts(tc.PanicData)
		if err != nil {
			return testrunner.Expectation{}, err
		}
		return testrunner.PanicsExact(data), nil
	default:
		return testrunner.Expectation{}, fmt.Errorf("unknown expectation %q", tc.Expectation)
	}
}

func invokeTestCase(ctx context.Context, tc program.TestCase, configuration *schema.Configuration, servers schema.ServerRegistry, client oracle.OracleClient) (runner.Outcome, error) {
	vmachine := vm.New()
	for range cliargs.RequiredBuiltins(tc.Run.EntryFunction.ParamTypeNames) {
		vmachine.AddMemorySegment()
	}

	if _, err := runner.BuildEntryCode(vmachine, runner.EntryFunction{
		ParamTypeNames: tc.Run.EntryFunction.ParamTypeNames,
		EntryOffset:    tc.Run.EntryFunction.EntryOffset,
	}, runner.DisabledGas(), nil); err != nil {
		return runner.Outcome{}, fmt.Errorf("building entry code: %w", err)
	}

	hints, err := tc.Run.Hints(vmachine)
	if err != nil {
		return runner.Outcome{}, err
	}

	processor := hint.New(nil, configuration, servers, client, hint.WithContext(ctx))

	returnStart, returnEnd, err := tc.Run.ReturnSpan(vmachine)
	if err != nil {
		return runner.Outcome{}, err
	}

	return runner.Run(vmachine, processor, hints, returnStart, returnEnd)
}

type summaryRecord struct {
	Passed  int                 `json:"passed"`
	Failed  int                 `json:"failed"`
	Ignored int                 `json:"ignored"`
	Results []testrunner.Result `json:"results"`
}

func printSummary(s testrunner.Summary) {
	data, err := json.MarshalIndent(summaryRecord{
		Passed:  s.Passed,
		Failed:  s.Failed,
		Ignored: s.Ignored,
		Results: s.Results,
	}, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
}

type silentFailure struct{}

func (silentFailure) Error() string { return "" }

func printAndFail(err error) error {
	record := cliargs.ErrorRecord(err.Error())
	_ = record.Print(func(s string) { fmt.Println(s) })
	return silentFailure{}
}
