package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Results is the outcome of a test run. Tests includes tests that were skipped, whether
// they skipped themselves or were excluded by the filter.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// SkippedCount returns the number of tests that did not run.
func (r Results) SkippedCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

func (r *Results) add(result TestResult, failed bool) {
	r.Tests = append(r.Tests, result)
	if failed {
		r.Failures = append(r.Failures, result)
	}
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the test run to standard output.
func PrintResults(results Results) {
	skipped := results.SkippedCount()
	ran := len(results.Tests) - skipped
	if results.OK() {
		if skipped == 0 {
			color.Green("All tests passed (%d)", ran)
		} else {
			color.Green("All tests passed (%d, %d skipped)", ran, skipped)
		}
		return
	}
	color.Red("FAILED TESTS (%d of %d):", len(results.Failures), ran)
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
	if skipped > 0 {
		color.Yellow("Skipped %d test(s)", skipped)
	}
}
