// Package checker decides whether a query result answers an exercise.
//
// The primary check compares result columns against the exercise's expected
// column names: the counts must match and every expected name must be
// present, compared case-insensitively. Row content and order are ignored.
// Exercises may add a Starlark row check evaluated after the column check.
package checker

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// Report is the detailed outcome of a column check.
type Report struct {
	Verdict core.Verdict
	// Missing lists expected columns absent from the result, in expected order.
	Missing []string
	Message string
}

// Check returns the verdict for result against the expected column names.
func Check(result *core.Result, expected []string) core.Verdict {
	return Evaluate(result, expected).Verdict
}

// Evaluate runs the column check and explains the verdict.
func Evaluate(result *core.Result, expected []string) Report {
	if result == nil {
		return Report{Verdict: core.VerdictError, Message: "no result"}
	}
	if result.Failed() {
		return Report{Verdict: core.VerdictError, Message: result.Error}
	}
	if len(expected) == 0 {
		return Report{Verdict: core.VerdictCorrect, Message: "no expected columns defined"}
	}
	if len(result.Columns) != len(expected) {
		return Report{
			Verdict: core.VerdictIncorrect,
			Missing: missingColumns(result.Columns, expected),
			Message: fmt.Sprintf("expected %d columns, got %d", len(expected), len(result.Columns)),
		}
	}

	missing := missingColumns(result.Columns, expected)
	if len(missing) > 0 {
		return Report{
			Verdict: core.VerdictIncorrect,
			Missing: missing,
			Message: "missing columns: " + strings.Join(missing, ", "),
		}
	}
	return Report{Verdict: core.VerdictCorrect}
}

func missingColumns(actual, expected []string) []string {
	have := make(map[string]bool, len(actual))
	for _, c := range actual {
		have[strings.ToUpper(c)] = true
	}
	var missing []string
	for _, c := range expected {
		if !have[strings.ToUpper(c)] {
			missing = append(missing, c)
		}
	}
	return missing
}
