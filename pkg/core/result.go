package core

import "time"

// Result is the materialized outcome of a learner query.
// Rows hold driver values with []byte already converted to string.
type Result struct {
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the engine rejected the query.
func (r *Result) Failed() bool {
	return r != nil && r.Error != ""
}

// RowCount returns the number of result rows.
func (r *Result) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ErrorResult builds a Result carrying only an engine error message.
func ErrorResult(msg string) *Result {
	return &Result{Error: msg}
}

// Verdict is the outcome of checking a submission.
type Verdict string

// Verdict constants.
const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictError     Verdict = "error"
)

// IsCorrect reports whether the verdict is a pass.
func (v Verdict) IsCorrect() bool {
	return v == VerdictCorrect
}

// Submission is a checked answer to an exercise.
type Submission struct {
	AttemptID      string   `json:"attempt_id"`
	ExerciseID     int      `json:"exercise_id"`
	SQL            string   `json:"sql"`
	Verdict        Verdict  `json:"verdict"`
	Message        string   `json:"message"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	// RowCheckMessage is advisory feedback on the returned rows. It never
	// affects the verdict.
	RowCheckMessage string  `json:"row_check_message,omitempty"`
	Result          *Result `json:"result"`
	// FirstCompletion is true when this submission completed the exercise.
	FirstCompletion bool `json:"first_completion"`
}
