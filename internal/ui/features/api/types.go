package api

import "github.com/leapstack-labs/sqldrill/pkg/core"

// ExerciseSummary is one entry of GET /api/exercises.
type ExerciseSummary struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ExpectedColumns []string `json:"expected_columns"`
	HintCount       int      `json:"hint_count"`
	Completed       bool     `json:"completed"`
}

// HintView is a hint as exposed to the learner. Content is only set once
// the hint is unlocked.
type HintView struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Level    string `json:"level"`
	Unlocked bool   `json:"unlocked"`
	Content  string `json:"content,omitempty"`
}

// ExerciseDetail is the response of GET /api/exercises/{id}.
type ExerciseDetail struct {
	ExerciseSummary
	PromptHTML     string     `json:"prompt_html"`
	PromptMarkdown string     `json:"prompt_markdown"`
	Hints          []HintView `json:"hints"`
	Draft          string     `json:"draft"`
}

// SQLRequest is the body of query, submit and draft requests.
type SQLRequest struct {
	SQL string `json:"sql"`
}

// DraftResponse is the response of GET /api/exercises/{id}/draft.
type DraftResponse struct {
	ExerciseID int    `json:"exercise_id"`
	SQL        string `json:"sql"`
}

// ProgressResponse is the response of GET /api/progress.
type ProgressResponse struct {
	*core.Progress
	Percent     int  `json:"percent"`
	AllComplete bool `json:"all_complete"`
}

// SubmitResponse is the response of POST /api/exercises/{id}/submit.
type SubmitResponse struct {
	*core.Submission
	Progress ProgressResponse `json:"progress"`
}

// SolutionResponse is the response of GET /api/exercises/{id}/solution.
type SolutionResponse struct {
	ExerciseID int    `json:"exercise_id"`
	SQL        string `json:"sql"`
	Notes      string `json:"notes,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
