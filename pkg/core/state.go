package core

import "time"

// Store defines the interface for learner state persistence.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Learner operations
	EnsureLearner(id, name string) (*Learner, error)
	GetLearner(id string) (*Learner, error)
	ListLearners() ([]*Learner, error)

	// Draft operations
	GetDraft(learnerID string, exerciseID int) (string, error)
	SaveDraft(learnerID string, exerciseID int, sql string) error
	ListDrafts(learnerID string) ([]*Draft, error)
	DeleteDraft(learnerID string, exerciseID int) error

	// Attempt operations
	RecordAttempt(attempt *Attempt) error
	ListAttempts(learnerID string, exerciseID int, limit int) ([]*Attempt, error)

	// Completion operations
	MarkCompleted(learnerID string, exerciseID int, attemptID string) (bool, error)
	ListCompleted(learnerID string) ([]int, error)

	// Hint operations
	UnlockHint(learnerID string, exerciseID, hintID int) error
	UnlockedHints(learnerID string, exerciseID int) ([]int, error)

	// ResetProgress clears attempts, completions, unlocks and drafts for a learner.
	ResetProgress(learnerID string) error
}

// Learner identifies one person practicing.
type Learner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the saved editor text for one exercise.
type Draft struct {
	LearnerID  string    `json:"learner_id"`
	ExerciseID int       `json:"exercise_id"`
	Key        string    `json:"key"`
	SQL        string    `json:"sql"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Attempt is a recorded submission.
type Attempt struct {
	ID         string    `json:"id"`
	LearnerID  string    `json:"learner_id"`
	ExerciseID int       `json:"exercise_id"`
	SQL        string    `json:"sql"`
	Verdict    Verdict   `json:"verdict"`
	Error      string    `json:"error,omitempty"`
	RowCount   int       `json:"row_count"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Progress summarizes how far a learner has come through the catalog.
type Progress struct {
	LearnerID string `json:"learner_id"`
	Completed []int  `json:"completed"`
	Total     int    `json:"total"`
	// Current is the lowest-numbered exercise not yet completed, or 0 when all are done.
	Current int `json:"current"`
}

// Percent returns the completion percentage rounded down.
func (p *Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return len(p.Completed) * 100 / p.Total
}

// AllComplete reports whether every exercise has been completed.
func (p *Progress) AllComplete() bool {
	return p.Total > 0 && len(p.Completed) >= p.Total
}

// IsCompleted reports whether the given exercise is completed.
func (p *Progress) IsCompleted(exerciseID int) bool {
	for _, id := range p.Completed {
		if id == exerciseID {
			return true
		}
	}
	return false
}
