package practice

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// HintState is a hint together with whether the learner has opened it.
type HintState struct {
	catalog.Hint
	Unlocked bool `json:"unlocked"`
}

// Learner ensures a learner exists, creating it on first use.
func (e *Engine) Learner(id, name string) (*core.Learner, error) {
	return e.store.EnsureLearner(id, name)
}

// Progress summarizes the learner's completions against the active catalog.
// Completions of exercises no longer in the catalog are ignored.
func (e *Engine) Progress(_ context.Context, learnerID string) (*core.Progress, error) {
	cat := e.Catalog()

	done, err := e.store.ListCompleted(learnerID)
	if err != nil {
		return nil, err
	}
	completed := make(map[int]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}

	p := &core.Progress{LearnerID: learnerID, Completed: []int{}, Total: cat.Len()}
	for _, id := range cat.IDs() {
		if completed[id] {
			p.Completed = append(p.Completed, id)
		} else if p.Current == 0 {
			p.Current = id
		}
	}
	return p, nil
}

// Hints lists the hints of an exercise with the learner's unlock state.
func (e *Engine) Hints(_ context.Context, learnerID string, exerciseID int) ([]HintState, error) {
	ex, err := e.Exercise(exerciseID)
	if err != nil {
		return nil, err
	}
	unlocked, err := e.store.UnlockedHints(learnerID, exerciseID)
	if err != nil {
		return nil, err
	}
	open := make(map[int]bool, len(unlocked))
	for _, id := range unlocked {
		open[id] = true
	}

	hints := make([]HintState, 0, len(ex.Hints))
	for _, h := range ex.Hints {
		hints = append(hints, HintState{Hint: h, Unlocked: open[h.ID]})
	}
	return hints, nil
}

// UnlockHint opens one hint of an exercise.
func (e *Engine) UnlockHint(_ context.Context, learnerID string, exerciseID, hintID int) (catalog.Hint, error) {
	ex, err := e.Exercise(exerciseID)
	if err != nil {
		return catalog.Hint{}, err
	}
	h, err := ex.Hint(hintID)
	if err != nil {
		return catalog.Hint{}, err
	}
	if err := e.store.UnlockHint(learnerID, exerciseID, hintID); err != nil {
		return catalog.Hint{}, err
	}
	e.logger.Debug("hint unlocked", "learner", learnerID, "exercise", exerciseID, "hint", hintID)
	return h, nil
}

// UnlockNextHint opens the first hint the learner has not seen yet. When all
// hints are open it returns the last one.
func (e *Engine) UnlockNextHint(ctx context.Context, learnerID string, exerciseID int) (catalog.Hint, error) {
	hints, err := e.Hints(ctx, learnerID, exerciseID)
	if err != nil {
		return catalog.Hint{}, err
	}
	if len(hints) == 0 {
		return catalog.Hint{}, fmt.Errorf("%w: exercise %d has no hints", catalog.ErrHintNotFound, exerciseID)
	}
	for _, h := range hints {
		if !h.Unlocked {
			return e.UnlockHint(ctx, learnerID, exerciseID, h.ID)
		}
	}
	return hints[len(hints)-1].Hint, nil
}

// Solution returns the reference solution and its notes.
func (e *Engine) Solution(exerciseID int) (sql, notes string, err error) {
	ex, err := e.Exercise(exerciseID)
	if err != nil {
		return "", "", err
	}
	return ex.Solution, ex.Notes, nil
}

// Draft returns the learner's saved editor text, or "" when none exists.
func (e *Engine) Draft(_ context.Context, learnerID string, exerciseID int) (string, error) {
	if _, err := e.Exercise(exerciseID); err != nil {
		return "", err
	}
	return e.store.GetDraft(learnerID, exerciseID)
}

// SaveDraft stores the learner's editor text.
func (e *Engine) SaveDraft(_ context.Context, learnerID string, exerciseID int, sql string) error {
	if _, err := e.Exercise(exerciseID); err != nil {
		return err
	}
	return e.store.SaveDraft(learnerID, exerciseID, sql)
}

// History returns the learner's recent attempts. An exerciseID of 0 covers
// every exercise.
func (e *Engine) History(_ context.Context, learnerID string, exerciseID, limit int) ([]*core.Attempt, error) {
	return e.store.ListAttempts(learnerID, exerciseID, limit)
}

// Reset clears the learner's progress.
func (e *Engine) Reset(_ context.Context, learnerID string) error {
	if err := e.store.ResetProgress(learnerID); err != nil {
		return err
	}
	e.logger.Info("progress reset", "learner", learnerID)
	return nil
}
