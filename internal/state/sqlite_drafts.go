package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// GetDraft returns the saved editor text for an exercise, or "" when none exists.
func (s *SQLiteStore) GetDraft(learnerID string, exerciseID int) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var text string
	err := s.db.QueryRow(
		`SELECT sql FROM drafts WHERE learner_id = ? AND draft_key = ?`,
		learnerID, catalog.DraftKey(exerciseID),
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get draft: %w", err)
	}
	return text, nil
}

// SaveDraft upserts the editor text for an exercise.
func (s *SQLiteStore) SaveDraft(learnerID string, exerciseID int, text string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(`
		INSERT INTO drafts (learner_id, draft_key, exercise_id, sql, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, draft_key) DO UPDATE SET
			sql = excluded.sql,
			updated_at = excluded.updated_at`,
		learnerID, catalog.DraftKey(exerciseID), exerciseID, text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// ListDrafts returns every draft of a learner ordered by exercise.
func (s *SQLiteStore) ListDrafts(learnerID string) ([]*core.Draft, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT learner_id, exercise_id, draft_key, sql, updated_at
		FROM drafts WHERE learner_id = ?
		ORDER BY exercise_id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []*core.Draft
	for rows.Next() {
		d := &core.Draft{}
		if err := rows.Scan(&d.LearnerID, &d.ExerciseID, &d.Key, &d.SQL, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes the draft of an exercise.
func (s *SQLiteStore) DeleteDraft(learnerID string, exerciseID int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.Exec(
		`DELETE FROM drafts WHERE learner_id = ? AND draft_key = ?`,
		learnerID, catalog.DraftKey(exerciseID),
	); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
