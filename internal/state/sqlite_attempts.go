package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// RecordAttempt stores a submission. ID and CreatedAt are filled in when empty.
func (s *SQLiteStore) RecordAttempt(a *core.Attempt) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if a.ID == "" {
		a.ID = generateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var errMsg sql.NullString
	if a.Error != "" {
		errMsg = sql.NullString{String: a.Error, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO attempts (id, learner_id, exercise_id, sql, verdict, error, row_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.LearnerID, a.ExerciseID, a.SQL, string(a.Verdict), errMsg, a.RowCount, a.DurationMS, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// ListAttempts returns a learner's attempts, newest first. An exerciseID of 0
// matches every exercise and a limit <= 0 returns all attempts.
func (s *SQLiteStore) ListAttempts(learnerID string, exerciseID int, limit int) ([]*core.Attempt, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `
		SELECT id, learner_id, exercise_id, sql, verdict, error, row_count, duration_ms, created_at
		FROM attempts
		WHERE learner_id = ? AND (? = 0 OR exercise_id = ?)
		ORDER BY created_at DESC, rowid DESC`
	args := []any{learnerID, exerciseID, exerciseID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []*core.Attempt
	for rows.Next() {
		a := &core.Attempt{}
		var verdict string
		var errMsg sql.NullString
		if err := rows.Scan(&a.ID, &a.LearnerID, &a.ExerciseID, &a.SQL, &verdict, &errMsg,
			&a.RowCount, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Verdict = core.Verdict(verdict)
		if errMsg.Valid {
			a.Error = errMsg.String
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// MarkCompleted records that a learner completed an exercise. It reports
// true only the first time.
func (s *SQLiteStore) MarkCompleted(learnerID string, exerciseID int, attemptID string) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(`
		INSERT INTO completions (learner_id, exercise_id, attempt_id, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, exercise_id) DO NOTHING`,
		learnerID, exerciseID, attemptID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark completion: %w", err)
	}
	return n == 1, nil
}

// ListCompleted returns the completed exercise IDs in ascending order.
func (s *SQLiteStore) ListCompleted(learnerID string) ([]int, error) {
	return s.listInts(`SELECT exercise_id FROM completions WHERE learner_id = ? ORDER BY exercise_id`, learnerID)
}

// UnlockHint records that a learner opened a hint.
func (s *SQLiteStore) UnlockHint(learnerID string, exerciseID, hintID int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	_, err := s.db.Exec(`
		INSERT INTO hint_unlocks (learner_id, exercise_id, hint_id, unlocked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, exercise_id, hint_id) DO NOTHING`,
		learnerID, exerciseID, hintID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to unlock hint: %w", err)
	}
	return nil
}

// UnlockedHints returns the hint IDs a learner opened for an exercise.
func (s *SQLiteStore) UnlockedHints(learnerID string, exerciseID int) ([]int, error) {
	return s.listInts(
		`SELECT hint_id FROM hint_unlocks WHERE learner_id = ? AND exercise_id = ? ORDER BY hint_id`,
		learnerID, exerciseID,
	)
}

// ResetProgress clears attempts, completions, unlocks and drafts for a learner.
func (s *SQLiteStore) ResetProgress(learnerID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"attempts", "completions", "hint_unlocks", "drafts"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE learner_id = ?`, learnerID); err != nil { //nolint:gosec // fixed table names
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listInts(query string, args ...any) ([]int, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
