package state

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// ErrLearnerNotFound is returned when a learner ID is unknown.
var ErrLearnerNotFound = errors.New("learner not found")

// EnsureLearner returns the learner with id, creating it when missing.
// An empty id creates a new learner with a generated ID.
func (s *SQLiteStore) EnsureLearner(id, name string) (*core.Learner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if id == "" {
		id = generateID()
	}
	if strings.TrimSpace(name) == "" {
		name = id
	}

	_, err := s.db.Exec(
		`INSERT INTO learners (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		id, name, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure learner: %w", err)
	}
	return s.GetLearner(id)
}

// GetLearner retrieves a learner by ID.
func (s *SQLiteStore) GetLearner(id string) (*core.Learner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	l := &core.Learner{}
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM learners WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLearnerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}
	return l, nil
}

// ListLearners returns all learners, oldest first.
func (s *SQLiteStore) ListLearners() ([]*core.Learner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT id, name, created_at FROM learners ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var learners []*core.Learner
	for rows.Next() {
		l := &core.Learner{}
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}
