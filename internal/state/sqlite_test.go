package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")

	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	defer store.Close()
	require.NoError(t, store.InitSchema())

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	tables := []string{"learners", "drafts", "attempts", "completions", "hint_unlocks"}
	for _, table := range tables {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// running again is a no-op
	require.NoError(t, store.InitSchema())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()

	_, err := store.GetDraft(DefaultLearnerID, 1)
	assert.ErrorContains(t, err, "database not opened")
	assert.ErrorContains(t, store.SaveDraft(DefaultLearnerID, 1, "SELECT 1"), "database not opened")
	assert.ErrorContains(t, store.RecordAttempt(&core.Attempt{}), "database not opened")
	_, err = store.ListCompleted(DefaultLearnerID)
	assert.ErrorContains(t, err, "database not opened")
	assert.ErrorContains(t, store.InitSchema(), "database not opened")
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Learners(t *testing.T) {
	store := setupTestStore(t)

	l, err := store.EnsureLearner(DefaultLearnerID, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLearnerID, l.ID)
	assert.Equal(t, DefaultLearnerID, l.Name)

	// second call keeps the original name
	l, err = store.EnsureLearner(DefaultLearnerID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, DefaultLearnerID, l.Name)

	generated, err := store.EnsureLearner("", "Lan")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, "Lan", generated.Name)

	learners, err := store.ListLearners()
	require.NoError(t, err)
	assert.Len(t, learners, 2)

	_, err = store.GetLearner("missing")
	assert.ErrorIs(t, err, ErrLearnerNotFound)
}

func TestSQLiteStore_Drafts(t *testing.T) {
	store := setupTestStore(t)

	text, err := store.GetDraft(DefaultLearnerID, 1)
	require.NoError(t, err)
	assert.Empty(t, text, "missing draft should be empty")

	require.NoError(t, store.SaveDraft(DefaultLearnerID, 1, "SELECT 1"))
	require.NoError(t, store.SaveDraft(DefaultLearnerID, 1, "SELECT 2"))
	require.NoError(t, store.SaveDraft(DefaultLearnerID, 3, "SELECT 3"))
	require.NoError(t, store.SaveDraft("other", 1, "SELECT 'other'"))

	text, err = store.GetDraft(DefaultLearnerID, 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", text)

	drafts, err := store.ListDrafts(DefaultLearnerID)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, 1, drafts[0].ExerciseID)
	assert.Equal(t, "sql_code_exercise_1", drafts[0].Key)
	assert.Equal(t, 3, drafts[1].ExerciseID)

	require.NoError(t, store.DeleteDraft(DefaultLearnerID, 1))
	text, err = store.GetDraft(DefaultLearnerID, 1)
	require.NoError(t, err)
	assert.Empty(t, text)

	text, err = store.GetDraft("other", 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'other'", text)
}

func TestSQLiteStore_Attempts(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	attempts := []*core.Attempt{
		{LearnerID: DefaultLearnerID, ExerciseID: 1, SQL: "SELECT x", Verdict: core.VerdictError, Error: "no such column: x", CreatedAt: base},
		{LearnerID: DefaultLearnerID, ExerciseID: 1, SQL: "SELECT 1", Verdict: core.VerdictIncorrect, RowCount: 1, CreatedAt: base.Add(time.Minute)},
		{LearnerID: DefaultLearnerID, ExerciseID: 2, SQL: "SELECT 2", Verdict: core.VerdictCorrect, RowCount: 15, DurationMS: 3, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range attempts {
		require.NoError(t, store.RecordAttempt(a))
		assert.NotEmpty(t, a.ID)
	}

	all, err := store.ListAttempts(DefaultLearnerID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].ExerciseID, "newest first")
	assert.Equal(t, core.VerdictCorrect, all[0].Verdict)
	assert.Equal(t, 15, all[0].RowCount)
	assert.Equal(t, int64(3), all[0].DurationMS)
	assert.Equal(t, "no such column: x", all[2].Error)
	assert.Empty(t, all[1].Error)

	ex1, err := store.ListAttempts(DefaultLearnerID, 1, 0)
	require.NoError(t, err)
	require.Len(t, ex1, 2)
	assert.Equal(t, "SELECT 1", ex1[0].SQL)

	limited, err := store.ListAttempts(DefaultLearnerID, 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.ListAttempts("other", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_Completions(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.MarkCompleted(DefaultLearnerID, 3, "a1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkCompleted(DefaultLearnerID, 3, "a2")
	require.NoError(t, err)
	assert.False(t, again, "completion is recorded once")

	_, err = store.MarkCompleted(DefaultLearnerID, 1, "a3")
	require.NoError(t, err)

	completed, err := store.ListCompleted(DefaultLearnerID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, completed)

	completed, err = store.ListCompleted("other")
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestSQLiteStore_Hints(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.UnlockHint(DefaultLearnerID, 2, 2))
	require.NoError(t, store.UnlockHint(DefaultLearnerID, 2, 1))
	require.NoError(t, store.UnlockHint(DefaultLearnerID, 2, 1))
	require.NoError(t, store.UnlockHint(DefaultLearnerID, 4, 1))

	hints, err := store.UnlockedHints(DefaultLearnerID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, hints)

	hints, err = store.UnlockedHints(DefaultLearnerID, 5)
	require.NoError(t, err)
	assert.Empty(t, hints)
}

func TestSQLiteStore_ResetProgress(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveDraft(DefaultLearnerID, 1, "SELECT 1"))
	require.NoError(t, store.RecordAttempt(&core.Attempt{LearnerID: DefaultLearnerID, ExerciseID: 1, SQL: "SELECT 1", Verdict: core.VerdictCorrect}))
	_, err := store.MarkCompleted(DefaultLearnerID, 1, "a1")
	require.NoError(t, err)
	require.NoError(t, store.UnlockHint(DefaultLearnerID, 1, 1))
	require.NoError(t, store.SaveDraft("other", 1, "SELECT 'kept'"))

	require.NoError(t, store.ResetProgress(DefaultLearnerID))

	completed, err := store.ListCompleted(DefaultLearnerID)
	require.NoError(t, err)
	assert.Empty(t, completed)

	attempts, err := store.ListAttempts(DefaultLearnerID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	hints, err := store.UnlockedHints(DefaultLearnerID, 1)
	require.NoError(t, err)
	assert.Empty(t, hints)

	drafts, err := store.ListDrafts(DefaultLearnerID)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	text, err := store.GetDraft("other", 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'kept'", text)
}
