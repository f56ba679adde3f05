package practice

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldrill/internal/state"
	"github.com/leapstack-labs/sqldrill/internal/testutil"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"

	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/sqlite"
)

const learner = state.DefaultLearnerID

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background(), Config{
		StatePath: filepath.Join(t.TempDir(), "state.db"),
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNew_UnknownEngine(t *testing.T) {
	_, err := New(context.Background(), Config{
		Adapter:   core.AdapterConfig{Type: "oracle"},
		StatePath: ":memory:",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter type")
}

func TestEngine_Execute(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		sql      string
		wantErr  error
		wantFail string
		wantCols []string
		wantRows int
	}{
		{name: "empty", sql: "  \n\t", wantErr: ErrEmptyQuery},
		{name: "count", sql: "SELECT COUNT(*) AS n FROM SalesOrderHeader", wantCols: []string{"n"}, wantRows: 1},
		{name: "all rows", sql: "SELECT * FROM SalesOrderHeader", wantRows: 15},
		{name: "unknown column", sql: "SELECT Foo FROM SalesOrderHeader", wantFail: "no such column"},
		{name: "syntax error", sql: "SELEC 1", wantFail: "syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Execute(ctx, tt.sql)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantFail != "" {
				assert.True(t, res.Failed())
				assert.Contains(t, res.Error, tt.wantFail)
				return
			}
			assert.False(t, res.Failed(), res.Error)
			if tt.wantCols != nil {
				assert.Equal(t, tt.wantCols, res.Columns)
			}
			assert.Equal(t, tt.wantRows, res.RowCount())
		})
	}
}

func TestEngine_ExecuteNeverMutatesDataset(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, stmt := range []string{
		"DELETE FROM SalesOrderHeader",
		"UPDATE SalesOrderHeader SET SubTotal = 0",
		"DROP TABLE SalesOrderHeader",
		"COMMIT; DELETE FROM SalesOrderHeader",
		"PRAGMA query_only = OFF; COMMIT; DELETE FROM SalesOrderHeader; BEGIN",
	} {
		_, err := e.Execute(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	res, err := e.Execute(ctx, "SELECT COUNT(*), SUM(SubTotal) > 0 FROM SalesOrderHeader")
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.EqualValues(t, 15, res.Rows[0][0])
	assert.EqualValues(t, 1, res.Rows[0][1])
}

func TestEngine_SubmitReferenceSolutions(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, ex := range e.Catalog().List() {
		t.Run(ex.Title, func(t *testing.T) {
			sub, err := e.Submit(ctx, learner, ex.ID, ex.Solution)
			require.NoError(t, err)
			assert.Equal(t, core.VerdictCorrect, sub.Verdict, sub.Message)
			assert.Equal(t, MessageCorrect, sub.Message)
			assert.Empty(t, sub.RowCheckMessage)
			assert.True(t, sub.FirstCompletion)
			assert.NotEmpty(t, sub.AttemptID)
		})
	}

	p, err := e.Progress(ctx, learner)
	require.NoError(t, err)
	assert.True(t, p.AllComplete())
	assert.Equal(t, 100, p.Percent())
	assert.Zero(t, p.Current)
}

func TestEngine_SubmitVerdicts(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		exercise    int
		sql         string
		wantVerdict core.Verdict
		wantMessage string
		wantMissing []string
	}{
		{
			name:        "engine error",
			exercise:    1,
			sql:         "SELECT Nope FROM SalesOrderHeader",
			wantVerdict: core.VerdictError,
			wantMessage: "no such column",
		},
		{
			name:        "wrong column count",
			exercise:    1,
			sql:         "SELECT SalesOrderID, TaxAmt FROM SalesOrderHeader",
			wantVerdict: core.VerdictIncorrect,
			wantMessage: "expected 3 columns, got 2",
			wantMissing: []string{"Order_Type"},
		},
		{
			name:        "wrong column name",
			exercise:    4,
			sql:         "SELECT TerritoryID, SUM(SubTotal) AS Sales FROM SalesOrderHeader GROUP BY TerritoryID",
			wantVerdict: core.VerdictIncorrect,
			wantMessage: "missing columns: TotalSales",
			wantMissing: []string{"TotalSales"},
		},
		{
			name:        "case-insensitive columns",
			exercise:    3,
			sql:         "SELECT customerid, COUNT(*) AS solanmua, 'Khách hàng mới' AS XEPHANGKHACHHANG FROM SalesOrderHeader GROUP BY customerid",
			wantVerdict: core.VerdictCorrect,
			wantMessage: MessageCorrect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := e.Submit(ctx, learner, tt.exercise, tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerdict, sub.Verdict)
			assert.Contains(t, sub.Message, tt.wantMessage)
			assert.Equal(t, tt.wantMissing, sub.MissingColumns)
			if tt.wantVerdict == core.VerdictIncorrect {
				assert.Contains(t, sub.Message, MessageIncorrect)
			}
		})
	}
}

func TestEngine_SubmitIgnoresRowContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		exercise     int
		sql          string
		wantRowCheck string
	}{
		{
			name:         "constant label",
			exercise:     1,
			sql:          "SELECT SalesOrderID, TaxAmt, 'Low' AS Order_Type FROM SalesOrderHeader",
			wantRowCheck: "Order_Type chỉ nhận",
		},
		{
			name:         "partial result",
			exercise:     3,
			sql:          "SELECT CustomerID, 1 AS SoLanMua, 'x' AS XepHangKhachHang FROM SalesOrderHeader LIMIT 2",
			wantRowCheck: "thiếu GROUP BY",
		},
		{
			name:         "missing HAVING",
			exercise:     4,
			sql:          "SELECT TerritoryID, SUM(SubTotal) AS TotalSales FROM SalesOrderHeader GROUP BY TerritoryID",
			wantRowCheck: "thiếu HAVING",
		},
		{
			name:         "literal row",
			exercise:     5,
			sql:          "SELECT 'Nhanh' AS wait_type, 1 AS TotalOrders, 2.0 AS TotalRevenue, 3.0 AS AvgWaitTime",
			wantRowCheck: "TotalOrders phải bằng 15",
		},
		{
			name:         "check that fails to run",
			exercise:     5,
			sql:          "SELECT 'Nhanh' AS wait_type, 'many' AS TotalOrders, 2.0 AS TotalRevenue, 3.0 AS AvgWaitTime",
			wantRowCheck: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := e.Submit(ctx, learner, tt.exercise, tt.sql)
			require.NoError(t, err)
			assert.Equal(t, core.VerdictCorrect, sub.Verdict)
			assert.Equal(t, MessageCorrect, sub.Message)
			if tt.wantRowCheck == "" {
				assert.Empty(t, sub.RowCheckMessage)
			} else {
				assert.Contains(t, sub.RowCheckMessage, tt.wantRowCheck)
			}
		})
	}

	p, err := e.Progress(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4, 5}, p.Completed)
}

func TestEngine_SubmitRecordsState(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	sub, err := e.Submit(ctx, learner, 2, "SELECT 1 +")
	require.NoError(t, err)
	assert.Equal(t, core.VerdictError, sub.Verdict)
	assert.False(t, sub.FirstCompletion)

	ex, err := e.Exercise(2)
	require.NoError(t, err)
	sub, err = e.Submit(ctx, learner, 2, ex.Solution)
	require.NoError(t, err)
	assert.True(t, sub.FirstCompletion)

	sub, err = e.Submit(ctx, learner, 2, ex.Solution)
	require.NoError(t, err)
	assert.True(t, sub.Verdict.IsCorrect())
	assert.False(t, sub.FirstCompletion, "completion is only reported once")

	history, err := e.History(ctx, learner, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, core.VerdictError, history[2].Verdict)
	assert.NotEmpty(t, history[2].Error)
	assert.Equal(t, 15, history[0].RowCount)

	draft, err := e.Draft(ctx, learner, 2)
	require.NoError(t, err)
	assert.Equal(t, ex.Solution, draft, "submitting saves the draft")

	p, err := e.Progress(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, p.Completed)
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 20, p.Percent())
}

func TestEngine_CheckRecordsNothing(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	ex, err := e.Exercise(1)
	require.NoError(t, err)
	sub, err := e.Check(ctx, 1, ex.Solution)
	require.NoError(t, err)
	assert.Equal(t, core.VerdictCorrect, sub.Verdict)
	assert.Empty(t, sub.AttemptID)

	history, err := e.History(ctx, learner, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	p, err := e.Progress(ctx, learner)
	require.NoError(t, err)
	assert.Empty(t, p.Completed)
}

func TestEngine_SubmitErrors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, learner, 99, "SELECT 1")
	assert.ErrorIs(t, err, catalog.ErrExerciseNotFound)

	_, err = e.Submit(ctx, learner, 1, "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	attempts, err := e.History(ctx, learner, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestEngine_Hints(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	hints, err := e.Hints(ctx, learner, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hints)
	for _, h := range hints {
		assert.False(t, h.Unlocked)
	}

	h, err := e.UnlockNextHint(ctx, learner, 3)
	require.NoError(t, err)
	assert.Equal(t, hints[0].ID, h.ID)

	h, err = e.UnlockNextHint(ctx, learner, 3)
	require.NoError(t, err)
	assert.Equal(t, hints[1].ID, h.ID)

	hints, err = e.Hints(ctx, learner, 3)
	require.NoError(t, err)
	assert.True(t, hints[0].Unlocked)
	assert.True(t, hints[1].Unlocked)

	_, err = e.UnlockHint(ctx, learner, 3, 42)
	assert.ErrorIs(t, err, catalog.ErrHintNotFound)

	_, err = e.Hints(ctx, learner, 42)
	assert.ErrorIs(t, err, catalog.ErrExerciseNotFound)
}

func TestEngine_UnlockNextHintWhenAllOpen(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	hints, err := e.Hints(ctx, learner, 1)
	require.NoError(t, err)
	for range hints {
		_, err := e.UnlockNextHint(ctx, learner, 1)
		require.NoError(t, err)
	}

	h, err := e.UnlockNextHint(ctx, learner, 1)
	require.NoError(t, err)
	assert.Equal(t, hints[len(hints)-1].ID, h.ID)
}

func TestEngine_Drafts(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	draft, err := e.Draft(ctx, learner, 1)
	require.NoError(t, err)
	assert.Empty(t, draft)

	require.NoError(t, e.SaveDraft(ctx, learner, 1, "SELECT TaxAmt"))
	draft, err = e.Draft(ctx, learner, 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT TaxAmt", draft)

	assert.ErrorIs(t, e.SaveDraft(ctx, learner, 77, "SELECT 1"), catalog.ErrExerciseNotFound)
}

func TestEngine_SolutionAndPreview(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	sql, notes, err := e.Solution(2)
	require.NoError(t, err)
	assert.Contains(t, sql, "julianday")
	assert.Contains(t, notes, "DATEDIFF")

	_, _, err = e.Solution(0)
	assert.True(t, errors.Is(err, catalog.ErrExerciseNotFound))

	preview, err := e.Preview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, preview.RowCount())
	assert.Len(t, preview.Columns, 8)
	assert.Nil(t, preview.Rows[3][2], "SalesPersonID of order 43662 is NULL")

	all, err := e.Preview(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, all.RowCount())

	meta, err := e.Schema(ctx)
	require.NoError(t, err)
	assert.Len(t, meta.Columns, 8)
}

func TestEngine_ReloadCatalog(t *testing.T) {
	e := newTestEngine(t)

	cat, err := catalog.New([]*catalog.Exercise{{
		ID:              1,
		Title:           "Only one",
		ExpectedColumns: []string{"n"},
		Check:           "def check(columns, rows):\n    return rows[0][\"n\"] == 15\n",
	}})
	require.NoError(t, err)
	require.NoError(t, e.ReloadCatalog(cat))
	assert.Equal(t, 1, e.Catalog().Len())

	sub, err := e.Submit(context.Background(), learner, 1, "SELECT COUNT(*) AS n FROM SalesOrderHeader")
	require.NoError(t, err)
	assert.Equal(t, core.VerdictCorrect, sub.Verdict)

	broken, err := catalog.New([]*catalog.Exercise{{
		ID:              1,
		Title:           "Broken",
		ExpectedColumns: []string{"n"},
		Check:           "def check(columns, rows)\n",
	}})
	require.NoError(t, err)
	err = e.ReloadCatalog(broken)
	require.Error(t, err)
	assert.Equal(t, "Only one", e.Catalog().List()[0].Title, "previous catalog stays active")

	assert.Error(t, e.ReloadCatalog(nil))
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	ex, err := e.Exercise(1)
	require.NoError(t, err)
	_, err = e.Submit(ctx, learner, 1, ex.Solution)
	require.NoError(t, err)

	require.NoError(t, e.Reset(ctx, learner))

	p, err := e.Progress(ctx, learner)
	require.NoError(t, err)
	assert.Empty(t, p.Completed)
	assert.Equal(t, 1, p.Current)
}

func TestEngine_Learner(t *testing.T) {
	e := newTestEngine(t)

	l, err := e.Learner("", "Minh")
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "Minh", l.Name)
}
