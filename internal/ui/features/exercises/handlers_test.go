package exercises

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/features"
)

const learner = "tester"

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture, *http.Cookie) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	handlers := NewHandlers(fixture.Engine, fixture.SessionStore, fixture.Notifier, false)
	return handlers, fixture, fixture.Login(t, learner)
}

func exerciseRequest(method, id, action, body string, cookie *http.Cookie) *http.Request {
	target := "/exercises/" + id
	if action != "" {
		target += "/" + action
	}
	req := features.NewRequest(method, target, body, cookie)
	return features.RequestWithPathParam(req, "id", id)
}

func TestExercisePage(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "renders prompt, editor and updates subscription",
			id:         "1",
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<!doctype html>",
				"<title>Bài 1 - sqldrill</title>",
				"Phân loại đơn hàng theo TaxAmt",
				"<code>Order_Type</code>",
				`id="editor"`,
				"/exercises/1/updates",
				`id="sidebar"`,
				"0/5 (0%)",
			},
		},
		{name: "unknown exercise", id: "99", wantStatus: http.StatusNotFound},
		{name: "invalid id", id: "abc", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, cookie := setupTestHandlers(t)

			rec := httptest.NewRecorder()
			h.ExercisePage(rec, exerciseRequest(http.MethodGet, tt.id, "", "", cookie))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
		})
	}
}

func TestExercisePage_ShowsDraft(t *testing.T) {
	h, fixture, cookie := setupTestHandlers(t)
	require.NoError(t, fixture.Engine.SaveDraft(context.Background(), learner, 2, "SELECT <draft>"))

	rec := httptest.NewRecorder()
	h.ExercisePage(rec, exerciseRequest(http.MethodGet, "2", "", "", cookie))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SELECT &lt;draft&gt;</textarea>")
}

func TestExercisePage_NewVisitorGetsSession(t *testing.T) {
	h, fixture, _ := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.ExercisePage(rec, exerciseRequest(http.MethodGet, "1", "", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies(), "first visit should set the session cookie")

	learners, err := fixture.Engine.Store().ListLearners()
	require.NoError(t, err)
	assert.Len(t, learners, 2, "the logged-in tester plus the new visitor")
}

func TestCurrentExercise(t *testing.T) {
	h, fixture, cookie := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.CurrentExercise(rec, features.NewRequest(http.MethodGet, "/", "", cookie))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/exercises/1", rec.Header().Get("Location"))

	ex, err := fixture.Engine.Exercise(1)
	require.NoError(t, err)
	_, err = fixture.Engine.Submit(context.Background(), learner, 1, ex.Solution)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.CurrentExercise(rec, features.NewRequest(http.MethodGet, "/", "", cookie))
	assert.Equal(t, "/exercises/2", rec.Header().Get("Location"))
}

func TestRunSSE(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains []string
	}{
		{
			name:     "rows",
			body:     `{"sql":"SELECT COUNT(*) AS n FROM SalesOrderHeader"}`,
			contains: []string{"event: datastar-patch-elements", "<th>n</th>", "<td>15</td>"},
		},
		{
			name:     "engine error",
			body:     `{"sql":"SELECT nope FROM SalesOrderHeader"}`,
			contains: []string{`class="query-error"`, "nope"},
		},
		{
			name:     "empty query",
			body:     `{"sql":"   "}`,
			contains: []string{"Vui lòng nhập câu lệnh SQL."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, cookie := setupTestHandlers(t)

			rec := httptest.NewRecorder()
			h.RunSSE(rec, exerciseRequest(http.MethodPost, "1", "run", tt.body, cookie))

			body := rec.Body.String()
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestSubmitSSE(t *testing.T) {
	h, fixture, cookie := setupTestHandlers(t)
	ex, err := fixture.Engine.Exercise(3)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.SubmitSSE(rec, exerciseRequest(http.MethodPost, "3", "submit", `{"sql":"SELECT SalesOrderID FROM SalesOrderHeader"}`, cookie))
	body := rec.Body.String()
	assert.Contains(t, body, "verdict incorrect")
	assert.Contains(t, body, practice.MessageIncorrect)

	updates := fixture.Notifier.Subscribe()
	defer fixture.Notifier.Unsubscribe(updates)

	rec = httptest.NewRecorder()
	h.SubmitSSE(rec, exerciseRequest(http.MethodPost, "3", "submit", `{"sql":`+jsonString(ex.Solution)+`}`, cookie))
	body = rec.Body.String()
	assert.Contains(t, body, "verdict correct")
	assert.Contains(t, body, practice.MessageCorrect)
	assert.Contains(t, body, "1/5 (20%)", "first completion re-renders the sidebar")

	select {
	case ev := <-updates:
		assert.Equal(t, learner, ev.Learner)
	case <-time.After(100 * time.Millisecond):
		t.Error("first completion should notify other tabs")
	}

	p, err := fixture.Engine.Progress(context.Background(), learner)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, p.Completed)
}

func TestSubmitSSE_RowCheckAdvice(t *testing.T) {
	h, _, cookie := setupTestHandlers(t)

	sql := "SELECT CustomerID, 1 AS SoLanMua, 'x' AS XepHangKhachHang FROM SalesOrderHeader LIMIT 2"
	rec := httptest.NewRecorder()
	h.SubmitSSE(rec, exerciseRequest(http.MethodPost, "3", "submit", `{"sql":`+jsonString(sql)+`}`, cookie))
	body := rec.Body.String()
	assert.Contains(t, body, "verdict correct")
	assert.Contains(t, body, `class="advice"`)
	assert.Contains(t, body, "thiếu GROUP BY")
}

func TestSubmitSSE_UnknownExercise(t *testing.T) {
	h, _, cookie := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.SubmitSSE(rec, exerciseRequest(http.MethodPost, "42", "submit", `{"sql":"SELECT 1"}`, cookie))
	assert.Contains(t, rec.Body.String(), "exercise not found")
}

func TestHintSSE(t *testing.T) {
	h, fixture, cookie := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HintSSE(rec, exerciseRequest(http.MethodPost, "1", "hint", "", cookie))
	body := rec.Body.String()
	assert.Contains(t, body, `id="hints"`)
	assert.Contains(t, body, "Cú pháp cơ bản CASE WHEN")
	assert.Contains(t, body, "Gợi ý (1/5)")

	hints, err := fixture.Engine.Hints(context.Background(), learner, 1)
	require.NoError(t, err)
	assert.True(t, hints[0].Unlocked)
	assert.False(t, hints[1].Unlocked)
}

func TestSolutionSSE(t *testing.T) {
	h, _, cookie := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.SolutionSSE(rec, exerciseRequest(http.MethodGet, "1", "solution", "", cookie))
	body := rec.Body.String()
	assert.Contains(t, body, `id="solution"`)
	assert.Contains(t, body, "CASE")
}

func TestSaveDraftSSE(t *testing.T) {
	h, fixture, cookie := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.SaveDraftSSE(rec, exerciseRequest(http.MethodPut, "2", "draft", `{"sql":"SELECT 2"}`, cookie))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	draft, err := fixture.Engine.Draft(context.Background(), learner, 2)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", draft)
}

func TestExerciseUpdates(t *testing.T) {
	tests := []struct {
		name       string
		broadcast  func(f *features.TestFixture)
		wantEvents bool
		contains   string
	}{
		{
			name:       "own progress re-renders the sidebar",
			broadcast:  func(f *features.TestFixture) { f.Notifier.ProgressChanged(learner) },
			wantEvents: true,
			contains:   `id="sidebar"`,
		},
		{
			name:       "catalog reload re-renders the workspace",
			broadcast:  func(f *features.TestFixture) { f.Notifier.CatalogReloaded() },
			wantEvents: true,
			contains:   `id="editor"`,
		},
		{
			name:      "other learners are ignored",
			broadcast: func(f *features.TestFixture) { f.Notifier.ProgressChanged("someone-else") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture, cookie := setupTestHandlers(t)

			req := exerciseRequest(http.MethodGet, "1", "updates", "", cookie)
			req = features.RequestWithTimeout(t, req, 300*time.Millisecond)
			rec := httptest.NewRecorder()

			done := make(chan struct{})
			go func() {
				h.ExerciseUpdates(rec, req)
				close(done)
			}()

			require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
			tt.broadcast(fixture)
			<-done

			body := rec.Body.String()
			eventCount := strings.Count(body, "event:")
			if !tt.wantEvents {
				assert.Equal(t, 0, eventCount)
				return
			}
			assert.GreaterOrEqual(t, eventCount, 1)
			assert.Contains(t, body, tt.contains)
		})
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
