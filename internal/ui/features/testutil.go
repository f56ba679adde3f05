// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/testutil"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"

	// Register the embedded engine.
	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/sqlite"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Engine       *practice.Engine
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates an engine over in-memory SQLite with a temporary
// state database and the embedded catalog.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	eng, err := practice.New(context.Background(), practice.Config{
		StatePath: filepath.Join(t.TempDir(), "state.db"),
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = eng.Close()
	})

	return &TestFixture{
		Engine:       eng,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// Login creates a session for learnerID and returns its cookie.
func (f *TestFixture) Login(t *testing.T, learnerID string) *http.Cookie {
	t.Helper()

	_, err := f.Engine.Learner(learnerID, "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := f.SessionStore.New(req, common.SessionName)
	require.NoError(t, err)
	sess.Values[common.LearnerKey] = learnerID
	require.NoError(t, sess.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

// NewRequest builds a request carrying the session cookie and, when body is
// non-empty, a JSON body.
func NewRequest(method, target, body string, cookie *http.Cookie) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout. The context is
// released when the test ends.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
