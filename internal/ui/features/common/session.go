package common

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

// SessionName is the cookie name of the learner session.
const SessionName = "sqldrill"

// LearnerKey is the session value holding the learner ID.
const LearnerKey = "learner_id"

// LearnerID returns the learner bound to the request session. A learner is
// created and stored in the cookie on the first visit. It must be called
// before any response body is written.
func LearnerID(w http.ResponseWriter, r *http.Request, store sessions.Store, eng *practice.Engine) (string, error) {
	// A cookie that fails to decode yields a fresh session.
	sess, _ := store.Get(r, SessionName)

	id, _ := sess.Values[LearnerKey].(string)
	learner, err := eng.Learner(id, "")
	if err != nil {
		return "", fmt.Errorf("failed to load learner: %w", err)
	}
	if learner.ID == id {
		return id, nil
	}

	sess.Values[LearnerKey] = learner.ID
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return learner.ID, nil
}
