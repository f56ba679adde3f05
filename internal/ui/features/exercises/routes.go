// Package exercises provides the interactive practice pages of the UI.
package exercises

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
)

// SetupRoutes configures routes for the exercises feature.
func SetupRoutes(
	router chi.Router,
	eng *practice.Engine,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	isDev bool,
) error {
	handlers := NewHandlers(eng, sessionStore, notify, isDev)

	router.Get("/", handlers.CurrentExercise)
	router.Get("/exercises", handlers.CurrentExercise)
	router.Route("/exercises/{id}", func(r chi.Router) {
		r.Get("/", handlers.ExercisePage)
		r.Get("/updates", handlers.ExerciseUpdates)
		r.Post("/run", handlers.RunSSE)
		r.Post("/submit", handlers.SubmitSSE)
		r.Post("/hint", handlers.HintSSE)
		r.Get("/solution", handlers.SolutionSSE)
		r.Put("/draft", handlers.SaveDraftSSE)
	})

	return nil
}
