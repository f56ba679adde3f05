// Package api provides the JSON API of the UI server.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
)

// SetupRoutes registers the /api routes.
func SetupRoutes(
	router chi.Router,
	eng *practice.Engine,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
) error {
	handlers := NewHandlers(eng, sessionStore, notify)

	router.Route("/api", func(r chi.Router) {
		r.Get("/exercises", handlers.ListExercises)
		r.Get("/exercises/{id}", handlers.GetExercise)
		r.Post("/exercises/{id}/submit", handlers.Submit)
		r.Get("/exercises/{id}/draft", handlers.GetDraft)
		r.Put("/exercises/{id}/draft", handlers.PutDraft)
		r.Post("/exercises/{id}/hints", handlers.UnlockHint)
		r.Get("/exercises/{id}/solution", handlers.GetSolution)
		r.Post("/query", handlers.Query)
		r.Get("/progress", handlers.GetProgress)
	})

	return nil
}
