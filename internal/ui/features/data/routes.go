// Package data provides the dataset preview page.
package data

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

// SetupRoutes registers the data feature routes.
func SetupRoutes(router chi.Router, eng *practice.Engine, previewLimit int, isDev bool) error {
	handlers := NewHandlers(eng, previewLimit, isDev)

	router.Get("/data", handlers.DataPage)

	return nil
}
