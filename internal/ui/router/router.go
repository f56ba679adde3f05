// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	apiFeature "github.com/leapstack-labs/sqldrill/internal/ui/features/api"
	dataFeature "github.com/leapstack-labs/sqldrill/internal/ui/features/data"
	exercisesFeature "github.com/leapstack-labs/sqldrill/internal/ui/features/exercises"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
	"github.com/leapstack-labs/sqldrill/internal/ui/resources"
)

// Options tunes the routes.
type Options struct {
	PreviewLimit int
	IsDev        bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	eng *practice.Engine,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	opts Options,
) error {
	// Hot reload endpoint for dev mode
	if opts.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if err := exercisesFeature.SetupRoutes(router, eng, sessionStore, notify, opts.IsDev); err != nil {
		return err
	}

	if err := dataFeature.SetupRoutes(router, eng, opts.PreviewLimit, opts.IsDev); err != nil {
		return err
	}

	if err := apiFeature.SetupRoutes(router, eng, sessionStore, notify); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
