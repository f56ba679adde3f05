// Package ui provides the web practice UI of sqldrill.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
	"github.com/leapstack-labs/sqldrill/internal/ui/router"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// reloadDebounce coalesces bursts of file events from editors.
const reloadDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	engine       *practice.Engine
	sessionStore *sessions.CookieStore
	host         string
	port         int
	watch        bool
	exercisesDir string
	previewLimit int
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Engine        *practice.Engine
	Host          string
	Port          int
	Watch         bool
	SessionSecret string
	Logger        *slog.Logger
	// ExercisesDir is watched for catalog changes. Empty when the embedded
	// catalog is in use.
	ExercisesDir string
	PreviewLimit int
	Dev          bool
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 365)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		engine:       cfg.Engine,
		sessionStore: sessionStore,
		host:         cfg.Host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		exercisesDir: cfg.ExercisesDir,
		previewLimit: cfg.PreviewLimit,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	opts := router.Options{PreviewLimit: s.previewLimit, IsDev: s.dev}
	if err := router.SetupRoutes(r, s.engine, s.sessionStore, s.notifier, opts); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprint(s.port))
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting UI server", "addr", srv.Addr)

	if s.watch && s.exercisesDir != "" {
		eg.Go(func() error {
			return s.watchCatalog(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchCatalog reloads the catalog when the exercises file changes and pushes
// the new content to connected pages. A broken file keeps the old catalog.
func (s *Server) watchCatalog(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(s.exercisesDir); err != nil {
		s.logger.Error("failed to watch exercises directory", "dir", s.exercisesDir, "error", err)
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != catalog.FileName {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.reloadCatalog(event.Name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) reloadCatalog(file string) {
	s.logger.Debug("exercises changed, reloading", "file", file)

	cat, err := catalog.LoadDir(s.exercisesDir)
	if err != nil {
		s.logger.Error("failed to load exercises, keeping the previous catalog", "error", err)
		return
	}
	if err := s.engine.ReloadCatalog(cat); err != nil {
		s.logger.Error("failed to reload exercises, keeping the previous catalog", "error", err)
		return
	}
	s.logger.Info("exercises reloaded", "count", cat.Len())
	s.notifier.CatalogReloaded()
}
