// Package ui assembles and runs the DataCensus dashboard server.
package ui

import (
	"context"
	"fmt"
	"io/fs"
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

	"github.com/datacensus/datacensus/internal/agent"
	"github.com/datacensus/datacensus/internal/analyzer"
	"github.com/datacensus/datacensus/internal/backend"
	"github.com/datacensus/datacensus/internal/chat"
	"github.com/datacensus/datacensus/internal/config"
	"github.com/datacensus/datacensus/internal/report"
	"github.com/datacensus/datacensus/internal/ui/features/analysis"
	"github.com/datacensus/datacensus/internal/ui/features/health"
	"github.com/datacensus/datacensus/internal/ui/features/search"
	"github.com/datacensus/datacensus/internal/ui/notifier"
	"github.com/datacensus/datacensus/internal/ui/resources"
	"github.com/datacensus/datacensus/internal/ui/router"
	"github.com/datacensus/datacensus/internal/ui/views"
)

// Server is the dashboard server.
type Server struct {
	cfg          *config.Config
	backend      *backend.Client
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	reload       *notifier.Notifier
	logger       *slog.Logger
	watch        bool
	isDev        bool
}

// ServerConfig holds construction parameters for the dashboard server.
type ServerConfig struct {
	Config        *config.Config
	SessionSecret string
	Watch         bool
	IsDev         bool
	Logger        *slog.Logger
}

// NewServer creates a dashboard server.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg: cfg.Config,
		backend: backend.NewClient(backend.Config{
			BaseURL: cfg.Config.BackendURL,
			Timeout: cfg.Config.RequestTimeout(),
			Logger:  logger,
		}),
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		reload:       notifier.New(),
		logger:       logger,
		watch:        cfg.Watch,
		isDev:        cfg.IsDev,
	}
}

// Serve starts the dashboard server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	v, err := views.New()
	if err != nil {
		return err
	}

	features := s.buildFeatures(v)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	s.logger.Info("starting dashboard server", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port))

	// The backend probe at startup is advisory: a down backend is reported
	// but the dashboard still comes up.
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := s.backend.Health(probeCtx); err != nil {
		s.logger.Warn("scoring backend not reachable at startup", "url", s.cfg.BackendURL, "error", err)
	}
	cancel()

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	router.SetupRoutes(r, features, s.reload, s.isDev)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchStatic(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// buildFeatures wires the feature handlers onto the shared clients and state.
func (s *Server) buildFeatures(v *views.Views) router.Features {
	var narrator report.Narrator
	if s.cfg.AgentWebhook != "" {
		narrator = agent.NewClient(agent.Config{
			WebhookURL: s.cfg.AgentWebhook,
			Logger:     s.logger,
		})
	}

	var searcher search.Asker
	if s.cfg.SearchWebhook != "" {
		searcher = agent.NewClient(agent.Config{
			WebhookURL: s.cfg.SearchWebhook,
			Logger:     s.logger,
		})
	}

	analysisHandlers := analysis.NewHandlers(analysis.HandlersConfig{
		Analyzer: analyzer.New(s.backend, s.logger),
		Reporter: report.NewRenderer(report.Config{
			Narrator: narrator,
			Logger:   s.logger,
		}),
		Views:            v,
		State:            analysis.NewState(),
		Notifier:         s.notifier,
		Logger:           s.logger,
		DefaultDatasetID: s.cfg.DefaultDatasetID,
		IsDev:            s.isDev,
	})

	return router.Features{
		Analysis: analysisHandlers,
		Search:   search.NewHandlers(searcher, chat.NewStore(), s.sessionStore, v, s.logger),
		Health:   health.NewHandlers(s.backend, s.logger),
	}
}

// watchStatic reloads connected browsers when a static asset changes in dev
// mode.
func (s *Server) watchStatic(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, resources.StaticDirectoryPath); err != nil {
		s.logger.Error("failed to watch static directory", "error", err)
		// Keep serving without the watcher.
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("static asset changed, reloading browsers", "file", event.Name)
				s.reload.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
