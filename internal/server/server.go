// Package server wires the HTTP surface: server-rendered pages, the todo
// API, the client bundle, and dev-mode log forwarding.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackpad/internal/assets"
	"stackpad/internal/config"
	"stackpad/internal/store"
	"stackpad/internal/swapi"
)

// Server owns the HTTP listener and its dependencies. The store and film
// client are injected so tests can substitute fakes.
type Server struct {
	cfg    config.ServerConfig
	logger *zap.Logger
	todos  store.TodoStore
	films  FilmSource
	bundle *assets.Bundle

	shutdownTimeout time.Duration
}

// FilmSource is the remote-API surface the page handlers need.
// *swapi.Client satisfies it.
type FilmSource interface {
	Films(ctx context.Context) ([]swapi.Film, error)
	Film(ctx context.Context, id string) (swapi.Film, error)
}

// New creates a server. The bundle starts as the embedded client script.
func New(cfg *config.Config, logger *zap.Logger, todos store.TodoStore, films FilmSource) *Server {
	return &Server{
		cfg:             cfg.Server,
		logger:          logger.Named("server"),
		todos:           todos,
		films:           films,
		bundle:          assets.NewBundle(),
		shutdownTimeout: cfg.GetShutdownTimeout(),
	}
}

// Handler builds the route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /todo", s.handleTodoPage)
	mux.HandleFunc("GET /star-wars", s.handleFilmsPage)
	mux.HandleFunc("GET /star-wars/{id}", s.handleFilmDetailPage)

	mux.HandleFunc("GET /api/todos", s.handleListTodos)
	mux.HandleFunc("POST /api/todos", s.handleCreateTodo)

	mux.HandleFunc("GET /client.js", s.handleClientBundle)

	if s.cfg.DevMode {
		mux.HandleFunc("POST /api/log", s.handleClientLog)
	}

	return s.withRecovery(s.withAccessLog(mux))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is done, then shuts down
// gracefully. In dev mode the bundle reloader runs alongside the listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.DevMode && s.cfg.BundlePath != "" {
		reloader, err := assets.NewReloader(s.bundle, s.cfg.BundlePath, s.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return reloader.Run(ctx) })
	}

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
