// Package httpapi exposes the observers over HTTP so other services can ask
// whether a Minecraft server is up without speaking the Minecraft protocol.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sund3RRR/crafty-observer/internal/observer"
)

// Logger defines the logging interface used by the API.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Observer is the part of observer.Observer the API serves.
type Observer interface {
	GetState(ctx context.Context) observer.Observation
	GetPlayers(ctx context.Context) observer.Players
	AssumeStarting(window time.Duration)
}

// Operator starts servers through Crafty. It may be nil for a target.
type Operator interface {
	Managed() bool
	StartMinecraftServer(ctx context.Context) error
	AwaitForServerStart(ctx context.Context) error
}

// Publisher receives every observation served by the API. Optional.
type Publisher interface {
	Publish(ctx context.Context, name, address string, observation observer.Observation) error
}

// Target is one named server exposed by the API.
type Target struct {
	Name     string
	Address  string
	Observer Observer
	Operator Operator
}

// Deps groups everything the handlers need.
type Deps struct {
	Targets        []Target
	Publisher      Publisher
	StartingWindow time.Duration // default window of assume-starting
	StartTime      time.Time
	Version        string
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger Logger
}

// New builds the HTTP server. Requests that start a server keep waiting for
// it in the background until ctx is done.
func New(ctx context.Context, listen string, logger Logger, deps Deps) *Server {
	router := NewRouter(ctx, logger, deps)

	s := &http.Server{
		Addr:              listen,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: logger,
	}
}

// NewRouter registers the routes and middlewares on a chi router.
func NewRouter(ctx context.Context, logger Logger, deps Deps) chi.Router {
	api := newAPI(ctx, logger, deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))

	r.Get("/healthz", api.healthz)
	r.Get("/servers", api.listServers)
	r.Route("/servers/{name}", func(r chi.Router) {
		r.Use(api.resolveTarget)
		r.Get("/state", api.state)
		r.Get("/players", api.players)
		r.Post("/assume-starting", api.assumeStarting)
		r.Post("/start", api.start)
	})

	return r
}

// Start runs the HTTP server and blocks until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP API shutting down...")
	return s.http.Shutdown(ctx)
}
