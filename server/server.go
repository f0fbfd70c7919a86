// Package server serves the GraphQL schema over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/rs/cors"

	"github.com/satishbabariya/pgql/internal/debug"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, ":8000" by default.
	Addr string
	// AllowedOrigins is "*" or a comma separated list of origins.
	AllowedOrigins string
	// ShutdownTimeout bounds graceful shutdown, 10s by default.
	ShutdownTimeout time.Duration
	// Stats is mounted at /debug/stats when set.
	Stats http.Handler
}

// DefaultAddr is used when Config.Addr is empty.
const DefaultAddr = ":8000"

// Server is the GraphQL HTTP server.
type Server struct {
	cfg    Config
	schema *graphql.Schema
	db     Pinger
	logger *slog.Logger
}

// New creates a server for schema. db backs the health check.
func New(cfg Config, schema graphql.Schema, db Pinger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg:    cfg,
		schema: &schema,
		db:     db,
		logger: debug.With("component", "server"),
	}
}

// Handler returns the complete HTTP handler with CORS, request ids and
// request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	gql := handler.New(&handler.Config{
		Schema:   s.schema,
		Pretty:   true,
		GraphiQL: true,
	})
	mux.Handle("/graphql", gql)
	mux.HandleFunc("/healthz", s.health)
	if s.cfg.Stats != nil {
		mux.Handle("/debug/stats", s.cfg.Stats)
	}
	mux.Handle("/graphiql", http.RedirectHandler("/graphql", http.StatusTemporaryRedirect))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/graphql", http.StatusTemporaryRedirect)
	})

	var h http.Handler = mux
	h = s.logRequests(h)
	h = requestID(h)
	return corsFor(s.cfg.AllowedOrigins).Handler(h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unavailable"}`)
			return
		}
	}
	fmt.Fprint(w, `{"status":"ok"}`)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("GraphQL server listening", "addr", ln.Addr().String(), "graphiql", "/graphql")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsFor builds the CORS policy. "*" allows any origin without credentials;
// an explicit list allows credentials.
func corsFor(allowed string) *cors.Cors {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept"},
	}

	if strings.TrimSpace(allowed) == "*" {
		opts.AllowedOrigins = []string{"*"}
		return cors.New(opts)
	}

	for _, origin := range strings.Split(allowed, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			opts.AllowedOrigins = append(opts.AllowedOrigins, origin)
		}
	}
	opts.AllowCredentials = true
	return cors.New(opts)
}
