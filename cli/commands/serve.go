package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/pgql/cli/internal/config"
	"github.com/satishbabariya/pgql/graph"
	"github.com/satishbabariya/pgql/internal/debug"
	"github.com/satishbabariya/pgql/query/executor"
	"github.com/satishbabariya/pgql/runtime/client"
	"github.com/satishbabariya/pgql/server"
	"github.com/satishbabariya/pgql/telemetry"
)

// NewServeCommand creates the serve command.
func NewServeCommand(a *app) *cobra.Command {
	var (
		addr     string
		url      string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL server",
		Long:  "Connect to the database and serve the GraphQL API with GraphiQL at /graphql",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if url != "" {
				cfg.Database.URL = url
			}
			if provider != "" {
				cfg.Database.Provider = provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.loader.Watch(func(next *config.Config, err error) {
				if err != nil {
					debug.Warn("config reload failed", "error", err)
					return
				}
				if err := debug.SetLevel(next.Log.Level); err != nil {
					debug.Warn("ignoring log level", "level", next.Log.Level, "error", err)
					return
				}
				debug.Info("log level changed", "level", next.Log.Level)
			})

			return runServe(ctx, &cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr, :8000)")
	cmd.Flags().StringVar(&url, "url", "", "Database URL (default DATABASE_URL)")
	cmd.Flags().StringVar(&provider, "provider", "", "Database provider (default database.provider)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	c, err := client.Open(ctx, client.Options{
		Provider: cfg.Database.Provider,
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.CheckServerVersion(ctx); err != nil {
		debug.Warn("could not read server version", "error", err)
	}

	stats := telemetry.NewCollector()
	exec := executor.New(c.DB(), c.Dialect(),
		executor.WithPagination(executor.Pagination{
			DefaultLimit: cfg.Query.DefaultLimit,
			MaxLimit:     cfg.Query.MaxLimit,
		}),
		executor.WithMiddleware(
			executor.LoggingMiddleware(debug.Logger()),
			stats.Middleware(),
		),
	)

	schema, err := graph.NewSchema(exec)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Stats:          stats,
	}, schema, c.DB())

	return srv.ListenAndServe(ctx)
}
