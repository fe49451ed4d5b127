package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cpx/internal/server"
	"github.com/desertthunder/cpx/internal/shared"
)

// Serve runs the playlist API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}
	if err := r.config.ValidateAuth(); err != nil {
		return err
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(r.config.Server, r.newRouter(db), shared.WithLogger(r.logger, "component", "server"))
	return srv.Run(ctx)
}

// newRouter wires the playlist API: public health check, then authenticated
// (and optionally rate limited) playlist routes under the configured prefix.
func (r *Runner) newRouter(db *sql.DB) *server.Router {
	logger := shared.WithLogger(r.logger, "component", "http")
	stores := r.stores(db)

	router := server.NewRouter(r.config.Server.Prefix, server.RequestLogger(logger))
	router.Handle(http.MethodGet, "/healthz", server.HealthHandler(db))

	middlewares := []server.Middleware{
		server.Authenticator(server.NewTokenIssuer(r.config.Auth), logger),
	}
	if r.config.RateLimit.Enabled {
		middlewares = append(middlewares, server.NewRateLimiter(r.config.RateLimit).Middleware())
	}

	logger.Debug("playlist routes ready", "prefix", r.config.Server.Prefix, "name_scope", stores.playlists.NameScope())
	router.Handler(server.NewPlaylistHandler(stores.playlists, stores.links, r.logger), middlewares...)
	return router
}
