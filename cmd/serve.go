package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/soundalike/internal/metrics"
	"github.com/desertthunder/soundalike/internal/server"
	"github.com/desertthunder/soundalike/internal/web"
)

// Serve runs the HTTP server until the process receives an interrupt.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	reg := metrics.NewServerRegistry()
	r.metrics = metrics.New(reg)

	handler := web.NewRouter(r.newEngine(repo), web.Options{
		Logger:   r.logger,
		Metrics:  r.metrics,
		Gatherer: reg,
	})

	if err := server.Run(ctx, cfg.Addr(), handler, r.logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
