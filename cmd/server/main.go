package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"gdprkv/internal/app"
	"gdprkv/internal/platform/config"
	"gdprkv/internal/platform/httpserver"
	"gdprkv/internal/platform/logger"
	"gdprkv/internal/platform/scheduler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	jobs := scheduler.New(log)
	if err := a.Schedule(jobs); err != nil {
		return fmt.Errorf("schedule jobs: %w", err)
	}

	srv := httpserver.New(cfg.Server.Addr, a.Router())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		jobs.Start()
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return jobs.Stop(stopCtx)
	})

	log.Info("starting gdprkv", "addr", cfg.Server.Addr, "scheduled_jobs", len(jobs.Jobs()))
	return g.Wait()
}
