package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/config"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/logging"
	"github.com/JonMunkholm/insightboard/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"session_ttl", cfg.Session.TTL.String(),
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	service := core.NewService(serviceOptions(cfg))
	server := web.NewServer(service, cfg)

	slog.Info("chart types registered", "count", len(chart.Types()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartJanitor(gctx, core.JanitorConfig{
			TTL:      cfg.Session.TTL,
			Interval: cfg.Session.SweepInterval,
		})
		return nil
	})

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.LimiterStatus(); st.Active > 0 {
			slog.Info("waiting for ingests to complete", "active", st.Active)
			if err := service.WaitForIngests(shutdownCtx); err != nil {
				slog.Warn("ingests did not complete in time", "error", err)
			} else {
				slog.Info("all ingests completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// serviceOptions maps configuration onto the core service.
func serviceOptions(cfg *config.Config) core.Options {
	return core.Options{
		MaxFileSize:         cfg.Upload.MaxFileSize,
		MaxConcurrent:       cfg.Upload.MaxConcurrent,
		MaxWait:             cfg.Upload.MaxWaitTime,
		Timeout:             cfg.Upload.Timeout,
		MaxSessions:         cfg.Session.MaxSessions,
		ShortHeaderFallback: cfg.Upload.ShortHeaderFallback,
		Chart: chart.Options{
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
		},
	}
}
