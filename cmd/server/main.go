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

	"github.com/JonMunkholm/booksdash/internal/config"
	"github.com/JonMunkholm/booksdash/internal/core"
	"github.com/JonMunkholm/booksdash/internal/country"
	"github.com/JonMunkholm/booksdash/internal/logging"
	_ "github.com/JonMunkholm/booksdash/internal/source" // Register data sources
	"github.com/JonMunkholm/booksdash/internal/web"
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
		"data_source", cfg.Data.Source,
		"render_max_concurrent", cfg.Render.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	src, err := core.NewSource(cfg.Data.Source, core.SourceConfig{
		Path:  cfg.Data.Path,
		URL:   cfg.Data.URL,
		Table: cfg.Data.Table,
	})
	if err != nil {
		fatal("failed to create data source", err)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	raw, err := core.NewLoader(src).Load(loadCtx)
	cancelLoad()
	if err != nil {
		fatal("failed to load dataset", err)
	}

	lookup := country.Default()
	slog.Info("country registry ready", "names", lookup.Len())

	dataset := core.NewDataset(src.Name(), raw, lookup)
	server := web.NewServer(cfg, dataset)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}

// fatal logs err with its user-facing code and exits.
func fatal(msg string, err error) {
	slog.Error(msg,
		"error", err,
		"code", core.MapError(err).Code,
		"hint", core.FormatUserError(err),
	)
	os.Exit(1)
}
