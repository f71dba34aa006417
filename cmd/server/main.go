package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/reelistapp/reelist/internal/catalog"
	"github.com/reelistapp/reelist/internal/config"
	"github.com/reelistapp/reelist/internal/importer"
	"github.com/reelistapp/reelist/internal/logging"
	"github.com/reelistapp/reelist/internal/metrics"
	"github.com/reelistapp/reelist/internal/store"
	"github.com/reelistapp/reelist/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"catalog_enabled", cfg.Catalog.APIKey != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Catalog enrichment is optional; without an API key every imported
	// title becomes a stub entry.
	var cat importer.Catalog
	if cfg.Catalog.APIKey != "" {
		client, err := catalog.NewClient(cfg.Catalog.APIKey, cfg.Catalog.Timeout, slog.Default())
		if err != nil {
			slog.Error("failed to create catalog client", "error", err)
			os.Exit(1)
		}
		cat = client
	} else {
		slog.Warn("no catalog API key configured, imported titles will be stubs")
	}

	met := metrics.New()

	imports := importer.NewServiceFor(st, cat, met,
		cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime, slog.Default())

	server := web.NewServer(st, imports, cat, met, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight import runs finish (with timeout)
		if active := imports.ActiveRuns(); active > 0 {
			slog.Info("waiting for import runs to complete", "active", active)
			if err := imports.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("import runs did not complete in time", "error", err)
			} else {
				slog.Info("all import runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
