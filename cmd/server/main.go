package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/salesops/crm-import/internal/config"
	"github.com/salesops/crm-import/internal/core"
	"github.com/salesops/crm-import/internal/crm"
	"github.com/salesops/crm-import/internal/logging"
	"github.com/salesops/crm-import/internal/store"
	"github.com/salesops/crm-import/internal/web"
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
		"crm_api", cfg.CRM.BaseURL,
		"redis", cfg.Redis.Addr != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Result retention: Redis when configured, in-memory otherwise.
	var results core.ResultStore
	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		results = redisStore
		slog.Info("result store ready", "backend", "redis", "addr", cfg.Redis.Addr)
	} else {
		results = store.NewMemory()
		slog.Info("result store ready", "backend", "memory")
	}

	client := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIKey, &http.Client{
		Timeout: cfg.CRM.RequestTimeout,
	})

	service := core.NewService(client, results, core.ServiceOptions{
		Timeout:          cfg.Import.Timeout,
		SessionRetention: cfg.Import.SessionRetention,
		ResultTTL:        cfg.Import.ResultTTL,
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown: stop accepting requests, then wait for running
	// imports before exiting.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.ActiveImports(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
