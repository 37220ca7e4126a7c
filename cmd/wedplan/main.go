package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wedplan/internal/cli"
	"wedplan/internal/config"
	apphttp "wedplan/internal/http"
	applog "wedplan/internal/log"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate)

	flushTraces := cli.SetupTracing(context.Background(), logger, cfg, "wedplan")
	res := cli.OpenBackend(context.Background(), logger, cfg, true)

	srv := apphttp.NewServer(":"+cfg.Port, res.Services(), res.Store, apphttp.Options{
		SessionTTL:         cfg.SessionTTL,
		SessionCacheSize:   cfg.SessionCacheSize,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
		flushTraces()
	})

	logger.Info("Starting wedplan server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
