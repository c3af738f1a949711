package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesdash/salesdash/internal/app"
	"github.com/salesdash/salesdash/internal/dashboard"
	dashboardhttp "github.com/salesdash/salesdash/internal/dashboard/http"
	"github.com/salesdash/salesdash/internal/dashboard/ui"
	"github.com/salesdash/salesdash/internal/observability"
	"github.com/salesdash/salesdash/internal/platform/cache"
	"github.com/salesdash/salesdash/internal/source"
	"github.com/salesdash/salesdash/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var redisClient *redis.Client
	if cfg.SharedCache() {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", slog.Any("error", err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	metrics := observability.NewMetrics()

	fetchCache := source.NewCache(redisClient, cfg.CacheTTL).WithLoadTimeout(cfg.SourceTimeout)
	if err := fetchCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	sourceClient := source.NewClient(cfg.SourceURL, cfg.SourceTimeout)
	sourceService := source.NewService(sourceClient, fetchCache, metrics)
	logger.Info("sales source configured",
		slog.String("url", sourceClient.BaseURL()),
		slog.Bool("shared_cache", fetchCache.Shared()),
		slog.Duration("cache_ttl", cfg.CacheTTL),
	)

	dashboardService := dashboard.NewService(sourceService)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	renderer := ui.Renderer{}
	dashboardHandler := dashboardhttp.NewHandler(
		logger,
		dashboardService,
		templates,
		renderer,
		renderer,
		renderer,
		dashboardhttp.Options{SheetName: cfg.ExportSheetName},
	)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		DashboardHandler: dashboardHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
