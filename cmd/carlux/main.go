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

	"github.com/carlux/carlux-inventory/internal/app"
	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/dashboard"
	dashboardhttp "github.com/carlux/carlux-inventory/internal/dashboard/http"
	"github.com/carlux/carlux-inventory/internal/observability"
	"github.com/carlux/carlux-inventory/internal/platform/cache"
	"github.com/carlux/carlux-inventory/internal/shared"
	"github.com/carlux/carlux-inventory/internal/view"
)

const sessionCookieName = "carlux_session"

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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookieName, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	catalogClient := catalog.NewClient(cfg.CatalogURL, nil)
	shellLogger := logger.With(slog.String("component", "dashboard"))
	registry := dashboard.NewRegistry(func() *dashboard.Shell {
		return dashboard.New(catalogClient, dashboard.Options{
			Logger:      shellLogger,
			Recorder:    metrics,
			SearchDelay: cfg.SearchDebounce,
		})
	}, cfg.DashboardIdleTTL, logger, metrics)
	go registry.Run(ctx, time.Minute)
	defer registry.Close()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		DashboardHandler: dashboardhttp.NewHandler(logger, registry, templates, csrfManager),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("catalog", catalogClient.Endpoint()))
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
