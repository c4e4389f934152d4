package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"
	"shareit/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.App, "server")
	if err != nil {
		logger.Error().Err(err).Msg("init tracing")
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := database.Open(ctx, cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Msg("init database")
		return err
	}
	defer db.Close()

	eventBus := events.NewEventBus()
	events.RegisterBookingObservers(eventBus, logging.Component(logger, "events"))

	svcLogger := logging.Component(logger, "service")
	services := api.Services{
		Users:    service.NewUserService(db, svcLogger),
		Items:    service.NewItemService(db, db, db, db, db, db, svcLogger),
		Bookings: service.NewBookingService(db, db, db, db, eventBus, svcLogger),
		Requests: service.NewRequestService(db, db, db, svcLogger),
	}

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := api.NewHTTPServer(cfg.Server, services, db, logging.Component(logger, "http"))

	startMetrics(ctx, cfg, logger)

	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "server-main"), closer, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go metrics.Serve(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Msg("core server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("core server stopped")
	return nil
}
