package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
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

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = ratelimit.Close(redisClient) }()
	}
	limiter := initLimiter(cfg, redisClient, logger)

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	gw, err := gateway.New(cfg.Gateway, limiter, logging.Component(logger, "gateway"))
	if err != nil {
		logger.Error().Err(err).Msg("create gateway")
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           gw.Handler(cfg.Gateway.AllowedOrigins),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout + cfg.Gateway.ForwardTimeout,
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go metrics.Serve(ctx, cfg.Gateway.MetricsPort, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("server_url", cfg.Gateway.ServerURL).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("gateway stopped")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("gateway shutdown")
	}
	logger.Info().Msg("gateway stopped")
	return nil
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

	return cfg, logging.Component(baseLogger, "gateway-main"), closer, nil
}

// initRedis returns nil when Redis is not configured or unreachable; the
// limiter then starts on its in-memory fallback.
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Gateway.RateLimit.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	if err := ratelimit.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory rate limits")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initLimiter(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) ratelimit.Limiter {
	rl := cfg.Gateway.RateLimit
	if !rl.Enabled {
		return nil
	}

	memory := ratelimit.NewMemoryLimiter(rl.Requests, rl.Window)
	if client == nil {
		return memory
	}
	return ratelimit.NewFailoverLimiter(
		ratelimit.NewRedisLimiter(client, rl.Requests, rl.Window),
		memory,
		logging.Component(logger, "ratelimit"),
	)
}
