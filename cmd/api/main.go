package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jobportal/jobportal/internal/config"
	"github.com/jobportal/jobportal/internal/infra"
	"github.com/jobportal/jobportal/internal/logging"
	"github.com/jobportal/jobportal/internal/server"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	var backends server.Backends
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer db.Close()

		if err := infra.Migrate(ctx, db); err != nil {
			logger.Fatal().Err(err).Msg("migrate postgres")
		}
		backends.DB = db

		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn().Err(err).Msg("close redis")
			}
		}()
		backends.Cache = cache

	case config.BackendMongo:
		client, err := infra.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect mongo")
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("disconnect mongo")
			}
		}()
		backends.Mongo = client

		// Redis is optional here and only backs throttling and idempotency.
		if cfg.RedisURL != "" {
			cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				logger.Fatal().Err(err).Msg("connect redis")
			}
			defer cache.Close()
			backends.Cache = cache
		}
	}

	srv, err := server.New(cfg, backends, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	logger.Info().
		Str("addr", cfg.Address()).
		Str("backend", cfg.StoreBackend).
		Str("mail_driver", cfg.Mail.Driver).
		Msg("server starting")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-srvErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}

	logger.Info().Msg("server exited cleanly")
}
