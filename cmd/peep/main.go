package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wtfmahe/PeeP/internal/alert"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/client"
	"github.com/wtfmahe/PeeP/internal/config"
	"github.com/wtfmahe/PeeP/internal/database"
	"github.com/wtfmahe/PeeP/internal/lifecycle"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("client exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.ClientConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer postgresPool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	shared := backend.New(backend.Deps{
		Profiles:    repositories.NewPostgresProfileRepository(postgresPool),
		Friendships: repositories.NewPostgresFriendshipRepository(postgresPool),
		Statuses:    repositories.NewPostgresStatusRepository(postgresPool),
		StatusCache: repositories.NewRedisStatusCache(redisClient, cfg.StatusCacheTTL),
		Peeps:       repositories.NewPostgresPeepRepository(postgresPool),
		Feed:        realtime.NewRedisFeed(redisClient),
		Logger:      logger,
	})

	initial, ok := lifecycle.ParseState(cfg.AppState)
	if !ok {
		return fmt.Errorf("unknown app state %q", cfg.AppState)
	}

	session := client.NewSession(cfg.UserID, client.Options{
		Backend:           shared,
		Sensor:            sensor.ExcludeSelf(sensor.NewFile(cfg.SensorPath, cfg.GrantPath), cfg.OwnPackage),
		Alerts:            alert.NewPresenter(cfg.AlertDuration, printSink(os.Stdout, logger)),
		InitialState:      initial,
		BroadcastInterval: cfg.BroadcastInterval,
		Logger:            logger,
	})
	if err := session.Open(ctx); err != nil {
		return err
	}
	defer session.Close()

	return repl(ctx, session, os.Stdin, os.Stdout)
}
