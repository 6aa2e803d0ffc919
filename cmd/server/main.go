package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wtfmahe/PeeP/internal/config"
	"github.com/wtfmahe/PeeP/internal/database"
	"github.com/wtfmahe/PeeP/internal/httpapi"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/push"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/services"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	pushTimeout     = 10 * time.Second
	limiterTTL      = 10 * time.Minute
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer postgresPool.Close()

	if err := database.EnsureSchema(ctx, postgresPool); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	profiles := repositories.NewPostgresProfileRepository(postgresPool)
	pushTokens := repositories.NewPostgresPushTokenRepository(postgresPool)

	authService := services.NewAuthService(
		repositories.NewPostgresAccountRepository(postgresPool),
		profiles,
		repositories.NewRedisSessionRepository(redisClient),
		pushTokens,
		cfg.JWTSecret,
		cfg.JWTExpiry,
	)
	friendService := services.NewFriendService(
		profiles,
		repositories.NewPostgresFriendshipRepository(postgresPool),
		repositories.NewPostgresStatusRepository(postgresPool),
	)

	feed := realtime.NewRedisFeed(redisClient)
	gateway := push.NewExpoGateway(cfg.PushEndpoint, &http.Client{Timeout: pushTimeout})
	relay := push.NewRelay(profiles, pushTokens, gateway, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:        authService,
		Friends:     friendService,
		Relay:       relay,
		Realtime:    feed,
		AuthLimiter: httpapi.NewKeyedLimiter(cfg.AuthRateLimit, limiterTTL),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return push.NewDispatcher(feed, relay, logger).Run(gctx)
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
