package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/poolhall/tablequeue/internal/api"
	"github.com/poolhall/tablequeue/internal/factory"
	"github.com/poolhall/tablequeue/internal/services/queue"
	mongostorage "github.com/poolhall/tablequeue/internal/storage/mongo"
	redisstorage "github.com/poolhall/tablequeue/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	if hourStr := os.Getenv("QUEUE_CUTOFF_HOUR"); hourStr != "" {
		hour, err := strconv.Atoi(hourStr)
		if err != nil || hour < 0 || hour > 23 {
			logger.Error("QUEUE_CUTOFF_HOUR must be an hour between 0 and 23",
				slog.String("value", hourStr))
			os.Exit(1)
		}
		cfg.QueueConfig = &queue.Config{CutoffHour: hour}
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Configure MongoDB if storage type is mongo
	if cfg.StorageType == factory.StorageTypeMongo {
		mongoURI := os.Getenv("MONGO_URL")
		if mongoURI == "" {
			logger.Error("MONGO_URL required when STORAGE_TYPE=mongo")
			os.Exit(1)
		}
		mongoCfg := mongostorage.DefaultConfig()
		mongoCfg.URI = mongoURI
		if db := os.Getenv("MONGO_DATABASE"); db != "" {
			mongoCfg.Database = db
		}
		cfg.MongoConfig = &mongoCfg
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Registry:        app.Registry,
		QueueController: app.QueueController,
		MatchController: app.MatchController,
		Orchestrator:    app.Orchestrator,
		Notifier:        app.Notifier,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	server := api.NewServer(router, serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
