package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poolhall/tablequeue/internal/dependencies/clock"
	"github.com/poolhall/tablequeue/internal/notify"
	"github.com/poolhall/tablequeue/internal/services/match"
	"github.com/poolhall/tablequeue/internal/services/orchestrator"
	"github.com/poolhall/tablequeue/internal/services/queue"
	"github.com/poolhall/tablequeue/internal/services/registry"
	"github.com/poolhall/tablequeue/internal/storage"
	"github.com/poolhall/tablequeue/internal/storage/memory"
	mongostorage "github.com/poolhall/tablequeue/internal/storage/mongo"
	redisstorage "github.com/poolhall/tablequeue/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeMongo  = "mongo"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Notifier notify.Notifier

	// Services
	Registry        *registry.Service
	QueueController *queue.Controller
	MatchController *match.Controller
	Orchestrator    *orchestrator.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "mongo")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MongoConfig holds MongoDB connection settings (required if StorageType is "mongo")
	MongoConfig *mongostorage.Config
	// QueueConfig holds queue behavior settings (optional)
	// If nil, defaults to queue.DefaultConfig()
	QueueConfig *queue.Config
}

// New creates a new application with all dependencies wired. The singleton
// queue document is created at startup if it does not exist yet; more than
// one queue document is a fatal configuration error.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		mongoStore, err := mongostorage.New(*cfg.MongoConfig)
		if err != nil {
			return nil, err
		}
		store = mongoStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'mongo'")
	}

	// Self-heal the singleton queue document once at startup, not per access
	if err := store.EnsureQueue(ctx); err != nil {
		return nil, err
	}

	// A nil pointer means defaults; CutoffHour 0 is a valid setting (midnight)
	queueCfg := queue.DefaultConfig()
	if cfg.QueueConfig != nil {
		queueCfg = *cfg.QueueConfig
	}

	return newWithDependencies(store, clock.New(), queueCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, queueCfg queue.Config, logger *slog.Logger) *App {
	registryService := registry.New(store, clk, logger)
	queueController := queue.NewController(store, clk, queueCfg, logger)
	matchController := match.NewController(store, clk, logger)
	orchestratorService := orchestrator.New(registryService, queueController, matchController, logger)
	notifier := notify.NewLogNotifier(logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Notifier:        notifier,
		Registry:        registryService,
		QueueController: queueController,
		MatchController: matchController,
		Orchestrator:    orchestratorService,
	}
}
