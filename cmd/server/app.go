package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sgladkov/admoderation/internal/cache"
	"github.com/sgladkov/admoderation/internal/config"
	"github.com/sgladkov/admoderation/internal/platform/postgres"
	"github.com/sgladkov/admoderation/internal/queue"
	"github.com/sgladkov/admoderation/internal/scoring"
	"github.com/sgladkov/admoderation/internal/service"
)

// application holds the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	redisClient *redis.Client
	producer    *queue.Producer

	moderationService service.ModerationService
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging, and the database connection must be
// established before calling this.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	taskStore := postgres.NewTaskStore(db)
	listingStore := postgres.NewListingStore(db)

	model, err := scoring.LoadOrTrain(cfg.Worker.ModelPath, cfg.Worker.ModelSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring model: %w", err)
	}
	logger.Info("Scoring model ready", "path", cfg.Worker.ModelPath)

	app.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	predictions := cache.NewPredictionCache(app.redisClient, logger)

	app.producer = queue.NewProducer(queue.Config{
		Brokers:         cfg.Kafka.Brokers,
		ModerationTopic: cfg.Kafka.ModerationTopic,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
		GroupID:         cfg.Kafka.GroupID,
	}, logger)

	app.moderationService, err = service.NewModerationService(
		db,
		taskStore,
		listingStore,
		model,
		predictions,
		app.producer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create moderation service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.producer != nil {
		if err := app.producer.Close(); err != nil {
			app.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing Redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
