// Package main implements the moderation worker. It consumes moderation
// requests from Kafka, scores the advertisements, persists the verdicts,
// and routes exhausted or unprocessable messages to the dead-letter topic.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sgladkov/admoderation/internal/config"
	"github.com/sgladkov/admoderation/internal/platform/logger"
	"github.com/sgladkov/admoderation/internal/platform/postgres"
	"github.com/sgladkov/admoderation/internal/queue"
	"github.com/sgladkov/admoderation/internal/scoring"
	"github.com/sgladkov/admoderation/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Worker error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logr, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Worker configuration loaded",
		"kafka_brokers", cfg.Kafka.Brokers,
		"moderation_topic", cfg.Kafka.ModerationTopic,
		"group_id", cfg.Kafka.GroupID,
		"max_attempts", cfg.Worker.MaxAttempts)

	db, err := setupWorkerDatabase(cfg, logr)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logr.Error("Error closing database connection", "error", err)
		}
	}()

	model, err := scoring.LoadOrTrain(cfg.Worker.ModelPath, cfg.Worker.ModelSeed)
	if err != nil {
		return fmt.Errorf("failed to load scoring model: %w", err)
	}
	logr.Info("Scoring model ready", "path", cfg.Worker.ModelPath)

	queueCfg := queue.Config{
		Brokers:         cfg.Kafka.Brokers,
		ModerationTopic: cfg.Kafka.ModerationTopic,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
		GroupID:         cfg.Kafka.GroupID,
	}

	producer := queue.NewProducer(queueCfg, logr)
	defer func() {
		if err := producer.Close(); err != nil {
			logr.Error("Error closing Kafka producer", "error", err)
		}
	}()

	processor := worker.NewProcessor(
		postgres.NewTaskStore(db),
		postgres.NewListingStore(db),
		model,
		producer,
		worker.Config{
			MaxAttempts: cfg.Worker.MaxAttempts,
			RetryDelay:  cfg.Worker.RetryDelay,
		},
		logr,
	)

	consumer := queue.NewConsumer(queueCfg, processor, producer, logr)
	defer func() {
		if err := consumer.Close(); err != nil {
			logr.Error("Error closing Kafka consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logr.Info("Worker started, consuming moderation requests")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	logr.Info("Worker shutdown completed")
	return nil
}
