// Package main implements the entry point for the moderation API server,
// which scores marketplace advertisements synchronously and hands
// asynchronous moderation requests to the worker fleet via Kafka.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/sgladkov/admoderation/internal/config"
	"github.com/sgladkov/admoderation/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	cfg, logr, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	db, err := setupAppDatabase(cfg, logr)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	if err := runMigrations(db, logr); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app, err := newApplication(cfg, logr, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logr, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"kafka_brokers", cfg.Kafka.Brokers,
		"moderation_topic", cfg.Kafka.ModerationTopic)

	return cfg, logr, nil
}
