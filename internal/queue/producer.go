package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// Config holds the Kafka wiring shared by the producer and consumer.
type Config struct {
	Brokers         []string
	ModerationTopic string
	DeadLetterTopic string
	GroupID         string
}

// Default topic and group names.
const (
	DefaultModerationTopic = "moderation"
	DefaultDeadLetterTopic = "moderation_dlq"
	DefaultGroupID         = "moderation-workers"
)

// Producer publishes moderation requests and dead-letter records.
// It is the Dispatcher of the pipeline and doubles as the worker's
// dead-letter sink; both topics share one connection pool.
type Producer struct {
	moderation *kafka.Writer
	deadLetter *kafka.Writer
	logger     *slog.Logger
}

// NewProducer creates a producer for the moderation and dead-letter topics.
// Writes are synchronous: PublishModerationRequest does not return until
// the broker acknowledges the message.
func NewProducer(cfg Config, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
	}

	return &Producer{
		moderation: newWriter(cfg.ModerationTopic),
		deadLetter: newWriter(cfg.DeadLetterTopic),
		logger:     logger.With(slog.String("component", "kafka_producer")),
	}
}

// PublishModerationRequest dispatches one moderation request for the
// advertisement and waits for broker acknowledgment. The item id keys the
// message so requests for one advertisement land on one partition.
func (p *Producer) PublishModerationRequest(ctx context.Context, itemID int64) error {
	req := NewModerationRequest(itemID)
	payload, err := req.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode moderation request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(itemID, 10)),
		Value: payload,
	}
	if err := p.moderation.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish moderation request: %w", err)
	}

	p.logger.Debug("published moderation request", "item_id", itemID)
	return nil
}

// PublishDeadLetter records a message that could not be processed, with
// the causing error and the number of attempts made. Failures here are
// returned but callers treat them as log-only: losing a dead-letter record
// hurts observability, not the pipeline.
func (p *Producer) PublishDeadLetter(ctx context.Context, original []byte, cause string, retryCount int) error {
	record := NewDeadLetter(original, cause, retryCount)
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	if err := p.deadLetter.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("failed to publish dead letter: %w", err)
	}

	p.logger.Info("published dead letter",
		"error", cause,
		"retry_count", retryCount)
	return nil
}

// Close flushes and closes both writers.
func (p *Producer) Close() error {
	var firstErr error
	if err := p.moderation.Close(); err != nil {
		firstErr = err
	}
	if err := p.deadLetter.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
