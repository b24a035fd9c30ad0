package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sgladkov/admoderation/internal/platform/logger"
)

// Handler processes one decoded moderation request. Implementations own
// their failure handling (retries, dead-lettering, task bookkeeping); an
// error returned here is logged by the consumer but the message is still
// committed, never re-queued.
type Handler interface {
	Handle(ctx context.Context, req ModerationRequest, raw []byte) error
}

// DeadLetterSink records messages that cannot be processed at all.
type DeadLetterSink interface {
	PublishDeadLetter(ctx context.Context, original []byte, cause string, retryCount int) error
}

// messageReader abstracts *kafka.Reader for testing.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs the moderation worker's consume loop. It joins a fixed
// consumer group so multiple worker processes share partitions without
// double-processing, and it commits an offset only after the message has
// reached a terminal outcome (processed, dropped, or dead-lettered) —
// at-least-once delivery with no acknowledgment skipping.
type Consumer struct {
	reader  messageReader
	handler Handler
	sink    DeadLetterSink
	logger  *slog.Logger
}

// NewConsumer creates a consumer for the moderation topic in the
// configured consumer group.
func NewConsumer(cfg Config, handler Handler, sink DeadLetterSink, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.ModerationTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     250 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})

	return newConsumer(reader, handler, sink, log)
}

func newConsumer(reader messageReader, handler Handler, sink DeadLetterSink, log *slog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		handler: handler,
		sink:    sink,
		logger:  log.With(slog.String("component", "kafka_consumer")),
	}
}

// Run consumes messages until the context is cancelled or the reader is
// closed. Within a partition messages are handled strictly one at a time,
// in arrival order.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("worker started, consuming messages")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("consumer stopping")
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// The message was fully handled; a failed commit means it may
			// be redelivered, which the handler tolerates.
			c.logger.Warn("failed to commit offset",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	log := c.logger.With(
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	ctx = logger.WithLogger(ctx, log)

	req, err := DecodeModerationRequest(msg.Value)
	if err != nil {
		// Malformed payload: dead-letter immediately, nothing to retry.
		log.Error("rejecting malformed message", "error", err)
		if dlqErr := c.sink.PublishDeadLetter(ctx, msg.Value, err.Error(), 1); dlqErr != nil {
			log.Error("failed to dead-letter malformed message", "error", dlqErr)
		}
		return
	}

	if err := c.handler.Handle(ctx, req, msg.Value); err != nil {
		// The handler has already retried and dead-lettered as needed.
		log.Error("message handling failed", "item_id", req.ItemID, "error", err)
	}
}

// Close shuts down the underlying reader, releasing the group membership.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
