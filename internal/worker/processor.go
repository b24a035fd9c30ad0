// Package worker implements the consumer-side moderation processing: per
// message it resolves the pending task, scores the advertisement, persists
// the verdict, and owns the bounded retry / dead-letter policy around all
// of that.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sgladkov/admoderation/internal/domain"
	"github.com/sgladkov/admoderation/internal/platform/logger"
	"github.com/sgladkov/admoderation/internal/queue"
	"github.com/sgladkov/admoderation/internal/scoring"
	"github.com/sgladkov/admoderation/internal/store"
)

// listingNotFoundMessage is persisted on the task and in the dead-letter
// record when the advertisement vanished before scoring.
const listingNotFoundMessage = "Advertisement not found"

// Scorer produces a violation probability for a feature vector.
// *scoring.Model satisfies it.
type Scorer interface {
	PredictProba(f scoring.Features) float64
}

// Config bounds the retry policy applied around message processing.
type Config struct {
	// MaxAttempts is the total number of processing attempts per message,
	// including the first one.
	MaxAttempts int

	// RetryDelay is the fixed wait between attempts. No backoff, no jitter.
	RetryDelay time.Duration
}

// DefaultConfig returns the production retry policy: 3 total attempts,
// 5 seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		RetryDelay:  5 * time.Second,
	}
}

// Processor handles one moderation request at a time. It implements
// queue.Handler.
type Processor struct {
	tasks    store.TaskStore
	listings store.ListingStore
	scorer   Scorer
	sink     queue.DeadLetterSink
	cfg      Config
	logger   *slog.Logger

	// sleep waits between attempts; overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProcessor creates a processor over the given collaborators.
func NewProcessor(
	tasks store.TaskStore,
	listings store.ListingStore,
	scorer Scorer,
	sink queue.DeadLetterSink,
	cfg Config,
	log *slog.Logger,
) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		tasks:    tasks,
		listings: listings,
		scorer:   scorer,
		sink:     sink,
		cfg:      cfg,
		logger:   log.With(slog.String("component", "moderation_processor")),
		sleep:    sleepCtx,
	}
}

// Handle processes a moderation request with the bounded retry policy.
// Any error from a single attempt is retried up to MaxAttempts total
// attempts with a fixed delay; on exhaustion the latest pending task (if
// one still exists) is marked failed with the final error text and the
// original message is dead-lettered with the attempt count. The "listing
// not found" path inside processOnce dead-letters directly and never
// reaches the retry loop.
func (p *Processor) Handle(ctx context.Context, req queue.ModerationRequest, raw []byte) error {
	log := logger.FromContext(ctx).With(slog.Int64("item_id", req.ItemID))

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		err := p.processOnce(ctx, req, raw)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Error("error processing message",
			"attempt", attempt,
			"max_attempts", p.cfg.MaxAttempts,
			"error", err)

		if attempt < p.cfg.MaxAttempts {
			if sleepErr := p.sleep(ctx, p.cfg.RetryDelay); sleepErr != nil {
				return sleepErr
			}
		}
	}

	// Retry budget exhausted: re-resolve the pending task (it may have
	// changed state since the first attempt), fail it if still there, and
	// always dead-letter the original message.
	p.failLatestPending(ctx, req.ItemID, lastErr.Error())

	if dlqErr := p.sink.PublishDeadLetter(ctx, raw, lastErr.Error(), p.cfg.MaxAttempts); dlqErr != nil {
		log.Error("failed to publish dead letter", "error", dlqErr)
	}

	return fmt.Errorf("giving up after %d attempts: %w", p.cfg.MaxAttempts, lastErr)
}

// processOnce runs the per-message algorithm a single time.
func (p *Processor) processOnce(ctx context.Context, req queue.ModerationRequest, raw []byte) error {
	log := logger.FromContext(ctx).With(slog.Int64("item_id", req.ItemID))

	task, err := p.tasks.LatestPendingForItem(ctx, req.ItemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Nothing pending: the task was already processed by an
			// earlier delivery, or never created. Drop the message.
			log.Warn("no pending task for advertisement, dropping message")
			return nil
		}
		return fmt.Errorf("failed to resolve pending task: %w", err)
	}

	log = log.With(slog.Int64("task_id", task.ID))

	listing, err := p.listings.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrListingNotFound) {
			// Non-retriable: fail the task, dead-letter once, stop.
			p.failTask(ctx, task.ID, listingNotFoundMessage)
			if dlqErr := p.sink.PublishDeadLetter(ctx, raw, listingNotFoundMessage, 1); dlqErr != nil {
				log.Error("failed to publish dead letter", "error", dlqErr)
			}
			log.Warn("advertisement not found, task failed")
			return nil
		}
		return fmt.Errorf("failed to load advertisement: %w", err)
	}

	features := scoring.Extract(
		listing.SellerVerified,
		listing.ImagesQty,
		listing.Description,
		listing.Category,
	)
	probability := p.scorer.PredictProba(features)
	isViolation := scoring.IsViolation(probability)

	err = p.tasks.UpdateResult(ctx, task.ID, domain.CompletedResult(isViolation, probability))
	if err != nil {
		if errors.Is(err, store.ErrAlreadyProcessed) {
			log.Warn("task finished by another delivery, keeping existing result")
			return nil
		}
		return fmt.Errorf("failed to store moderation result: %w", err)
	}

	log.Info("processed moderation request",
		"is_violation", isViolation,
		"probability", probability)
	return nil
}

// failTask marks a specific task failed, tolerating a lost race with a
// concurrent completion.
func (p *Processor) failTask(ctx context.Context, taskID int64, message string) {
	err := p.tasks.UpdateResult(ctx, taskID, domain.FailedResult(message))
	if err != nil && !errors.Is(err, store.ErrAlreadyProcessed) {
		logger.FromContext(ctx).Error("failed to mark task failed",
			"task_id", taskID,
			"error", err)
	}
}

// failLatestPending marks whatever pending task currently exists for the
// advertisement as failed. Finding none is fine: the task may have been
// completed or removed while we were retrying.
func (p *Processor) failLatestPending(ctx context.Context, itemID int64, message string) {
	task, err := p.tasks.LatestPendingForItem(ctx, itemID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContext(ctx).Error("failed to re-resolve pending task",
				"item_id", itemID,
				"error", err)
		}
		return
	}
	p.failTask(ctx, task.ID, message)
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
