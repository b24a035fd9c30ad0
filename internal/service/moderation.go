package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sgladkov/admoderation/internal/cache"
	"github.com/sgladkov/admoderation/internal/domain"
	"github.com/sgladkov/admoderation/internal/scoring"
	"github.com/sgladkov/admoderation/internal/store"
)

// Scorer produces a violation probability for a feature vector.
// *scoring.Model satisfies it.
type Scorer interface {
	PredictProba(f scoring.Features) float64
}

// PredictionCache is the read-through cache for scored advertisements.
// *cache.PredictionCache satisfies it. All operations are best-effort.
type PredictionCache interface {
	Get(ctx context.Context, itemID int64) *cache.Entry
	Set(ctx context.Context, itemID int64, isViolation bool, probability float64)
	Invalidate(ctx context.Context, itemID int64)
}

// Publisher submits moderation requests to the message queue.
// *queue.Producer satisfies it.
type Publisher interface {
	PublishModerationRequest(ctx context.Context, itemID int64) error
}

// PredictionInput carries caller-supplied advertisement fields for direct
// scoring, bypassing the database.
type PredictionInput struct {
	SellerID       int64
	VerifiedSeller bool
	ItemID         int64
	Name           string
	Description    string
	Category       int
	ImagesQty      int
}

// Prediction is a moderation verdict for an advertisement.
type Prediction struct {
	IsViolation bool
	Probability float64
}

// ModerationService provides the synchronous and asynchronous moderation
// operations exposed over HTTP.
type ModerationService interface {
	// Predict scores an advertisement from caller-supplied fields without
	// touching the database or the cache.
	Predict(ctx context.Context, input PredictionInput) Prediction

	// PredictListing scores a stored advertisement, serving repeated calls
	// from the prediction cache.
	PredictListing(ctx context.Context, itemID int64) (Prediction, error)

	// EnqueueModeration creates a pending moderation task for the
	// advertisement and publishes a moderation request for the workers.
	EnqueueModeration(ctx context.Context, itemID int64) (*domain.ModerationTask, error)

	// Result returns the moderation task in its current state.
	Result(ctx context.Context, taskID int64) (*domain.ModerationTask, error)

	// CloseListing removes the advertisement together with its moderation
	// tasks and drops any cached prediction for it.
	CloseListing(ctx context.Context, itemID int64) error
}

// moderationService implements ModerationService.
type moderationService struct {
	db        *sql.DB
	tasks     store.TaskStore
	listings  store.ListingStore
	scorer    Scorer
	cache     PredictionCache
	publisher Publisher
	logger    *slog.Logger

	// runTx executes fn inside a database transaction; overridable in tests.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewModerationService creates a ModerationService over the given
// collaborators. It returns an error if any required dependency is nil.
func NewModerationService(
	db *sql.DB,
	tasks store.TaskStore,
	listings store.ListingStore,
	scorer Scorer,
	predictions PredictionCache,
	publisher Publisher,
	log *slog.Logger,
) (ModerationService, error) {
	if tasks == nil {
		return nil, &ModerationServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if listings == nil {
		return nil, &ModerationServiceError{Operation: "create_service", Message: "listings cannot be nil"}
	}
	if scorer == nil {
		return nil, &ModerationServiceError{Operation: "create_service", Message: "scorer cannot be nil"}
	}
	if predictions == nil {
		return nil, &ModerationServiceError{Operation: "create_service", Message: "predictions cannot be nil"}
	}
	if publisher == nil {
		return nil, &ModerationServiceError{Operation: "create_service", Message: "publisher cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	s := &moderationService{
		db:        db,
		tasks:     tasks,
		listings:  listings,
		scorer:    scorer,
		cache:     predictions,
		publisher: publisher,
		logger:    log.With(slog.String("component", "moderation_service")),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s, nil
}

func (s *moderationService) Predict(ctx context.Context, input PredictionInput) Prediction {
	features := scoring.Extract(
		input.VerifiedSeller,
		input.ImagesQty,
		input.Description,
		input.Category,
	)
	probability := s.scorer.PredictProba(features)
	return Prediction{
		IsViolation: scoring.IsViolation(probability),
		Probability: probability,
	}
}

func (s *moderationService) PredictListing(ctx context.Context, itemID int64) (Prediction, error) {
	if entry := s.cache.Get(ctx, itemID); entry != nil {
		s.logger.Debug("serving prediction from cache", "item_id", itemID)
		return Prediction{IsViolation: entry.IsViolation, Probability: entry.Probability}, nil
	}

	listing, err := s.listings.GetByID(ctx, itemID)
	if err != nil {
		return Prediction{}, NewModerationServiceError(
			"predict", "failed to load advertisement", err)
	}

	prediction := s.Predict(ctx, PredictionInput{
		VerifiedSeller: listing.SellerVerified,
		ImagesQty:      listing.ImagesQty,
		Description:    listing.Description,
		Category:       listing.Category,
	})

	s.cache.Set(ctx, itemID, prediction.IsViolation, prediction.Probability)

	s.logger.Info("scored advertisement",
		"item_id", itemID,
		"is_violation", prediction.IsViolation,
		"probability", prediction.Probability)
	return prediction, nil
}

func (s *moderationService) EnqueueModeration(ctx context.Context, itemID int64) (*domain.ModerationTask, error) {
	// Reject requests for advertisements that do not exist before creating
	// any task row.
	if _, err := s.listings.GetByID(ctx, itemID); err != nil {
		return nil, NewModerationServiceError(
			"enqueue", "failed to load advertisement", err)
	}

	task, err := s.tasks.Create(ctx, itemID)
	if err != nil {
		return nil, NewModerationServiceError(
			"enqueue", "failed to create moderation task", err)
	}

	// A publish failure leaves the task pending; the caller sees the error
	// and may re-submit, which abandons this task in favor of a newer one.
	if err := s.publisher.PublishModerationRequest(ctx, itemID); err != nil {
		s.logger.Error("failed to publish moderation request",
			"item_id", itemID,
			"task_id", task.ID,
			"error", err)
		return nil, NewModerationServiceError(
			"enqueue", "failed to publish moderation request", err)
	}

	s.logger.Info("moderation task enqueued",
		"item_id", itemID,
		"task_id", task.ID)
	return task, nil
}

func (s *moderationService) Result(ctx context.Context, taskID int64) (*domain.ModerationTask, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewModerationServiceError(
			"result", "failed to load moderation task", err)
	}
	return task, nil
}

func (s *moderationService) CloseListing(ctx context.Context, itemID int64) error {
	// The task rows and the advertisement go together; a partial close must
	// not leave orphaned pending tasks behind.
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).DeleteForItem(ctx, itemID); err != nil {
			return err
		}
		closed, err := s.listings.WithTx(tx).Close(ctx, itemID)
		if err != nil {
			return err
		}
		if !closed {
			return ErrAdvertisementNotFound
		}
		return nil
	})
	if err != nil {
		return NewModerationServiceError(
			"close", "failed to close advertisement", err)
	}

	s.cache.Invalidate(ctx, itemID)

	s.logger.Info("advertisement closed", "item_id", itemID)
	return nil
}
