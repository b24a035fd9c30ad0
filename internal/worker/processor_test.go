package worker

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgladkov/admoderation/internal/domain"
	"github.com/sgladkov/admoderation/internal/queue"
	"github.com/sgladkov/admoderation/internal/scoring"
	"github.com/sgladkov/admoderation/internal/store"
)

// mockTaskStore implements store.TaskStore with configurable behavior.
type mockTaskStore struct {
	latestPendingFn func(itemID int64) (*domain.ModerationTask, error)
	updateFn        func(taskID int64, result domain.TaskResult) error

	updates []recordedUpdate
}

type recordedUpdate struct {
	taskID int64
	result domain.TaskResult
}

func (m *mockTaskStore) Create(ctx context.Context, itemID int64) (*domain.ModerationTask, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskStore) GetByID(ctx context.Context, taskID int64) (*domain.ModerationTask, error) {
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) UpdateResult(ctx context.Context, taskID int64, result domain.TaskResult) error {
	m.updates = append(m.updates, recordedUpdate{taskID: taskID, result: result})
	if m.updateFn != nil {
		return m.updateFn(taskID, result)
	}
	return nil
}

func (m *mockTaskStore) LatestPendingForItem(ctx context.Context, itemID int64) (*domain.ModerationTask, error) {
	if m.latestPendingFn != nil {
		return m.latestPendingFn(itemID)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) DeleteForItem(ctx context.Context, itemID int64) error { return nil }

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

// mockListingStore implements store.ListingStore.
type mockListingStore struct {
	getFn func(itemID int64) (*domain.Listing, error)
}

func (m *mockListingStore) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	return nil, errors.New("not implemented")
}

func (m *mockListingStore) GetByID(ctx context.Context, itemID int64) (*domain.Listing, error) {
	if m.getFn != nil {
		return m.getFn(itemID)
	}
	return nil, store.ErrListingNotFound
}

func (m *mockListingStore) Close(ctx context.Context, itemID int64) (bool, error) {
	return false, errors.New("not implemented")
}

func (m *mockListingStore) WithTx(tx *sql.Tx) store.ListingStore { return m }

// stubScorer returns a fixed probability.
type stubScorer struct {
	probability float64
	calls       int
}

func (s *stubScorer) PredictProba(f scoring.Features) float64 {
	s.calls++
	return s.probability
}

// recordingSink captures dead-letter publications.
type recordingSink struct {
	records []queue.DeadLetter
}

func (s *recordingSink) PublishDeadLetter(ctx context.Context, original []byte, cause string, retryCount int) error {
	s.records = append(s.records, queue.NewDeadLetter(original, cause, retryCount))
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func pendingTask(id, itemID int64) *domain.ModerationTask {
	return &domain.ModerationTask{
		ID:        id,
		ItemID:    itemID,
		Status:    domain.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func newTestProcessor(
	tasks *mockTaskStore,
	listings *mockListingStore,
	scorer Scorer,
	sink *recordingSink,
) (*Processor, *[]time.Duration) {
	cfg := Config{MaxAttempts: 3, RetryDelay: 5 * time.Second}
	p := NewProcessor(tasks, listings, scorer, sink, cfg, testLogger())

	// Record retry waits instead of actually sleeping.
	var slept []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func request(itemID int64) (queue.ModerationRequest, []byte) {
	req := queue.NewModerationRequest(itemID)
	raw, _ := req.Encode()
	return req, raw
}

func TestHandleSuccess(t *testing.T) {
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(42, itemID), nil
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			return &domain.Listing{
				ID:             itemID,
				SellerID:       1,
				Name:           "Road bike",
				Description:    strings.Repeat("a very detailed description ", 30),
				Category:       3,
				ImagesQty:      8,
				SellerVerified: true,
			}, nil
		},
	}
	scorer := &stubScorer{probability: 0.3}
	sink := &recordingSink{}
	p, slept := newTestProcessor(tasks, listings, scorer, sink)

	req, raw := request(7)
	require.NoError(t, p.Handle(context.Background(), req, raw))

	require.Len(t, tasks.updates, 1)
	assert.Equal(t, int64(42), tasks.updates[0].taskID)
	assert.Equal(t, domain.TaskStatusCompleted, tasks.updates[0].result.Status)
	assert.False(t, *tasks.updates[0].result.IsViolation)
	assert.InDelta(t, 0.3, *tasks.updates[0].result.Probability, 1e-9)

	assert.Equal(t, 1, scorer.calls)
	assert.Empty(t, sink.records)
	assert.Empty(t, *slept)
}

func TestHandleFlagsViolationAtThreshold(t *testing.T) {
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(1, itemID), nil
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			return &domain.Listing{ID: itemID, SellerID: 2, Name: "X", Description: "Short", Category: 5}, nil
		},
	}
	sink := &recordingSink{}
	p, _ := newTestProcessor(tasks, listings, &stubScorer{probability: 0.5}, sink)

	req, raw := request(3)
	require.NoError(t, p.Handle(context.Background(), req, raw))

	require.Len(t, tasks.updates, 1)
	assert.True(t, *tasks.updates[0].result.IsViolation)
}

func TestHandleDropsMessageWithoutPendingTask(t *testing.T) {
	tasks := &mockTaskStore{} // LatestPendingForItem returns ErrTaskNotFound
	listings := &mockListingStore{}
	sink := &recordingSink{}
	p, slept := newTestProcessor(tasks, listings, &stubScorer{}, sink)

	req, raw := request(1)
	require.NoError(t, p.Handle(context.Background(), req, raw))

	// Idempotent drop: no store writes, no dead letter, no retries.
	assert.Empty(t, tasks.updates)
	assert.Empty(t, sink.records)
	assert.Empty(t, *slept)
}

func TestHandleListingNotFoundBypassesRetry(t *testing.T) {
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(42, itemID), nil
		},
	}
	listings := &mockListingStore{} // GetByID returns ErrListingNotFound
	sink := &recordingSink{}
	p, slept := newTestProcessor(tasks, listings, &stubScorer{}, sink)

	req, raw := request(8)
	require.NoError(t, p.Handle(context.Background(), req, raw))

	// Single attempt: the task fails with the fixed message.
	require.Len(t, tasks.updates, 1)
	assert.Equal(t, domain.TaskStatusFailed, tasks.updates[0].result.Status)
	assert.Equal(t, "Advertisement not found", *tasks.updates[0].result.ErrorMessage)

	// Exactly one dead letter with retry_count 1, and no retry waits.
	require.Len(t, sink.records, 1)
	assert.Equal(t, 1, sink.records[0].RetryCount)
	assert.Equal(t, "Advertisement not found", sink.records[0].Error)
	assert.Empty(t, *slept)
}

func TestHandleRetriesThenDeadLetters(t *testing.T) {
	attempts := 0
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(42, itemID), nil
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			attempts++
			return nil, errors.New("connection reset by peer")
		},
	}
	sink := &recordingSink{}
	p, slept := newTestProcessor(tasks, listings, &stubScorer{}, sink)

	req, raw := request(5)
	err := p.Handle(context.Background(), req, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")

	// Exactly 3 attempts with the fixed delay between them.
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)

	// The pending task was re-resolved and failed with the final error text.
	require.NotEmpty(t, tasks.updates)
	last := tasks.updates[len(tasks.updates)-1]
	assert.Equal(t, domain.TaskStatusFailed, last.result.Status)
	assert.Contains(t, *last.result.ErrorMessage, "connection reset by peer")

	// Exactly one dead letter carrying the attempt count.
	require.Len(t, sink.records, 1)
	assert.Equal(t, 3, sink.records[0].RetryCount)
	assert.Contains(t, sink.records[0].Error, "connection reset by peer")
}

func TestHandleDeadLettersEvenWhenTaskAlreadyResolved(t *testing.T) {
	// All attempts fail; by the time the budget is exhausted the task has
	// been completed elsewhere, so only the dead letter is produced.
	calls := 0
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			calls++
			if calls <= 3 {
				return pendingTask(42, itemID), nil
			}
			return nil, store.ErrTaskNotFound
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			return nil, errors.New("transient failure")
		},
	}
	sink := &recordingSink{}
	p, _ := newTestProcessor(tasks, listings, &stubScorer{}, sink)

	req, raw := request(5)
	require.Error(t, p.Handle(context.Background(), req, raw))

	assert.Empty(t, tasks.updates)
	require.Len(t, sink.records, 1)
	assert.Equal(t, 3, sink.records[0].RetryCount)
}

func TestHandleToleratesLostUpdateRace(t *testing.T) {
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(42, itemID), nil
		},
		updateFn: func(taskID int64, result domain.TaskResult) error {
			return store.ErrAlreadyProcessed
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			return &domain.Listing{ID: itemID, SellerID: 1, Name: "X", Description: "d", Category: 1}, nil
		},
	}
	sink := &recordingSink{}
	p, slept := newTestProcessor(tasks, listings, &stubScorer{probability: 0.9}, sink)

	req, raw := request(5)
	require.NoError(t, p.Handle(context.Background(), req, raw))

	// Losing the update race is benign: no retries, no dead letter.
	assert.Empty(t, sink.records)
	assert.Empty(t, *slept)
}

func TestHandleStopsRetryingOnCancel(t *testing.T) {
	tasks := &mockTaskStore{
		latestPendingFn: func(itemID int64) (*domain.ModerationTask, error) {
			return pendingTask(42, itemID), nil
		},
	}
	listings := &mockListingStore{
		getFn: func(itemID int64) (*domain.Listing, error) {
			return nil, errors.New("still failing")
		},
	}
	sink := &recordingSink{}
	cfg := Config{MaxAttempts: 3, RetryDelay: time.Millisecond}
	p := NewProcessor(tasks, listings, &stubScorer{}, sink, cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	req, raw := request(5)
	err := p.Handle(ctx, req, raw)
	assert.ErrorIs(t, err, context.Canceled)

	// Cancellation aborts the retry loop before dead-lettering.
	assert.Empty(t, sink.records)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
}
