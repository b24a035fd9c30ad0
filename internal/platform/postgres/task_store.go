package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sgladkov/admoderation/internal/domain"
	"github.com/sgladkov/admoderation/internal/platform/logger"
	"github.com/sgladkov/admoderation/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new PostgreSQL implementation of store.TaskStore.
// It accepts a database connection or transaction managed by the caller.
func NewTaskStore(db store.DBTX) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &TaskStore{db: db}
}

// Ensure TaskStore implements store.TaskStore
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx returns a new TaskStore bound to the provided transaction.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

// Create inserts a new pending task for the advertisement and returns the
// full record including the generated id.
func (s *TaskStore) Create(ctx context.Context, itemID int64) (*domain.ModerationTask, error) {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO moderation_results (item_id, status)
		VALUES ($1, 'pending')
		RETURNING id, item_id, status, is_violation, probability, error_message, created_at, processed_at
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		log.Error("failed to create moderation task",
			"item_id", itemID,
			"error", err)
		return nil, fmt.Errorf("failed to create moderation task: %w", MapError(err))
	}

	return task, nil
}

// GetByID retrieves a task by primary key.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, taskID int64) (*domain.ModerationTask, error) {
	query := `
		SELECT id, item_id, status, is_violation, probability, error_message, created_at, processed_at
		FROM moderation_results
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get moderation task: %w", MapError(err))
	}

	return task, nil
}

// UpdateResult applies a terminal transition to a pending task. The WHERE
// clause carries the pending precondition, so a task that already reached a
// terminal state is reported as store.ErrAlreadyProcessed and its stored
// verdict is never overwritten.
func (s *TaskStore) UpdateResult(ctx context.Context, taskID int64, result domain.TaskResult) error {
	log := logger.FromContext(ctx)

	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE moderation_results
		SET status = $1, is_violation = $2, probability = $3, error_message = $4, processed_at = $5
		WHERE id = $6 AND status = 'pending'
	`

	res, err := s.db.ExecContext(ctx, query,
		string(result.Status),
		result.IsViolation,
		result.Probability,
		result.ErrorMessage,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update moderation task",
			"task_id", taskID,
			"status", result.Status,
			"error", err)
		return fmt.Errorf("failed to update moderation task: %w", MapError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the task does not exist or it already left pending.
		if _, getErr := s.GetByID(ctx, taskID); getErr != nil {
			return getErr
		}
		log.Warn("task already reached a terminal state, leaving result untouched",
			"task_id", taskID,
			"attempted_status", result.Status)
		return store.ErrAlreadyProcessed
	}

	return nil
}

// LatestPendingForItem returns the highest-id pending task for the
// advertisement, or store.ErrTaskNotFound when nothing is pending.
func (s *TaskStore) LatestPendingForItem(ctx context.Context, itemID int64) (*domain.ModerationTask, error) {
	query := `
		SELECT id, item_id, status, is_violation, probability, error_message, created_at, processed_at
		FROM moderation_results
		WHERE item_id = $1 AND status = 'pending'
		ORDER BY id DESC
		LIMIT 1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find pending moderation task: %w", MapError(err))
	}

	return task, nil
}

// DeleteForItem removes all tasks for the advertisement. Used on closure.
func (s *TaskStore) DeleteForItem(ctx context.Context, itemID int64) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM moderation_results WHERE item_id = $1`

	res, err := s.db.ExecContext(ctx, query, itemID)
	if err != nil {
		log.Error("failed to delete moderation tasks",
			"item_id", itemID,
			"error", err)
		return fmt.Errorf("failed to delete moderation tasks: %w", MapError(err))
	}

	if deleted, err := res.RowsAffected(); err == nil {
		log.Debug("deleted moderation tasks for advertisement",
			"item_id", itemID,
			"count", deleted)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.ModerationTask, error) {
	var (
		task         domain.ModerationTask
		status       string
		isViolation  sql.NullBool
		probability  sql.NullFloat64
		errorMessage sql.NullString
		processedAt  sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.ItemID,
		&status,
		&isViolation,
		&probability,
		&errorMessage,
		&task.CreatedAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if isViolation.Valid {
		task.IsViolation = &isViolation.Bool
	}
	if probability.Valid {
		task.Probability = &probability.Float64
	}
	if errorMessage.Valid {
		task.ErrorMessage = &errorMessage.String
	}
	if processedAt.Valid {
		task.ProcessedAt = &processedAt.Time
	}

	return &task, nil
}
