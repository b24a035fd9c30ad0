package store

import (
	"context"
	"database/sql"

	"github.com/sgladkov/admoderation/internal/domain"
)

// TaskStore defines the interface for moderation task persistence.
// The task state machine lives here: tasks are created pending and
// transition exactly once to completed or failed.
type TaskStore interface {
	// Create inserts a new task for the given advertisement with status
	// pending and returns the full record including the generated id.
	// There is no uniqueness constraint on item_id; callers may create
	// several concurrent tasks for the same advertisement.
	Create(ctx context.Context, itemID int64) (*domain.ModerationTask, error)

	// GetByID retrieves a task by its primary key.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, taskID int64) (*domain.ModerationTask, error)

	// UpdateResult transitions a task out of the pending state, setting the
	// terminal status, the verdict fields and processed_at. The update is
	// conditional on the row still being pending: if the task has already
	// reached a terminal state the call returns ErrAlreadyProcessed and the
	// stored result is left untouched, so a stale redelivery can never
	// overwrite a finished verdict.
	// Returns ErrTaskNotFound if no task with the given id exists.
	UpdateResult(ctx context.Context, taskID int64, result domain.TaskResult) error

	// LatestPendingForItem returns the highest-id pending task for the given
	// advertisement, or ErrTaskNotFound when none is pending.
	LatestPendingForItem(ctx context.Context, itemID int64) (*domain.ModerationTask, error)

	// DeleteForItem bulk-removes all tasks for an advertisement. Used when
	// the advertisement is closed. Deleting zero rows is not an error.
	DeleteForItem(ctx context.Context, itemID int64) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller, typically through RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
