package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a moderation task
type TaskStatus string

// Possible task status values. A task is created pending and moves exactly
// once to completed or failed; terminal states are never left.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Common validation errors for ModerationTask
var (
	ErrInvalidTaskStatus       = errors.New("invalid task status")
	ErrInconsistentVerdict     = errors.New("is_violation and probability must be set together")
	ErrErrorMessageOnNonFailed = errors.New("error_message is only valid on failed tasks")
	ErrProbabilityOutOfRange   = errors.New("probability must be within [0, 1]")
)

// ModerationTask is a persisted unit of moderation work for one
// advertisement. Several tasks may exist historically for the same
// advertisement; by convention at most one is pending at a time.
type ModerationTask struct {
	ID           int64      `json:"id"`
	ItemID       int64      `json:"item_id"`
	Status       TaskStatus `json:"status"`
	IsViolation  *bool      `json:"is_violation"`
	Probability  *float64   `json:"probability"`
	ErrorMessage *string    `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
}

// Validate checks the cross-field invariants of a task record:
// the verdict fields are both set or both unset, the error message only
// appears on failed tasks, and any probability lies within [0, 1].
func (t *ModerationTask) Validate() error {
	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}
	if (t.IsViolation == nil) != (t.Probability == nil) {
		return ErrInconsistentVerdict
	}
	if t.Probability != nil && (*t.Probability < 0 || *t.Probability > 1) {
		return ErrProbabilityOutOfRange
	}
	if t.ErrorMessage != nil && t.Status != TaskStatusFailed {
		return ErrErrorMessageOnNonFailed
	}
	return nil
}

// IsTerminal reports whether the task has reached a final state.
func (t *ModerationTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// TaskResult describes the terminal transition applied to a pending task.
// Use CompletedResult or FailedResult to construct one.
type TaskResult struct {
	Status       TaskStatus
	IsViolation  *bool
	Probability  *float64
	ErrorMessage *string
}

// CompletedResult builds the terminal update for a successfully scored task.
func CompletedResult(isViolation bool, probability float64) TaskResult {
	return TaskResult{
		Status:      TaskStatusCompleted,
		IsViolation: &isViolation,
		Probability: &probability,
	}
}

// FailedResult builds the terminal update for a task whose processing failed.
func FailedResult(errorMessage string) TaskResult {
	return TaskResult{
		Status:       TaskStatusFailed,
		ErrorMessage: &errorMessage,
	}
}

// Validate checks that the result describes a legal terminal transition.
func (r TaskResult) Validate() error {
	switch r.Status {
	case TaskStatusCompleted:
		if r.IsViolation == nil || r.Probability == nil {
			return ErrInconsistentVerdict
		}
		if *r.Probability < 0 || *r.Probability > 1 {
			return ErrProbabilityOutOfRange
		}
		if r.ErrorMessage != nil {
			return ErrErrorMessageOnNonFailed
		}
	case TaskStatusFailed:
		if r.IsViolation != nil || r.Probability != nil {
			return ErrInconsistentVerdict
		}
	default:
		return ErrInvalidTaskStatus
	}
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
