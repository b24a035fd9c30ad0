package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool           { return &b }
func floatPtr(f float64) *float64    { return &f }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestModerationTaskValidate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		task    ModerationTask
		wantErr error
	}{
		{
			name: "valid pending task",
			task: ModerationTask{ID: 1, ItemID: 7, Status: TaskStatusPending, CreatedAt: now},
		},
		{
			name: "valid completed task",
			task: ModerationTask{
				ID: 2, ItemID: 7, Status: TaskStatusCompleted,
				IsViolation: boolPtr(true), Probability: floatPtr(0.9),
				CreatedAt: now, ProcessedAt: timePtr(now),
			},
		},
		{
			name: "valid failed task",
			task: ModerationTask{
				ID: 3, ItemID: 7, Status: TaskStatusFailed,
				ErrorMessage: strPtr("Advertisement not found"),
				CreatedAt:    now, ProcessedAt: timePtr(now),
			},
		},
		{
			name:    "unknown status",
			task:    ModerationTask{ID: 4, ItemID: 7, Status: TaskStatus("processing"), CreatedAt: now},
			wantErr: ErrInvalidTaskStatus,
		},
		{
			name: "violation flag without probability",
			task: ModerationTask{
				ID: 5, ItemID: 7, Status: TaskStatusCompleted,
				IsViolation: boolPtr(false), CreatedAt: now,
			},
			wantErr: ErrInconsistentVerdict,
		},
		{
			name: "probability out of range",
			task: ModerationTask{
				ID: 6, ItemID: 7, Status: TaskStatusCompleted,
				IsViolation: boolPtr(true), Probability: floatPtr(1.5),
				CreatedAt: now,
			},
			wantErr: ErrProbabilityOutOfRange,
		},
		{
			name: "error message on completed task",
			task: ModerationTask{
				ID: 7, ItemID: 7, Status: TaskStatusCompleted,
				IsViolation: boolPtr(true), Probability: floatPtr(0.7),
				ErrorMessage: strPtr("boom"), CreatedAt: now,
			},
			wantErr: ErrErrorMessageOnNonFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModerationTaskIsTerminal(t *testing.T) {
	assert.False(t, (&ModerationTask{Status: TaskStatusPending}).IsTerminal())
	assert.True(t, (&ModerationTask{Status: TaskStatusCompleted}).IsTerminal())
	assert.True(t, (&ModerationTask{Status: TaskStatusFailed}).IsTerminal())
}

func TestTaskResultValidate(t *testing.T) {
	completed := CompletedResult(true, 0.87)
	assert.NoError(t, completed.Validate())
	assert.Equal(t, TaskStatusCompleted, completed.Status)
	assert.True(t, *completed.IsViolation)
	assert.InDelta(t, 0.87, *completed.Probability, 1e-9)
	assert.Nil(t, completed.ErrorMessage)

	failed := FailedResult("kafka exploded")
	assert.NoError(t, failed.Validate())
	assert.Equal(t, TaskStatusFailed, failed.Status)
	assert.Equal(t, "kafka exploded", *failed.ErrorMessage)
	assert.Nil(t, failed.IsViolation)

	// A pending "result" is not a terminal transition.
	assert.ErrorIs(t, TaskResult{Status: TaskStatusPending}.Validate(), ErrInvalidTaskStatus)

	bad := TaskResult{Status: TaskStatusCompleted, IsViolation: boolPtr(true)}
	assert.ErrorIs(t, bad.Validate(), ErrInconsistentVerdict)

	outOfRange := CompletedResult(false, -0.1)
	assert.ErrorIs(t, outOfRange.Validate(), ErrProbabilityOutOfRange)
}
