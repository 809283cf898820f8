package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }

func TestDeadlineFrom(t *testing.T) {
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	deadline := DeadlineFrom(now, intPtr(5))
	require.NotNil(t, deadline)
	assert.Equal(t, now.Add(5*24*time.Hour), *deadline)

	assert.Nil(t, DeadlineFrom(now, nil))
	assert.Nil(t, DeadlineFrom(now, intPtr(0)))
	assert.Nil(t, DeadlineFrom(now, intPtr(-3)))
}

func TestTaskInput_ValidateForCreate(t *testing.T) {
	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{
			name:  "valid",
			input: TaskInput{Title: "Water plants", Interval: intPtr(3)},
		},
		{
			name:  "valid_with_notify",
			input: TaskInput{Title: "Water plants", Interval: intPtr(3), NotifyEnabled: true, NotifyTime: strPtr("09:00")},
		},
		{
			name:  "test_sentinel_accepted",
			input: TaskInput{Title: "Water plants", Interval: intPtr(1), NotifyEnabled: true, NotifyTime: strPtr(TestNotifyTime)},
		},
		{
			name:    "empty_title",
			input:   TaskInput{Title: "", Interval: intPtr(3)},
			wantErr: ErrEmptyTaskTitle,
		},
		{
			name:    "missing_interval",
			input:   TaskInput{Title: "Water plants"},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "negative_interval",
			input:   TaskInput{Title: "Water plants", Interval: intPtr(-1)},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "bad_notify_time",
			input:   TaskInput{Title: "Water plants", Interval: intPtr(1), NotifyTime: strPtr("9am")},
			wantErr: ErrInvalidNotifyTime,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.ValidateForCreate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskInput_ValidateForUpdate(t *testing.T) {
	assert.NoError(t, (&TaskInput{Title: "No deadline"}).ValidateForUpdate())
	assert.ErrorIs(t, (&TaskInput{Title: ""}).ValidateForUpdate(), ErrValidation)
	assert.ErrorIs(t, (&TaskInput{Title: "x", Interval: intPtr(-2)}).ValidateForUpdate(), ErrInvalidInterval)
}

func TestTaskInput_Normalize(t *testing.T) {
	in := TaskInput{Title: "  Read  ", Interval: intPtr(0), NotifyTime: strPtr("   ")}
	in.Normalize()

	assert.Equal(t, "Read", in.Title)
	assert.Nil(t, in.Interval)
	assert.Nil(t, in.NotifyTime)

	in = TaskInput{Title: "Read", NotifyTime: strPtr(" 08:15 ")}
	in.Normalize()
	require.NotNil(t, in.NotifyTime)
	assert.Equal(t, "08:15", *in.NotifyTime)
}

func TestTask_WantsReminder(t *testing.T) {
	task := &Task{NotifyEnabled: true, NotifyTime: strPtr("09:00")}
	assert.True(t, task.WantsReminder())

	task.Completed = true
	assert.False(t, task.WantsReminder())

	task = &Task{NotifyEnabled: true}
	assert.False(t, task.WantsReminder())

	task = &Task{NotifyEnabled: false, NotifyTime: strPtr("09:00")}
	assert.False(t, task.WantsReminder())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("id", "has invalid format", ErrInvalidID)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrInvalidID))
	assert.Equal(t, "validation failed: id has invalid format", err.Error())

	plain := NewValidationError("", "bad input", nil)
	assert.True(t, errors.Is(plain, ErrValidation))
	assert.Equal(t, "validation failed: bad input", plain.Error())
}

func TestPushSubscription_Validate(t *testing.T) {
	valid := &PushSubscription{Endpoint: "https://push.example/abc", P256dh: "key", Auth: "secret"}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, (&PushSubscription{P256dh: "k", Auth: "a"}).Validate(), ErrEmptyEndpoint)
	assert.ErrorIs(t, (&PushSubscription{Endpoint: "https://push.example/abc"}).Validate(), ErrMissingPushKeys)
}
