package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/berkedogan/tasks-api/internal/localtime"
)

// TestNotifyTime is the reserved notify time that schedules a reminder
// thirty seconds from now instead of at a wall-clock time.
const TestNotifyTime = "TEST"

// ExpiryGrace is how long a non-recurring task stays visible after its
// terminal instant (deadline if incomplete, completion if completed).
const ExpiryGrace = 24 * time.Hour

// Task-specific validation errors
var (
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrInvalidInterval   = errors.New("task interval must be a positive number of days")
	ErrInvalidNotifyTime = errors.New("notify time must be HH:MM")
)

// Task is a single to-do item with an optional deadline, recurrence and
// push reminder. Every field lives in the task row; nothing about a task is
// kept in process memory between requests.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
	// Interval is the deadline distance in days.
	Interval      *int       `json:"interval,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	IsVisible     bool       `json:"is_visible"`
	NotifyEnabled bool       `json:"notify_enabled"`
	// NotifyTime is a local HH:MM wall clock, or TestNotifyTime.
	NotifyTime *string `json:"notify_time,omitempty"`
	// ReminderJobID caches the queue message believed to be in flight.
	// It is never authoritative about whether a reminder should exist.
	ReminderJobID *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotifyTimeValue returns the notify time or "" when unset.
func (t *Task) NotifyTimeValue() string {
	if t.NotifyTime == nil {
		return ""
	}
	return *t.NotifyTime
}

// JobID returns the pending reminder job id or "" when none.
func (t *Task) JobID() string {
	if t.ReminderJobID == nil {
		return ""
	}
	return *t.ReminderJobID
}

// HasPendingReminder reports whether a queue message is believed in flight.
func (t *Task) HasPendingReminder() bool {
	return t.JobID() != ""
}

// WantsReminder reports whether the row's own state calls for a reminder.
func (t *Task) WantsReminder() bool {
	return t.NotifyEnabled && t.NotifyTimeValue() != "" && !t.Completed
}

// DeadlineFrom computes now + interval days. A missing or non-positive
// interval yields no deadline.
func DeadlineFrom(now time.Time, interval *int) *time.Time {
	if interval == nil || *interval <= 0 {
		return nil
	}
	deadline := now.Add(time.Duration(*interval) * 24 * time.Hour).UTC()
	return &deadline
}

// TaskInput carries the caller-controlled fields of a create or update.
type TaskInput struct {
	Title         string
	Interval      *int
	IsRecurring   bool
	NotifyEnabled bool
	NotifyTime    *string
}

// Normalize trims the title and drops empty notify times and zero intervals.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.NotifyTime != nil {
		trimmed := strings.TrimSpace(*in.NotifyTime)
		if trimmed == "" {
			in.NotifyTime = nil
		} else {
			in.NotifyTime = &trimmed
		}
	}
	if in.Interval != nil && *in.Interval == 0 {
		in.Interval = nil
	}
}

// ValidateForCreate requires a title and a positive interval.
func (in *TaskInput) ValidateForCreate() error {
	if in.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTaskTitle)
	}
	if in.Interval == nil || *in.Interval <= 0 {
		return NewValidationError("interval", "must be a positive integer", ErrInvalidInterval)
	}
	return in.validateNotify()
}

// ValidateForUpdate requires a title; the interval may be absent, which
// leaves the task without a deadline.
func (in *TaskInput) ValidateForUpdate() error {
	if in.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTaskTitle)
	}
	if in.Interval != nil && *in.Interval < 0 {
		return NewValidationError("interval", "must be a positive integer", ErrInvalidInterval)
	}
	return in.validateNotify()
}

func (in *TaskInput) validateNotify() error {
	if in.NotifyTime == nil {
		return nil
	}
	if *in.NotifyTime == TestNotifyTime {
		return nil
	}
	if _, _, err := localtime.ParseWallClock(*in.NotifyTime); err != nil {
		return NewValidationError("notifyTime", "must be HH:MM", ErrInvalidNotifyTime)
	}
	return nil
}
