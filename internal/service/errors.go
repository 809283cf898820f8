package service

import (
	"errors"
	"fmt"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/store"
)

var (
	// ErrPushNotConfigured indicates that no VAPID keys are configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrPushNotConfigured = errors.New("push notifications are not configured")
)

// ServiceError wraps unexpected failures from a service operation.
type ServiceError struct {
	// Service is the service that failed (e.g., "task", "reminder")
	Service string
	// Operation is the operation that failed (e.g., "create", "reset")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError wraps err in a ServiceError. Validation and not-found
// errors are returned unchanged so the API layer can map them directly.
func newServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, store.ErrNotFound) {
		return err
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// SchedulerError reports a failed interaction with the delayed-message queue.
// It is logged and absorbed by the task service and never reaches an HTTP
// caller.
type SchedulerError struct {
	// Operation is "schedule" or "cancel"
	Operation string
	TaskID    int64
	JobID     string
	Err       error
}

// Error implements the error interface for SchedulerError.
func (e *SchedulerError) Error() string {
	switch {
	case e.TaskID != 0 && e.JobID != "":
		return fmt.Sprintf("reminder %s failed for task %d (job %s): %v", e.Operation, e.TaskID, e.JobID, e.Err)
	case e.TaskID != 0:
		return fmt.Sprintf("reminder %s failed for task %d: %v", e.Operation, e.TaskID, e.Err)
	default:
		return fmt.Sprintf("reminder %s failed for job %s: %v", e.Operation, e.JobID, e.Err)
	}
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SchedulerError) Unwrap() error {
	return e.Err
}
