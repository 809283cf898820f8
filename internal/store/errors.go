package store

import (
	"errors"
	"fmt"
)

// Store sentinels. Postgres errors are mapped onto these by
// platform/postgres.MapError; handlers match them with errors.Is.
var (
	// ErrNotFound means no row matched. ErrTaskNotFound and
	// ErrSubscriptionNotFound wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is a unique constraint violation.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is a check, not-null or foreign key violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed wraps a failed commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrTaskNotFound         = fmt.Errorf("%w: task", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("%w: push subscription", ErrNotFound)
)

// IsNotFoundError reports whether err is any not-found sentinel.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a row-store failure with the entity and operation it hit.
// Its text may carry driver detail and is only ever logged, redacted.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap exposes the driver or sentinel error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
