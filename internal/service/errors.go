package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the inspection services. Handlers match them
// with errors.Is and translate them to HTTP responses.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
)

// FieldViolation describes one failed constraint on one field.
type FieldViolation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Value      string `json:"value,omitempty"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Constraint)
}

// RecordViolation is a FieldViolation located in a submission.
type RecordViolation struct {
	Index int `json:"index"`
	FieldViolation
}

// ValidationError carries every violation found in a submission.
// It matches ErrValidationFailed with errors.Is.
type ValidationError struct {
	Reason     string
	Violations []RecordViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Reason)
	}

	parts := make([]string, 0, len(e.Violations))
	for i, v := range e.Violations {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Violations)-i))
			break
		}
		parts = append(parts, fmt.Sprintf("record %d %s", v.Index, v.FieldViolation))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// storageError wraps a repository failure so that it matches
// ErrStorageUnavailable while keeping the cause for logs.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
