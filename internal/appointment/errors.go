package appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// ValidationError reports malformed input. It is never retried and leaves no
// partial state behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PartialDeleteError reports a cascade delete that failed after removing some
// dependent records. It carries enough detail for the caller to retry.
type PartialDeleteError struct {
	PatientID  uuid.UUID
	Deleted    int
	Remaining  int
	PatientRow bool // whether the patient row itself was removed
	Cause      error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("cascade delete for patient %s incomplete: %d appointments deleted, %d remaining: %v",
		e.PatientID, e.Deleted, e.Remaining, e.Cause)
}

func (e *PartialDeleteError) Unwrap() error {
	return e.Cause
}
