package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for entity lookups.
var (
	ErrCollegeNotFound   = errors.New("college not found")
	ErrAdmissionNotFound = errors.New("admission requirement not found")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// Sentinel causes of envelope failures.
var (
	ErrEmptyUpload   = errors.New("upload is empty")
	ErrNotTabular    = errors.New("upload is not tabular text")
	ErrNotStructured = errors.New("upload is not a structured document")
	ErrMissingHeader = errors.New("missing required columns")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// EnvelopeError reports that an upload payload could not be decomposed into
// records at all. No record is processed when one is returned.
type EnvelopeError struct {
	Source IngestSource
	Err    error
}

// Error implements error.
func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("invalid %s upload: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EnvelopeError) Unwrap() error { return e.Err }

// IsEnvelopeError reports whether err is, or wraps, an *EnvelopeError.
func IsEnvelopeError(err error) bool {
	var envErr *EnvelopeError
	return errors.As(err, &envErr)
}
