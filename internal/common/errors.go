// Package common defines sentinel errors shared by the server and client
// layers. Callers should match them with errors.Is / errors.As.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// repository specific errors
	ErrNotFound = errors.New("not found")

	// ErrRelatedNotFound is returned when a referenced record (e.g. the brand of
	// a design) is missing or belongs to another user.
	ErrRelatedNotFound = errors.New("related record not found")

	// auth errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token expired")

	// upload specific errors
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")

	// upstream collaborators
	ErrUpstream        = errors.New("upstream service error")
	ErrGeneration      = fmt.Errorf("%w: generation failed", ErrUpstream)
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrUpstream)
	ErrMissingImage    = errors.New("missing image")

	// webhooks
	ErrInvalidSignature = errors.New("invalid signature")

	// service specific errors
	ErrInternal = errors.New("internal error")
)

// ValidationError reports malformed input. Fields maps a field name to a
// human readable problem.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError with a single field detail.
func NewValidationError(field, problem string) *ValidationError {
	return &ValidationError{
		Message: "validation failed",
		Fields:  map[string]string{field: problem},
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
