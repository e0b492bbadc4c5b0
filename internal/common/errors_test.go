package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamKinds(t *testing.T) {
	assert.ErrorIs(t, ErrGeneration, ErrUpstream)
	assert.ErrorIs(t, ErrInvalidResponse, ErrUpstream)
	assert.NotErrorIs(t, ErrMissingImage, ErrUpstream)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Message: "validation failed", Fields: map[string]string{
		"filename":    "required",
		"contentType": "required",
	}}
	assert.Equal(t, "validation failed (contentType: required, filename: required)", err.Error())

	wrapped := fmt.Errorf("issue credential: %w", err)
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsValidation(errors.New("plain")))

	single := NewValidationError("hook", "required")
	assert.Equal(t, "validation failed (hook: required)", single.Error())
	assert.Equal(t, "validation failed", (&ValidationError{Message: "validation failed"}).Error())
}
