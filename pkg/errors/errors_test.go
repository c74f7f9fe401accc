package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesFieldsSorted(t *testing.T) {
	err := NewValidationError("invalid match request", map[string]string{
		"limit":        "limit must be at most 50",
		"problemAreas": "problemAreas is required",
	})

	assert.Equal(t,
		"VALIDATION: invalid match request (limit: limit must be at most 50; problemAreas: problemAreas is required)",
		err.Error())
}

func TestAppError_UnwrapAndIsType(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("match: %w", NewUpstreamUnavailableError("profile store failed", cause))

	assert.True(t, IsType(err, ErrorTypeUpstreamUnavailable))
	assert.False(t, IsType(err, ErrorTypeValidation))
	assert.ErrorIs(t, err, cause)

	appErr, ok := As(err)
	if assert.True(t, ok) {
		assert.Equal(t, "profile store failed", appErr.Message)
	}
}

func TestIsType_PlainError(t *testing.T) {
	assert.False(t, IsType(errors.New("boom"), ErrorTypeInternal))
	assert.False(t, IsType(nil, ErrorTypeInternal))
}
