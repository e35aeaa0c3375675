package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwraps(t *testing.T) {
	err := NewAppError("OCR_ERROR", "document unreadable", ErrExtraction)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "OCR_ERROR")
	assert.Contains(t, err.Error(), "document unreadable")
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "cannot persist run")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cannot persist run")

	assert.NoError(t, WrapError(nil, "nothing happened"))
}

func TestAppErrorAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewAppError("DB_ERROR", "cannot persist run", ErrDatabase))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrDatabase)
}

func TestSentinelsSurviveFmtWrapping(t *testing.T) {
	err := fmt.Errorf("%w: upstream said no", ErrEscalation)
	assert.ErrorIs(t, err, ErrEscalation)
	assert.NotErrorIs(t, err, ErrExtraction)
}
