package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy for the extraction pipeline.
var (
	// ErrExtraction: the whole document is unreadable or the recognition
	// service is unreachable. Fatal for that document only.
	ErrExtraction = errors.New("document extraction failed")

	// ErrPageRecognition: a single page failed to recognize. Its slot stays
	// empty; never fatal.
	ErrPageRecognition = errors.New("page recognition failed")

	// ErrEscalation: the model-assisted parse failed or returned a malformed
	// payload. Degrades to an empty record.
	ErrEscalation = errors.New("model-assisted parse failed")

	// ErrCoercion: a row's result is not numeric. The row is dropped.
	ErrCoercion = errors.New("result not numeric")

	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
