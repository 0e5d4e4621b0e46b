package report

import "fmt"

// Error codes carried by report errors
const (
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeInvalidType       = "INVALID_REPORT_TYPE"
	ErrCodeMissingOutput     = "MISSING_OUTPUT_PATH"
	ErrCodeMissingRequester  = "MISSING_REQUESTER"
	ErrCodeUnsupportedFilter = "UNSUPPORTED_FILTER"
	ErrCodeMissingDates      = "MISSING_DATES"
	ErrCodeInvalidRange      = "INVALID_DATE_RANGE"
	ErrCodeRender            = "RENDER_ERROR"
	ErrCodeWrite             = "WRITE_ERROR"
)

// StorageError is returned by fetchers when the underlying query fails
type StorageError struct {
	Code    string
	Entity  string
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Entity, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Entity, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a storage error for the given entity
func NewStorageError(entity, message string, cause error) *StorageError {
	return &StorageError{
		Code:    ErrCodeStorage,
		Entity:  entity,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError rejects a request before anything is fetched
type ValidationError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error
func NewValidationError(code, message string, cause error) *ValidationError {
	return &ValidationError{Code: code, Message: message, Cause: cause}
}

// RenderError aborts a report run after data was fetched
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a render error
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
