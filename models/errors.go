package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout          = "SCRAPE_TIMEOUT"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeNetwork          = "NETWORK_FAILURE"
	ErrCodeSelectorNotFound = "SELECTOR_NOT_FOUND"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodePoolExhausted    = "POOL_EXHAUSTED"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ErrNotFound is returned when a request names no target page.
var ErrNotFound = NewScrapeError(ErrCodeNotFound, "Not found", nil)

// AsScrapeError finds a ScrapeError in err's chain, or wraps err as an
// internal error.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}

// ToResponse converts an internal error to the API-facing body.
func (e *ScrapeError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code}
}
