// Package extraction talks to the external service that turns scanned GRV
// delivery notes into parsed payloads.
package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable is returned when the extraction service cannot be reached
	ErrServiceUnavailable = errors.New("extraction service unavailable")
	// ErrRejected is returned when the extraction service answers with an error status
	ErrRejected = errors.New("extraction service rejected the document")
	// ErrMalformedResponse is returned when the response body is not a parsed GRV payload
	ErrMalformedResponse = errors.New("malformed extraction response")
	// ErrEmptyDocument is returned for a zero-length upload
	ErrEmptyDocument = errors.New("empty document")
)

// ExtractionError adds the failed operation and context to an extraction failure
type ExtractionError struct {
	// Op is the step that failed, e.g. "upload" or "decode"
	Op      string
	Err     error
	Details string
}

func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extraction: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extraction: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{Op: op, Err: err, Details: details}
}
