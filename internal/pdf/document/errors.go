package document

import (
	"errors"
	"fmt"
)

// DocumentError wraps a failure of the underlying PDF library with the operation that caused it
type DocumentError struct {
	Op   string `json:"operation"`
	Page int    `json:"page,omitempty"`
	Err  error  `json:"error"`
}

func (e *DocumentError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("PDF document error in %s (page %d): %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("PDF document error in %s: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrFileTooLarge  = errors.New("document too large")
	ErrInvalidPage   = errors.New("invalid page number")
	ErrInvalidID     = errors.New("invalid annotation id")
)
