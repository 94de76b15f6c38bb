package models

import (
	"errors"
	"fmt"
)

// ErrEmptyBaseURL is the one configuration error that stops the process.
var ErrEmptyBaseURL = errors.New("base search URL is empty")

// FetchError reports a transport failure or a non-2xx answer for one page.
// It ends pagination; listings gathered before it are kept.
type FetchError struct {
	URL        string
	Page       int
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d (%s): status %d", e.Page, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError marks one unit row whose markup lacks a required node.
// The row is skipped, the rest of the page is still extracted.
type ExtractionError struct {
	Page  int
	Index int // position of the row on its page, document order
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract page %d row %d: missing %s node", e.Page, e.Index, e.Field)
}

// NormalizationError reports one field that could not be converted. The
// record is kept with the field defaulted.
type NormalizationError struct {
	Field string
	Value string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// PersistenceError reports a sink failure.
type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
