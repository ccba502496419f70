package scraper

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError is returned once a fetch has exhausted its retry budget or
// hit a non-retryable status. It carries the last observed status and
// cause so the caller can decide whether to skip the unit of work.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): status %d", e.URL, e.Attempts, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DirectoryError marks one country as unresolvable for this run. It is
// non-fatal: the pipeline records the country as failed and moves on.
type DirectoryError struct {
	Country string
	Op      string
	Err     error
}

func (e *DirectoryError) Error() string {
	if e.Country == "" {
		return fmt.Sprintf("directory %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("directory %s for %q: %v", e.Op, e.Country, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// ParseError signals a malformed payload or unexpected page structure.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RetryableStatus reports whether an HTTP status is worth retrying:
// 429 and 5xx only. Other 4xx failures are permanent.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// IsFetchError reports whether err wraps a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
