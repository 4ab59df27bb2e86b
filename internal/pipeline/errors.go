package pipeline

import (
	"errors"
	"fmt"
)

// Sentinels for resource validation failures.
var (
	ErrEmpty    = errors.New("value is empty")
	ErrBadURL   = errors.New("malformed url")
	ErrNotImage = errors.New("content is not an image")
	ErrTooLarge = errors.New("content exceeds size limit")
	ErrTooSmall = errors.New("content below size limit")
	ErrNoResult = errors.New("no result")
)

// FetchError is a transient network failure after retries are exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError rejects a single resource (URL, image, field) without failing the article.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError wraps a content store failure for one article.
type StoreError struct {
	Op    string
	Title string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Title, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// InputError is an unrecoverable problem with user input (artifact, flags).
type InputError struct {
	What string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.What, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// IsExpected reports whether err belongs to the pipeline's per-item error taxonomy.
// Anything else is treated as a bug and surfaced.
func IsExpected(err error) bool {
	var (
		fetchErr *FetchError
		valErr   *ValidationError
		storeErr *StoreError
	)
	return errors.As(err, &fetchErr) || errors.As(err, &valErr) || errors.As(err, &storeErr)
}
