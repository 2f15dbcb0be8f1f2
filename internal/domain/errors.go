package domain

import (
	"errors"
	"fmt"
)

// FetchError covers every way a page download can fail: a non-200 status,
// a network fault or a TLS failure. StatusCode is zero when no response
// was received.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s failed", e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ParseMismatchError means the page did not have the expected shape.
type ParseMismatchError struct {
	URL     string
	DayType DayType
	Reason  string
}

func (e *ParseMismatchError) Error() string {
	if e.DayType != "" {
		return fmt.Sprintf("parse %s (%s): %s", e.URL, e.DayType, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

// FallbackUnavailableError is recorded when the sample file cannot supply
// a route. It is logged, never returned past the loader.
type FallbackUnavailableError struct {
	Path  string
	Route string
	Cause error
}

func (e *FallbackUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sample %s has no data for %q: %v", e.Path, e.Route, e.Cause)
	}
	return fmt.Sprintf("sample %s has no data for %q", e.Path, e.Route)
}

func (e *FallbackUnavailableError) Unwrap() error { return e.Cause }

// SerializationError is fatal for a scrape run.
type SerializationError struct {
	Path  string
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

func IsParseMismatch(err error) bool {
	var target *ParseMismatchError
	return errors.As(err, &target)
}

func IsSerialization(err error) bool {
	var target *SerializationError
	return errors.As(err, &target)
}
