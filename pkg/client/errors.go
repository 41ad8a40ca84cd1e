package client

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is wrapped by every *RequestFailedError.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrRateLimited is returned when the tracked budget for a resource
	// is spent and its window has not reset yet.
	ErrRateLimited = errors.New("rate limit spent")
)

// ErrorClass represents a classification of request failures. It only
// drives metrics and logging; every class is retried.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport errors and timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

func classifyStatus(status int) ErrorClass {
	switch {
	case status == 429:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// maxErrorBody bounds the response body kept in a RequestFailedError.
const maxErrorBody = 512

// RequestFailedError is returned once every attempt for a request failed.
// It describes the last attempt only.
type RequestFailedError struct {
	Resource string
	Page     int

	// StatusCode is 0 when the last attempt failed before a response.
	StatusCode int

	// Body is the truncated response body of the last attempt.
	Body string

	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RequestFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s", e.Resource)
	if e.Page > 0 {
		fmt.Fprintf(&b, " page %d", e.Page)
	}
	fmt.Fprintf(&b, " failed after %d attempts", e.Attempts)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes ErrRetryExhausted and the last attempt's error.
func (e *RequestFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRetryExhausted}
	}
	return []error{ErrRetryExhausted, e.Err}
}

// redactor hides the API token in text that may reach logs or callers.
type redactor string

func (r redactor) Redact(s string) string {
	if r == "" {
		return s
	}
	return strings.ReplaceAll(s, string(r), "***")
}

func (r redactor) RedactErr(err error) error {
	if err == nil || r == "" || !strings.Contains(err.Error(), string(r)) {
		return err
	}
	return &redactedError{msg: r.Redact(err.Error()), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
