package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// RateLimitError means the provider asked us to slow down. Retryable.
type RateLimitError struct {
	Detail string
}

func (e *RateLimitError) Error() string { return "rate limited: " + e.Detail }

// ServerError is a transient provider-side failure (5xx). Retryable.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Detail)
}

// TimeoutError wraps a network timeout or deadline expiry. Retryable.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return "request timed out: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthError means credentials were rejected. Fatal for the candidate.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string { return "authentication error: " + e.Detail }

// QuotaError means the account has no budget left. Fatal for the candidate.
type QuotaError struct {
	Detail string
}

func (e *QuotaError) Error() string { return "quota exhausted: " + e.Detail }

// BadRequestError means the provider rejected the request shape or model
// name. Fatal for the candidate; retrying the same payload cannot help.
type BadRequestError struct {
	Status int
	Detail string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request (status %d): %s", e.Status, e.Detail)
}

// Retryable reports whether err may succeed on a later attempt against the
// same candidate.
func Retryable(err error) bool {
	var rle *RateLimitError
	var se *ServerError
	var te *TimeoutError
	return errors.As(err, &rle) || errors.As(err, &se) || errors.As(err, &te)
}

// Fatal reports whether err rules out the current candidate entirely, so
// the fallback chain should advance without retrying.
func Fatal(err error) bool {
	var ae *AuthError
	var qe *QuotaError
	var bre *BadRequestError
	return errors.As(err, &ae) || errors.As(err, &qe) || errors.As(err, &bre)
}

// classifyStatus maps a non-200 HTTP status to a classified error.
func classifyStatus(status int, body []byte) error {
	detail := snippet(body)
	switch {
	case status == 429:
		return &RateLimitError{Detail: detail}
	case status == 402:
		return &QuotaError{Detail: detail}
	case status == 401 || status == 403:
		return &AuthError{Detail: detail}
	case status == 400 || status == 404 || status == 422:
		return &BadRequestError{Status: status, Detail: detail}
	case status >= 500:
		return &ServerError{Status: status, Detail: detail}
	default:
		return fmt.Errorf("API error (status %d): %s", status, detail)
	}
}

// classifyTransport wraps timeouts so they register as retryable.
func classifyTransport(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	return fmt.Errorf("sending request: %w", err)
}

const maxDetailLen = 300

func snippet(body []byte) string {
	s := string(body)
	if len(s) > maxDetailLen {
		return s[:maxDetailLen] + "..."
	}
	return s
}
