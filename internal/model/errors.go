package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrRegistryUnavailable wraps failures of the routing-profile registry.
// Callers treat it as "no profile found", never as fatal.
var ErrRegistryUnavailable = errors.New("profile registry unavailable")

// ErrorKind is the stable classification of a failed invocation. Adapters set
// it once at the service boundary; nothing downstream inspects messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindCapacityRestricted
	KindAccessDenied
	KindThrottled
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapacityRestricted:
		return "capacity_restricted"
	case KindAccessDenied:
		return "access_denied"
	case KindThrottled:
		return "throttled"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Fatal reports whether the kind aborts an orchestration run.
func (k ErrorKind) Fatal() bool {
	return k == KindMalformedResponse
}

// InvocationError is returned by an Invoker for any failed attempt.
type InvocationError struct {
	Target  string    // identifier the call was routed to
	Kind    ErrorKind // classified once by the adapter
	Message string    // service-reported message, if any
	Err     error
}

func (e *InvocationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invoke %s: %s: %s", e.Target, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("invoke %s: %s: %v", e.Target, e.Kind, e.Err)
	}
	return fmt.Sprintf("invoke %s: %s", e.Target, e.Kind)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err, defaulting to KindUnknown.
func KindOf(err error) ErrorKind {
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr.Kind
	}
	return KindUnknown
}

// HTTPError wraps an HTTP status code so classification and retry logic can
// inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
