package api

import (
	"fmt"
	"strings"

	"github.com/amp-labs/dataapi-go/timeouts"
)

// ErrorDescriptor is one server-reported error from a response envelope.
// Retryable is the server's explicit "safe to retry" declaration; when the
// server omits it, retryability falls back to the code table below.
type ErrorDescriptor struct {
	ErrorCode string `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
	Family    string `json:"family,omitempty"`
	Title     string `json:"title,omitempty"`
	Retryable *bool  `json:"retryable,omitempty"`
}

// retryableCodes are error codes known to describe transient server
// conditions. Used only when the descriptor carries no explicit flag.
var retryableCodes = map[string]struct{}{
	"SERVER_UNAVAILABLE":     {},
	"TOO_MANY_REQUESTS":      {},
	"DRIVER_TIMEOUT":         {},
	"CONCURRENCY_FAILURE":    {},
	"LOCK_ACQUISITION_ERROR": {},
}

// retryableStatuses are HTTP statuses treated as transient when the body
// carried no error descriptors at all.
var retryableStatuses = map[int]struct{}{
	429: {},
	502: {},
	503: {},
	504: {},
}

// Error is a protocol/response error: the server answered, but with error
// descriptors or a failing HTTP status. It carries enough context to build
// an actionable message without consulting logs.
type Error struct {
	Command     string
	RequestID   string
	StatusCode  int
	Descriptors []ErrorDescriptor
}

func (e *Error) Error() string {
	if len(e.Descriptors) == 0 {
		return fmt.Sprintf("command %q failed with HTTP %d", e.Command, e.StatusCode)
	}

	msgs := make([]string, len(e.Descriptors))
	for i, d := range e.Descriptors {
		msgs[i] = fmt.Sprintf("%s: %s", d.ErrorCode, d.Message)
	}

	return fmt.Sprintf("command %q failed: %s", e.Command, strings.Join(msgs, "; "))
}

// Retryable reports the server's explicit retry signal. A multi-error
// response is only retryable when every descriptor is; a descriptor without
// an explicit flag consults the code table; a bodiless HTTP failure consults
// the status.
func (e *Error) Retryable() bool {
	if len(e.Descriptors) == 0 {
		_, ok := retryableStatuses[e.StatusCode]

		return ok
	}

	for _, d := range e.Descriptors {
		if d.Retryable != nil {
			if !*d.Retryable {
				return false
			}

			continue
		}

		if _, ok := retryableCodes[d.ErrorCode]; !ok {
			return false
		}
	}

	return true
}

// TimeoutError is the data-plane timeout error: a single attempt's budget
// elapsed. It carries the classification of which configured budgets ran
// out. Timeout errors are never retried.
type TimeoutError struct {
	Timeout *timeouts.Error
}

func (e *TimeoutError) Error() string {
	return e.Timeout.Error()
}

func (e *TimeoutError) Unwrap() error {
	return e.Timeout
}

// AdminTimeoutError is the control-plane counterpart of TimeoutError, raised
// by admin-family operations.
type AdminTimeoutError struct {
	Timeout *timeouts.Error
}

func (e *AdminTimeoutError) Error() string {
	return e.Timeout.Error()
}

func (e *AdminTimeoutError) Unwrap() error {
	return e.Timeout
}
