package eventbus

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for scheduler lookups.
var (
	// ErrWorkNotFound is returned when a work ID is not queued, active, or
	// archived.
	ErrWorkNotFound = errors.New("work item not found")

	// ErrBusStopped is returned for operations on a stopped bus.
	ErrBusStopped = errors.New("event bus is stopped")
)

// retryable is the optional error capability the scheduler consults when a
// work item fails. Agent runtimes attach it to failures that a fresh attempt
// could recover from.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether an error anywhere in the chain declares itself
// retryable. Errors without the capability are treated as permanent.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// TimeoutError reports a work item that exceeded the configured processing
// timeout. Timeouts are retryable: the agent may simply have been overloaded.
type TimeoutError struct {
	WorkID  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("work %s timed out after %s", e.WorkID, e.Timeout)
}

// Retryable marks timeouts as recoverable.
func (e *TimeoutError) Retryable() bool { return true }
