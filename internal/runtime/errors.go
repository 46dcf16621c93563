package runtime

import "fmt"

// Error taxonomy for agent processing. The scheduler retries only failures
// that declare themselves retryable: infrastructure trouble can pass, broken
// inputs and rejected outputs cannot.

// BusinessLogicError reports that the agent could not process its input on
// the merits. Retrying the same input would fail the same way.
type BusinessLogicError struct {
	Agent string
	Msg   string
}

func (e *BusinessLogicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Agent, e.Msg)
}

// ExternalServiceError reports a failed call to a dependency outside the
// engine. These are retryable; RetryAfter is advisory.
type ExternalServiceError struct {
	Service string
	Err     error

	// RetryAfter is the dependency's suggested backoff in seconds, 0 if it
	// gave none.
	RetryAfter int
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Retryable marks external-service failures as recoverable.
func (e *ExternalServiceError) Retryable() bool { return true }

// QualityGateError reports an output contract rejected by one of its own
// quality gates. The output is deterministic, so the failure is permanent.
type QualityGateError struct {
	Agent string
	Gate  string
}

func (e *QualityGateError) Error() string {
	return fmt.Sprintf("%s output failed quality gate %q", e.Agent, e.Gate)
}
