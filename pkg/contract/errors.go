package contract

import (
	"fmt"
	"strings"
)

// ShapeError reports a structurally invalid contract: required fields missing
// or mistyped, DNA booleans absent, enums out of range. Not retryable; the
// producer must emit a corrected contract.
type ShapeError struct {
	Problems []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid contract shape: %s", strings.Join(e.Problems, "; "))
}

// TraceabilityError reports a file path that omits the story identifier.
// Every path a contract references must contain its StoryID as a substring so
// deliverables remain attributable across the whole chain. Not retryable.
type TraceabilityError struct {
	StoryID string
	Path    string
}

func (e *TraceabilityError) Error() string {
	return fmt.Sprintf("file path %q does not contain story id %q", e.Path, e.StoryID)
}

// SequenceError reports an illegal (source, target) agent pair. The pipeline
// transition table is a closed set; anything outside it is rejected at
// delegation time. Not retryable.
type SequenceError struct {
	Source AgentType
	Target AgentType
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("illegal agent sequence: %s -> %s", e.Source, e.Target)
}
