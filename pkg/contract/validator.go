package contract

import (
	"fmt"
	"strings"
)

// ValidationResult accumulates structural validation findings. Validation
// never panics or returns a Go error for contract-content problems, so
// callers can distinguish a bad contract from a broken validator.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// add records a validation failure.
func (r *ValidationResult) add(format string, a ...any) {
	r.OK = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, a...))
}

// Validate performs structural validation of a contract: required fields
// present, enums in range, all nine DNA booleans present, and every file path
// containing the story identifier. Failures accumulate; the result lists all
// of them. A minimal contract carrying only the required fields passes:
// optional blocks never cause rejection (version tolerance).
func Validate(c *Contract) ValidationResult {
	result := ValidationResult{OK: true}
	if c == nil {
		result.add("contract is nil")
		return result
	}

	if c.ContractVersion == "" {
		result.add("contract_version is required")
	} else if c.ContractVersion != CurrentVersion {
		result.add("unsupported contract_version: %q (expected %q)", c.ContractVersion, CurrentVersion)
	}

	if c.StoryID == "" {
		result.add("story_id is required")
	}

	if err := c.SourceAgent.Validate(); err != nil {
		result.add("invalid source_agent: %v", err)
	}

	if err := c.TargetAgent.Validate(); err != nil {
		result.add("invalid target_agent: %v", err)
	} else if c.TargetAgent.IsOriginator() {
		result.add("target_agent %q is an originator alias, not a real agent", c.TargetAgent)
	}

	// The nine DNA booleans must all have been present when the block was
	// decoded. Blocks built in process always pass this check.
	for _, key := range c.DNACompliance.MissingKeys() {
		result.add("dna_compliance missing required key %s", key)
	}

	// Traceability: every referenced path must carry the story id.
	if c.StoryID != "" {
		for _, path := range c.FilePaths() {
			if !strings.Contains(path, c.StoryID) {
				result.add("file path %q does not contain story id %q", path, c.StoryID)
			}
		}
	}

	return result
}

// ValidateSequence checks the contract's (source, target) pair against the
// given transition table. A nil table means the default pipeline table.
func ValidateSequence(c *Contract, table SequenceTable) error {
	if table == nil {
		table = DefaultSequences()
	}
	return table.Validate(c.SourceAgent, c.TargetAgent)
}
