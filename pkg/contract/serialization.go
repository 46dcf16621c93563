package contract

import (
	"encoding/json"
	"fmt"
)

// Serialization helpers for converting between contracts and Redis hashes.
//
// Redis stores data as string-to-string maps (hashes). The contract spine is
// stored as individual fields for queryability; nested blocks (DNA, input and
// output specifications, gate lists) are JSON-encoded into single fields.

// ToHash converts a Contract to a Redis hash format.
func ToHash(c *Contract) (map[string]interface{}, error) {
	dnaJSON, err := json.Marshal(c.DNACompliance)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dna_compliance: %w", err)
	}

	inputJSON, err := json.Marshal(c.InputRequirements)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input_requirements: %w", err)
	}

	outputJSON, err := json.Marshal(c.OutputSpecifications)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output_specifications: %w", err)
	}

	gatesJSON, err := json.Marshal(c.QualityGates)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quality_gates: %w", err)
	}

	criteriaJSON, err := json.Marshal(c.HandoffCriteria)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal handoff_criteria: %w", err)
	}

	return map[string]interface{}{
		"contract_version":      c.ContractVersion,
		"story_id":              c.StoryID,
		"source_agent":          string(c.SourceAgent),
		"target_agent":          string(c.TargetAgent),
		"dna_compliance":        string(dnaJSON),
		"input_requirements":    string(inputJSON),
		"output_specifications": string(outputJSON),
		"quality_gates":         string(gatesJSON),
		"handoff_criteria":      string(criteriaJSON),
	}, nil
}

// FromHash converts a Redis hash back to a Contract.
func FromHash(hash map[string]string) (*Contract, error) {
	c := &Contract{
		ContractVersion: hash["contract_version"],
		StoryID:         hash["story_id"],
		SourceAgent:     AgentType(hash["source_agent"]),
		TargetAgent:     AgentType(hash["target_agent"]),
	}

	if raw := hash["dna_compliance"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.DNACompliance); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dna_compliance: %w", err)
		}
	}

	if raw := hash["input_requirements"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.InputRequirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal input_requirements: %w", err)
		}
	}

	if raw := hash["output_specifications"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.OutputSpecifications); err != nil {
			return nil, fmt.Errorf("failed to unmarshal output_specifications: %w", err)
		}
	}

	if raw := hash["quality_gates"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.QualityGates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quality_gates: %w", err)
		}
	}

	if raw := hash["handoff_criteria"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.HandoffCriteria); err != nil {
			return nil, fmt.Errorf("failed to unmarshal handoff_criteria: %w", err)
		}
	}

	return c, nil
}
