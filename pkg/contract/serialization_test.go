package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullContract returns a contract exercising every field, including an
// attached agent validation block.
func fullContract(t *testing.T) *Contract {
	t.Helper()

	c, err := New(Fields{
		StoryID:       "STORY-GH-55",
		SourceAgent:   AgentGameDesigner,
		TargetAgent:   AgentDeveloper,
		DNACompliance: AllTrue(),
		InputRequirements: InputRequirements{
			RequiredFiles:       []string{"docs/specs/STORY-GH-55_ux.json"},
			RequiredData:        map[string]any{"user_persona": "Anna"},
			RequiredValidations: []string{"ux_spec_complete"},
		},
		OutputSpecifications: OutputSpecifications{
			DeliverableFiles:   []string{"frontend/STORY-GH-55/LoginForm.tsx"},
			DeliverableData:    map[string]any{"component_count": float64(3)},
			ValidationCriteria: map[string]any{"lint": "clean"},
		},
		QualityGates:    []string{"code_compiles", "lint_clean"},
		HandoffCriteria: []string{"all components implemented"},
	})
	require.NoError(t, err)

	return c.WithAgentValidation(AgentGameDesigner, json.RawMessage(`{"overall_compliant":true,"overall_score":4.5}`))
}

func TestJSONRoundTrip(t *testing.T) {
	original := fullContract(t)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Contract
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.ContractVersion, decoded.ContractVersion)
	assert.Equal(t, original.StoryID, decoded.StoryID)
	assert.Equal(t, original.SourceAgent, decoded.SourceAgent)
	assert.Equal(t, original.TargetAgent, decoded.TargetAgent)
	assert.Equal(t, original.DNACompliance.DesignPrinciples, decoded.DNACompliance.DesignPrinciples)
	assert.Equal(t, original.DNACompliance.Architecture, decoded.DNACompliance.Architecture)
	assert.Equal(t, original.InputRequirements, decoded.InputRequirements)
	assert.Equal(t, original.OutputSpecifications, decoded.OutputSpecifications)
	assert.Equal(t, original.QualityGates, decoded.QualityGates)
	assert.Equal(t, original.HandoffCriteria, decoded.HandoffCriteria)
	assert.JSONEq(t,
		string(original.DNACompliance.AgentValidations["game_designer_dna_validation"]),
		string(decoded.DNACompliance.AgentValidations["game_designer_dna_validation"]))

	// The decoded contract is itself structurally valid.
	assert.True(t, Validate(&decoded).OK)
}

func TestWireFormatEnums(t *testing.T) {
	// Enum values travel as lowercase snake-case strings.
	data, err := json.Marshal(fullContract(t))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "game_designer", wire["source_agent"])
	assert.Equal(t, "developer", wire["target_agent"])

	dna, ok := wire["dna_compliance"].(map[string]any)
	require.True(t, ok)
	design, ok := dna["design_principles_validation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, design["pedagogical_value"])
}

func TestHashRoundTrip(t *testing.T) {
	original := fullContract(t)

	hash, err := ToHash(original)
	require.NoError(t, err)

	// Redis returns hashes as string-to-string maps.
	stringHash := make(map[string]string, len(hash))
	for key, value := range hash {
		stringHash[key] = value.(string)
	}

	decoded, err := FromHash(stringHash)
	require.NoError(t, err)

	assert.Equal(t, original.StoryID, decoded.StoryID)
	assert.Equal(t, original.SourceAgent, decoded.SourceAgent)
	assert.Equal(t, original.InputRequirements, decoded.InputRequirements)
	assert.Equal(t, original.OutputSpecifications, decoded.OutputSpecifications)
	assert.Equal(t, original.QualityGates, decoded.QualityGates)
	assert.True(t, Validate(decoded).OK)
}

func TestFromHashRejectsCorruptFields(t *testing.T) {
	_, err := FromHash(map[string]string{
		"contract_version": CurrentVersion,
		"story_id":         "STORY-GH-1",
		"dna_compliance":   "{not json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dna_compliance")
}
