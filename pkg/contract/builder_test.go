package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("builds a valid contract with defaulted version", func(t *testing.T) {
		c, err := New(Fields{
			StoryID:       "STORY-GH-42",
			SourceAgent:   AgentGitHub,
			TargetAgent:   AgentProjectManager,
			DNACompliance: AllTrue(),
			InputRequirements: InputRequirements{
				RequiredData: map[string]any{"feature_description": "secure login"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, CurrentVersion, c.ContractVersion)
		assert.Equal(t, "STORY-GH-42", c.StoryID)
	})

	t.Run("missing fields yield a shape error", func(t *testing.T) {
		_, err := New(Fields{TargetAgent: AgentProjectManager})
		require.Error(t, err)

		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.NotEmpty(t, shapeErr.Problems)
	})

	t.Run("built contract does not alias the input slices", func(t *testing.T) {
		gates := []string{"story_complete"}
		c, err := New(Fields{
			StoryID:       "STORY-GH-42",
			SourceAgent:   AgentGitHub,
			TargetAgent:   AgentProjectManager,
			DNACompliance: AllTrue(),
			QualityGates:  gates,
		})
		require.NoError(t, err)

		gates[0] = "changed"
		assert.Equal(t, "story_complete", c.QualityGates[0])
	})
}

func TestDerive(t *testing.T) {
	prev, err := New(Fields{
		StoryID:       "STORY-GH-7",
		SourceAgent:   AgentProjectManager,
		TargetAgent:   AgentGameDesigner,
		DNACompliance: AllTrue(),
	})
	require.NoError(t, err)

	t.Run("carries story id and bumps source agent", func(t *testing.T) {
		next, err := Derive(prev, Patch{
			TargetAgent: AgentDeveloper,
			OutputSpecifications: OutputSpecifications{
				DeliverableFiles: []string{"frontend/STORY-GH-7/LoginForm.tsx"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "STORY-GH-7", next.StoryID)
		assert.Equal(t, AgentGameDesigner, next.SourceAgent)
		assert.Equal(t, AgentDeveloper, next.TargetAgent)
		assert.Equal(t, prev.DNACompliance.DesignPrinciples, next.DNACompliance.DesignPrinciples)
	})

	t.Run("patch path without story id fails derivation", func(t *testing.T) {
		_, err := Derive(prev, Patch{
			TargetAgent: AgentDeveloper,
			OutputSpecifications: OutputSpecifications{
				DeliverableFiles: []string{"frontend/LoginForm.tsx"},
			},
		})
		require.Error(t, err)

		var traceErr *TraceabilityError
		require.ErrorAs(t, err, &traceErr)
		assert.Equal(t, "STORY-GH-7", traceErr.StoryID)
		assert.Equal(t, "frontend/LoginForm.tsx", traceErr.Path)
	})

	t.Run("missing target agent fails shape validation", func(t *testing.T) {
		_, err := Derive(prev, Patch{})
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
	})
}
