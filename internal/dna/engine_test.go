package dna

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// storyPayload re-encodes the compliant story helper as an untyped payload
// mapping, the shape it has when riding in a contract.
func storyPayload() map[string]any {
	s := compliantStory()
	return map[string]any{
		"feature_summary":     s.FeatureSummary,
		"user_stories":        s.UserStories,
		"learning_objectives": s.LearningObjectives,
		"acceptance_criteria": s.AcceptanceCriteria,
		"assessment_elements": s.AssessmentElements,
		"engagement_elements": s.EngagementElements,
	}
}

func codePayload(code *CodeArtifact) map[string]any {
	components := make([]any, 0, len(code.Components))
	for _, c := range code.Components {
		functions := make([]any, 0, len(c.Functions))
		for _, f := range c.Functions {
			functions = append(functions, map[string]any{
				"name":                  f.Name,
				"cyclomatic_complexity": f.CyclomaticComplexity,
				"nesting_depth":         f.NestingDepth,
			})
		}
		components = append(components, map[string]any{
			"name":                  c.Name,
			"file":                  c.File,
			"lines":                 c.Lines,
			"cyclomatic_complexity": c.CyclomaticComplexity,
			"nesting_depth":         c.NestingDepth,
			"source":                c.Source,
			"documentation":         c.Documentation,
			"functions":             functions,
		})
	}
	endpoints := make([]any, 0, len(code.Endpoints))
	for _, e := range code.Endpoints {
		endpoints = append(endpoints, map[string]any{
			"path":                    e.Path,
			"method":                  e.Method,
			"cyclomatic_complexity":   e.CyclomaticComplexity,
			"estimated_response_ms":   e.EstimatedResponseMs,
			"source":                  e.Source,
			"stateless_justification": e.StatelessJustification,
		})
	}
	return map[string]any{"components": components, "endpoints": endpoints}
}

// handoff builds the minimal input/output contract pair an engine evaluates:
// the story context rides in on required data, the deliverables ride out.
func handoff(source, target contract.AgentType, deliverable map[string]any) (*contract.Contract, *contract.Contract) {
	in := &contract.Contract{
		ContractVersion: contract.CurrentVersion,
		StoryID:         "STORY-GH-1001",
		SourceAgent:     contract.AgentProjectManager,
		TargetAgent:     source,
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{"story_breakdown": storyPayload()},
		},
	}
	out := &contract.Contract{
		ContractVersion: contract.CurrentVersion,
		StoryID:         "STORY-GH-1001",
		SourceAgent:     source,
		TargetAgent:     target,
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableData: deliverable,
		},
	}
	return in, out
}

func TestEngineEvaluate(t *testing.T) {
	t.Run("compliant developer handoff passes all nine", func(t *testing.T) {
		engine := NewEngine(contract.AgentDeveloper, nil, nil)
		in, out := handoff(contract.AgentDeveloper, contract.AgentTestEngineer,
			map[string]any{"code": codePayload(compliantCode())})

		result, err := engine.Evaluate(in, out)
		require.NoError(t, err)

		assert.True(t, result.OverallCompliant)
		assert.Empty(t, result.Violations)
		assert.GreaterOrEqual(t, result.OverallScore, 1.0)
		assert.LessOrEqual(t, result.OverallScore, 5.0)
		assert.Nil(t, result.ReviewerMetrics)
		assert.NoError(t, engine.Validate(result))
	})

	t.Run("project manager is not gated on architecture", func(t *testing.T) {
		engine := NewEngine(contract.AgentProjectManager, nil, nil)
		in, out := handoff(contract.AgentProjectManager, contract.AgentGameDesigner,
			map[string]any{"story_breakdown": storyPayload()})

		result, err := engine.Evaluate(in, out)
		require.NoError(t, err)

		// The architecture checks fail without a code artifact but the
		// project manager's gate only covers the design principles.
		assert.False(t, result.Check(APIFirst).Compliant)
		assert.True(t, result.OverallCompliant)
		assert.Empty(t, result.Violations)
	})

	t.Run("non-compliant developer output blocks the handoff", func(t *testing.T) {
		engine := NewEngine(contract.AgentDeveloper, nil, nil)
		code := compliantCode()
		code.Endpoints[0].Path = "/registrations"
		in, out := handoff(contract.AgentDeveloper, contract.AgentTestEngineer,
			map[string]any{"code": codePayload(code)})

		result, err := engine.Evaluate(in, out)
		require.NoError(t, err)
		assert.False(t, result.OverallCompliant)
		assert.NotEmpty(t, result.Violations)

		err = engine.Validate(result)
		require.Error(t, err)
		var complianceErr *ComplianceError
		require.ErrorAs(t, err, &complianceErr)
		assert.Equal(t, contract.AgentDeveloper, complianceErr.Agent)
		assert.Contains(t, err.Error(), "developer output failed compliance")
	})

	t.Run("reviewer result carries the metrics digest", func(t *testing.T) {
		engine := NewEngine(contract.AgentQualityReviewer, nil, nil)
		in, out := handoff(contract.AgentQualityReviewer, contract.AgentProjectManager,
			map[string]any{
				"code":        codePayload(compliantCode()),
				"test_suites": map[string]any{"unit_minutes": 1.5, "parallel": true, "coverage_percent": 92, "test_count": 40},
				"review_report": map[string]any{
					"summary":  "The feature fits the policy and daily work of the municipal staff.",
					"approved": true,
				},
			})

		result, err := engine.Evaluate(in, out)
		require.NoError(t, err)
		require.NotNil(t, result.ReviewerMetrics)
		assert.InDelta(t, 4.0, result.ReviewerMetrics.AverageComponentComplexity, 0.001)
		assert.InDelta(t, 5.0, result.ReviewerMetrics.AverageAPIComplexity, 0.001)
		assert.InDelta(t, 4.68, result.ReviewerMetrics.TestEffectiveness, 0.001)
		assert.Equal(t, 5.0, result.ReviewerMetrics.DocumentationQuality)
		assert.Greater(t, result.ReviewerMetrics.OverallArchitectureScore, 4.0)
	})

	t.Run("timestamp comes from the injected clock", func(t *testing.T) {
		engine := NewEngine(contract.AgentProjectManager, nil, nil)
		frozen := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		engine.now = func() time.Time { return frozen }

		in, out := handoff(contract.AgentProjectManager, contract.AgentGameDesigner,
			map[string]any{"story_breakdown": storyPayload()})
		result, err := engine.Evaluate(in, out)
		require.NoError(t, err)
		assert.Equal(t, frozen, result.Timestamp)
	})

	t.Run("nil output contract is an error", func(t *testing.T) {
		engine := NewEngine(contract.AgentDeveloper, nil, nil)
		_, err := engine.Evaluate(nil, nil)
		assert.Error(t, err)
	})

	t.Run("malformed artifact payload is an error", func(t *testing.T) {
		engine := NewEngine(contract.AgentDeveloper, nil, nil)
		in, out := handoff(contract.AgentDeveloper, contract.AgentTestEngineer,
			map[string]any{"code": []any{"not", "a", "mapping"}})
		_, err := engine.Evaluate(in, out)
		assert.Error(t, err)
	})
}

func TestRequiredPrinciples(t *testing.T) {
	assert.Len(t, requiredPrinciples(contract.AgentDeveloper), 9)
	assert.Len(t, requiredPrinciples(contract.AgentQualityReviewer), 9)
	assert.Len(t, requiredPrinciples(contract.AgentGameDesigner), 6)
	assert.Len(t, requiredPrinciples(contract.AgentTestEngineer), 3)
	assert.Len(t, requiredPrinciples(contract.AgentProjectManager), 5)
	assert.Len(t, requiredPrinciples(contract.AgentQATester), 5)
}

func TestValidateNilResult(t *testing.T) {
	engine := NewEngine(contract.AgentDeveloper, nil, nil)
	err := engine.Validate(nil)
	require.Error(t, err)
	var complianceErr *ComplianceError
	assert.False(t, errors.As(err, &complianceErr))
}
