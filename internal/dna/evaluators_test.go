package dna

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// compliantStory returns a story breakdown whose text satisfies the narrative
// and tone checks: municipal terminology, policy and practice anchors, and
// organisational context.
func compliantStory() *StoryBreakdown {
	return &StoryBreakdown{
		FeatureSummary: "Training for staff on the data policy. " +
			"Show how it works in daily work at the desk.",
		UserStories: []string{
			"I practice the task in a real case.",
		},
		LearningObjectives: []string{"data policy"},
		AcceptanceCriteria: []string{
			"Each stakeholder sees the impact in context.",
			"The long-term consequence for the municipal organisation is clear.",
		},
		AssessmentElements: []string{"quiz"},
		EngagementElements: []string{"scenario branching"},
	}
}

func compliantUX() *UXSpec {
	return &UXSpec{
		Screens: []Screen{
			{
				Name:             "intro",
				UIElements:       []UIElement{{Name: "start", Kind: "button"}},
				InteractionSteps: 3,
				NavigationDepth:  1,
				Texts:            []string{"Welcome to the municipal training module."},
			},
		},
		EstimatedCompletionMinutes: 8,
	}
}

func compliantCode() *CodeArtifact {
	return &CodeArtifact{
		Components: []Component{
			{
				Name:                 "RegistrationForm",
				File:                 "RegistrationForm.tsx",
				Lines:                120,
				CyclomaticComplexity: 4,
				NestingDepth:         2,
				Source:               "return <form onSubmit={submit}>...</form>",
				Documentation:        "Shows the form for the data task.",
				Functions: []FunctionMetric{
					{Name: "submit", CyclomaticComplexity: 3, NestingDepth: 2},
				},
			},
		},
		Endpoints: []Endpoint{
			{
				Path:                 "/api/registrations",
				Method:               "POST",
				CyclomaticComplexity: 5,
				EstimatedResponseMs:  120,
				Source:               "insert into registrations ...",
			},
		},
	}
}

func TestEvaluateTimeRespect(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("ux within budget is compliant", func(t *testing.T) {
		check := evaluateTimeRespect(contract.AgentGameDesigner, &Artifacts{UX: compliantUX()}, cfg)
		assert.True(t, check.Compliant)
		assert.Equal(t, 5.0, check.Score)
	})

	t.Run("ux over completion budget is flagged", func(t *testing.T) {
		ux := compliantUX()
		ux.EstimatedCompletionMinutes = 14
		check := evaluateTimeRespect(contract.AgentGameDesigner, &Artifacts{UX: ux}, cfg)
		assert.False(t, check.Compliant)
		require.Len(t, check.Violations, 1)
		assert.Contains(t, check.Violations[0], "14.0 min")
	})

	t.Run("missing ux artifact fails without erroring", func(t *testing.T) {
		check := evaluateTimeRespect(contract.AgentGameDesigner, &Artifacts{}, cfg)
		assert.False(t, check.Compliant)
		assert.Equal(t, 1.0, check.Score)
	})

	t.Run("complex function is flagged for the developer", func(t *testing.T) {
		code := compliantCode()
		code.Components[0].Functions[0].CyclomaticComplexity = 9
		check := evaluateTimeRespect(contract.AgentDeveloper, &Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
		require.Len(t, check.Violations, 1)
		assert.Contains(t, check.Violations[0], `"submit"`)
	})

	t.Run("slow serial suite must parallelize", func(t *testing.T) {
		tests := &TestSuiteArtifact{UnitMinutes: 1, IntegrationMinutes: 4, Parallel: false, TestCount: 40, CoveragePercent: 90}
		check := evaluateTimeRespect(contract.AgentTestEngineer, &Artifacts{Tests: tests}, cfg)
		assert.False(t, check.Compliant)
		require.Len(t, check.Violations, 1)
		assert.Contains(t, check.Violations[0], "parallel")
	})

	t.Run("narrative agent inherits qa measurement", func(t *testing.T) {
		qa := &QAReport{CompletionMinutes: 12}
		check := evaluateTimeRespect(contract.AgentQATester, &Artifacts{QA: qa}, cfg)
		assert.False(t, check.Compliant)

		qa.CompletionMinutes = 9
		check = evaluateTimeRespect(contract.AgentQATester, &Artifacts{QA: qa}, cfg)
		assert.True(t, check.Compliant)
	})
}

func TestEvaluateProfessionalTone(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("professional municipal text passes", func(t *testing.T) {
		check := evaluateProfessionalTone(&Artifacts{Story: compliantStory()}, cfg)
		assert.True(t, check.Compliant)
		assert.GreaterOrEqual(t, check.Score, 4.0)
	})

	t.Run("casual term reported with original casing", func(t *testing.T) {
		story := compliantStory()
		story.UserStories = append(story.UserStories, "This module is Awesome for training.")
		check := evaluateProfessionalTone(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		require.NotEmpty(t, check.Violations)
		assert.Contains(t, strings.Join(check.Violations, " "), `"Awesome"`)
	})

	t.Run("no text fails", func(t *testing.T) {
		check := evaluateProfessionalTone(&Artifacts{}, cfg)
		assert.False(t, check.Compliant)
		assert.Equal(t, 1.0, check.Score)
	})
}

func TestEvaluatePedagogicalValue(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("full coverage with assessment and engagement passes", func(t *testing.T) {
		check := evaluatePedagogicalValue(&Artifacts{Story: compliantStory()}, cfg)
		assert.True(t, check.Compliant)
	})

	t.Run("unreferenced objective is a violation", func(t *testing.T) {
		story := compliantStory()
		story.LearningObjectives = append(story.LearningObjectives, "incident escalation routine")
		check := evaluatePedagogicalValue(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		require.NotEmpty(t, check.Violations)
		assert.Contains(t, check.Violations[0], "incident escalation routine")
	})

	t.Run("declaring an objective is not referencing it", func(t *testing.T) {
		story := compliantStory()
		story.LearningObjectives = []string{"records management routine"}
		check := evaluatePedagogicalValue(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		require.NotEmpty(t, check.Violations)
	})

	t.Run("missing assessment caps the score below passing", func(t *testing.T) {
		story := compliantStory()
		story.AssessmentElements = nil
		story.EngagementElements = nil
		check := evaluatePedagogicalValue(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		assert.NotEmpty(t, check.Recommendations)
	})

	t.Run("no story fails", func(t *testing.T) {
		check := evaluatePedagogicalValue(&Artifacts{}, cfg)
		assert.False(t, check.Compliant)
		assert.Equal(t, 1.0, check.Score)
	})
}

func TestNarrativePrinciples(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("policy and practice anchors score full marks", func(t *testing.T) {
		check := evaluatePolicyToPractice(&Artifacts{Story: compliantStory()}, cfg)
		assert.True(t, check.Compliant)
		assert.Equal(t, 5.0, check.Score)
	})

	t.Run("missing practice anchor halves the score", func(t *testing.T) {
		story := &StoryBreakdown{
			FeatureSummary:     "Training on the municipal data policy.",
			LearningObjectives: []string{"data policy"},
		}
		check := evaluatePolicyToPractice(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		assert.Equal(t, 3.0, check.Score)
	})

	t.Run("holistic context terms accumulate", func(t *testing.T) {
		check := evaluateHolisticThinking(&Artifacts{Story: compliantStory()}, cfg)
		assert.True(t, check.Compliant)
	})

	t.Run("context-free text fails holistic thinking", func(t *testing.T) {
		story := &StoryBreakdown{FeatureSummary: "A form."}
		check := evaluateHolisticThinking(&Artifacts{Story: story}, cfg)
		assert.False(t, check.Compliant)
		assert.NotEmpty(t, check.Recommendations)
	})
}

func TestArchitecturePrinciples(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("clean code artifact passes all four", func(t *testing.T) {
		a := &Artifacts{Code: compliantCode()}
		assert.True(t, evaluateAPIFirst(a, cfg).Compliant)
		assert.True(t, evaluateStatelessBackend(a, cfg).Compliant)
		assert.True(t, evaluateSeparationOfConcerns(a, cfg).Compliant)
		assert.True(t, evaluateSimplicityFirst(a, cfg).Compliant)
	})

	t.Run("endpoint outside /api/ is flagged", func(t *testing.T) {
		code := compliantCode()
		code.Endpoints[0].Path = "/registrations"
		check := evaluateAPIFirst(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
		assert.Contains(t, check.Violations[0], "/api/")
	})

	t.Run("slow endpoint is flagged", func(t *testing.T) {
		code := compliantCode()
		code.Endpoints[0].EstimatedResponseMs = 450
		check := evaluateAPIFirst(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
	})

	t.Run("ui without endpoints fails api first", func(t *testing.T) {
		code := compliantCode()
		code.Endpoints = nil
		check := evaluateAPIFirst(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
	})

	t.Run("session state in endpoint source is flagged", func(t *testing.T) {
		code := compliantCode()
		code.Endpoints[0].Source = "session[user] = registration"
		check := evaluateStatelessBackend(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
		assert.Contains(t, check.Violations[0], "session")
	})

	t.Run("justified state passes", func(t *testing.T) {
		code := compliantCode()
		code.Endpoints[0].Source = "session[user] = registration"
		code.Endpoints[0].StatelessJustification = "read-through of the shared database session pool"
		check := evaluateStatelessBackend(&Artifacts{Code: code}, cfg)
		assert.True(t, check.Compliant)
	})

	t.Run("business logic in a component is flagged", func(t *testing.T) {
		code := compliantCode()
		code.Components[0].Source = "validate(input); process(input); calculate(total);"
		check := evaluateSeparationOfConcerns(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
		assert.Contains(t, check.Violations[0], `"RegistrationForm"`)
	})

	t.Run("high mean complexity fails simplicity", func(t *testing.T) {
		code := compliantCode()
		code.Components[0].CyclomaticComplexity = 20
		code.Endpoints[0].CyclomaticComplexity = 18
		check := evaluateSimplicityFirst(&Artifacts{Code: code}, cfg)
		assert.False(t, check.Compliant)
	})

	t.Run("ux structure stands in for simplicity without code", func(t *testing.T) {
		check := evaluateSimplicityFirst(&Artifacts{UX: compliantUX()}, cfg)
		assert.True(t, check.Compliant)

		ux := compliantUX()
		ux.Screens[0].NavigationDepth = 5
		check = evaluateSimplicityFirst(&Artifacts{UX: ux}, cfg)
		assert.False(t, check.Compliant)
	})

	t.Run("suite size stands in for simplicity without code", func(t *testing.T) {
		tests := &TestSuiteArtifact{UnitMinutes: 2, TestCount: 30, Parallel: true}
		check := evaluateSimplicityFirst(&Artifacts{Tests: tests}, cfg)
		assert.True(t, check.Compliant)
	})

	t.Run("missing code artifact fails every architecture check", func(t *testing.T) {
		a := &Artifacts{}
		for _, check := range []Check{
			evaluateAPIFirst(a, cfg),
			evaluateStatelessBackend(a, cfg),
			evaluateSeparationOfConcerns(a, cfg),
			evaluateSimplicityFirst(a, cfg),
		} {
			assert.False(t, check.Compliant)
			assert.Equal(t, 1.0, check.Score)
		}
	})
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, clampScore(-2.5))
	assert.Equal(t, 5.0, clampScore(9.1))
	assert.Equal(t, 3.3, clampScore(3.3))
}

func TestDecodeArtifacts(t *testing.T) {
	t.Run("story falls back to required data", func(t *testing.T) {
		required := map[string]any{
			"story_breakdown": map[string]any{"feature_summary": "municipal onboarding"},
		}
		a, err := DecodeArtifacts(map[string]any{}, required)
		require.NoError(t, err)
		require.NotNil(t, a.Story)
		assert.Equal(t, "municipal onboarding", a.Story.FeatureSummary)
	})

	t.Run("malformed view is an error", func(t *testing.T) {
		deliverable := map[string]any{"code": "not a mapping"}
		_, err := DecodeArtifacts(deliverable, nil)
		assert.Error(t, err)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		deliverable := map[string]any{"render_manifest": map[string]any{"x": 1}}
		a, err := DecodeArtifacts(deliverable, nil)
		require.NoError(t, err)
		assert.Nil(t, a.Code)
	})
}
