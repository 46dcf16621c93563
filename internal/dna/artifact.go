package dna

import (
	"encoding/json"
	"fmt"
)

// Artifact views decoded from contract payload maps.
//
// The contract spine is strictly typed but the deliverable payload is an
// untyped mapping; agents report their produced artifacts under conventional
// keys. Decoding is lenient: an absent key yields a nil view, and the
// evaluators treat missing views as non-compliance for the principles that
// depend on them.

// Payload keys recognized by DecodeArtifacts.
const (
	keyStoryBreakdown = "story_breakdown"
	keyUXSpec         = "ux_specification"
	keyCode           = "code"
	keyTestSuites     = "test_suites"
	keyQAReport       = "qa_report"
	keyReviewReport   = "review_report"
)

// StoryBreakdown is the project manager's decomposition of a feature request.
type StoryBreakdown struct {
	FeatureSummary     string   `json:"feature_summary"`
	UserStories        []string `json:"user_stories"`
	LearningObjectives []string `json:"learning_objectives"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	AssessmentElements []string `json:"assessment_elements"`
	EngagementElements []string `json:"engagement_elements"`
}

// UIElement is a single interactive element on a screen.
type UIElement struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Screen is one screen of the game designer's UX specification.
type Screen struct {
	Name             string      `json:"name"`
	UIElements       []UIElement `json:"ui_elements"`
	InteractionSteps int         `json:"interaction_steps"`
	NavigationDepth  int         `json:"navigation_depth"`
	Texts            []string    `json:"texts"`
}

// UXSpec is the game designer's produced artifact.
type UXSpec struct {
	Screens                    []Screen `json:"screens"`
	EstimatedCompletionMinutes float64  `json:"estimated_completion_minutes"`
}

// FunctionMetric carries per-function complexity numbers reported by the
// developer's generator.
type FunctionMetric struct {
	Name                 string `json:"name"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity"`
	NestingDepth         int    `json:"nesting_depth"`
}

// Component is one produced UI component with its reported metrics.
type Component struct {
	Name                 string           `json:"name"`
	File                 string           `json:"file"`
	Lines                int              `json:"lines"`
	CyclomaticComplexity int              `json:"cyclomatic_complexity"`
	NestingDepth         int              `json:"nesting_depth"`
	Source               string           `json:"source"`
	Documentation        string           `json:"documentation"`
	Functions            []FunctionMetric `json:"functions"`
}

// Endpoint is one produced API endpoint with its reported metrics.
type Endpoint struct {
	Path                   string  `json:"path"`
	Method                 string  `json:"method"`
	CyclomaticComplexity   int     `json:"cyclomatic_complexity"`
	EstimatedResponseMs    float64 `json:"estimated_response_ms"`
	Source                 string  `json:"source"`
	StatelessJustification string  `json:"stateless_justification"`
}

// CodeArtifact is the developer's produced artifact.
type CodeArtifact struct {
	Components []Component `json:"components"`
	Endpoints  []Endpoint  `json:"endpoints"`
}

// TestSuiteArtifact is the test engineer's produced artifact.
type TestSuiteArtifact struct {
	UnitMinutes        float64 `json:"unit_minutes"`
	IntegrationMinutes float64 `json:"integration_minutes"`
	E2EMinutes         float64 `json:"e2e_minutes"`
	Parallel           bool    `json:"parallel"`
	CoveragePercent    float64 `json:"coverage_percent"`
	TestCount          int     `json:"test_count"`
}

// TotalMinutes returns the whole suite's wall time assuming serial execution.
func (t *TestSuiteArtifact) TotalMinutes() float64 {
	return t.UnitMinutes + t.IntegrationMinutes + t.E2EMinutes
}

// QAReport is the QA tester's produced artifact.
type QAReport struct {
	PersonaTested     string   `json:"persona_tested"`
	CompletionMinutes float64  `json:"completion_minutes"`
	Findings          []string `json:"findings"`
	Summary           string   `json:"summary"`
}

// ReviewReport is the quality reviewer's produced artifact.
type ReviewReport struct {
	Summary         string   `json:"summary"`
	Approved        bool     `json:"approved"`
	Recommendations []string `json:"recommendations"`
}

// Artifacts is the decoded artifact set an engine evaluates. Any view may be
// nil when the producing agent did not report it.
type Artifacts struct {
	Story  *StoryBreakdown
	UX     *UXSpec
	Code   *CodeArtifact
	Tests  *TestSuiteArtifact
	QA     *QAReport
	Review *ReviewReport
}

// DecodeArtifacts extracts typed artifact views from the output contract's
// deliverable data, falling back to the input contract's required data for
// story context carried downstream. Unknown keys are ignored; a present but
// malformed view is a decode error.
func DecodeArtifacts(deliverableData, requiredData map[string]any) (*Artifacts, error) {
	a := &Artifacts{}

	if err := decodeView(deliverableData, keyStoryBreakdown, &a.Story); err != nil {
		return nil, err
	}
	if a.Story == nil {
		// Downstream agents receive the story breakdown as input context.
		if err := decodeView(requiredData, keyStoryBreakdown, &a.Story); err != nil {
			return nil, err
		}
	}

	if err := decodeView(deliverableData, keyUXSpec, &a.UX); err != nil {
		return nil, err
	}
	if err := decodeView(deliverableData, keyCode, &a.Code); err != nil {
		return nil, err
	}
	if err := decodeView(deliverableData, keyTestSuites, &a.Tests); err != nil {
		return nil, err
	}
	if err := decodeView(deliverableData, keyQAReport, &a.QA); err != nil {
		return nil, err
	}
	if err := decodeView(deliverableData, keyReviewReport, &a.Review); err != nil {
		return nil, err
	}

	return a, nil
}

// decodeView re-marshals a payload sub-map into a typed view. Absent keys
// leave the target nil.
func decodeView[T any](data map[string]any, key string, target **T) error {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s: %w", key, err)
	}

	view := new(T)
	if err := json.Unmarshal(encoded, view); err != nil {
		return fmt.Errorf("malformed %s artifact: %w", key, err)
	}

	*target = view
	return nil
}

// Texts gathers every human-readable string across the artifact set, in a
// stable order. Tone analysis runs over this collection.
func (a *Artifacts) Texts() []string {
	var texts []string

	if a.Story != nil {
		if a.Story.FeatureSummary != "" {
			texts = append(texts, a.Story.FeatureSummary)
		}
		texts = append(texts, a.Story.UserStories...)
		texts = append(texts, a.Story.LearningObjectives...)
		texts = append(texts, a.Story.AcceptanceCriteria...)
	}

	if a.UX != nil {
		for _, screen := range a.UX.Screens {
			texts = append(texts, screen.Texts...)
		}
	}

	if a.Code != nil {
		for _, component := range a.Code.Components {
			if component.Documentation != "" {
				texts = append(texts, component.Documentation)
			}
		}
	}

	if a.QA != nil {
		texts = append(texts, a.QA.Findings...)
		if a.QA.Summary != "" {
			texts = append(texts, a.QA.Summary)
		}
	}

	if a.Review != nil {
		if a.Review.Summary != "" {
			texts = append(texts, a.Review.Summary)
		}
		texts = append(texts, a.Review.Recommendations...)
	}

	return texts
}
