package dna

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Principle identifies one of the nine compliance axes.
type Principle string

const (
	PedagogicalValue Principle = "pedagogical_value"
	PolicyToPractice Principle = "policy_to_practice"
	TimeRespect      Principle = "time_respect"
	HolisticThinking Principle = "holistic_thinking"
	ProfessionalTone Principle = "professional_tone"

	APIFirst             Principle = "api_first"
	StatelessBackend     Principle = "stateless_backend"
	SeparationOfConcerns Principle = "separation_of_concerns"
	SimplicityFirst      Principle = "simplicity_first"
)

// DesignPrinciples returns the five design-principle axes.
func DesignPrinciples() []Principle {
	return []Principle{PedagogicalValue, PolicyToPractice, TimeRespect, HolisticThinking, ProfessionalTone}
}

// ArchitecturePrinciples returns the four architecture-principle axes.
func ArchitecturePrinciples() []Principle {
	return []Principle{APIFirst, StatelessBackend, SeparationOfConcerns, SimplicityFirst}
}

// Check is the outcome of evaluating one principle against an artifact set.
type Check struct {
	Compliant       bool     `json:"compliant"`
	Score           float64  `json:"score"`
	Violations      []string `json:"violations,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ReviewerMetrics is the summary digest the quality reviewer consumes. It is
// attached only to results produced by the quality_reviewer engine.
type ReviewerMetrics struct {
	AverageComponentComplexity float64 `json:"average_component_complexity"`
	AverageAPIComplexity       float64 `json:"average_api_complexity"`
	TestEffectiveness          float64 `json:"test_effectiveness"`
	DocumentationQuality       float64 `json:"documentation_quality"`
	OverallArchitectureScore   float64 `json:"overall_architecture_score"`
}

// Result is the scored compliance assessment an agent's engine produces.
// It serializes into the contract's "<agent>_dna_validation" block.
type Result struct {
	Agent            contract.AgentType   `json:"agent"`
	Checks           map[Principle]Check  `json:"checks"`
	OverallCompliant bool                 `json:"overall_compliant"`
	OverallScore     float64              `json:"overall_score"`
	Violations       []string             `json:"violations"`
	Recommendations  []string             `json:"recommendations"`
	Timestamp        time.Time            `json:"timestamp"`
	ReviewerMetrics  *ReviewerMetrics     `json:"quality_reviewer_metrics,omitempty"`
}

// Check returns the recorded check for a principle, or a zero check if the
// principle was never evaluated.
func (r *Result) Check(p Principle) Check {
	return r.Checks[p]
}

// clampScore bounds a raw score to the fixed [1.0, 5.0] scale. Thresholds are
// tunable; the scale is not.
func clampScore(score float64) float64 {
	if score < 1.0 {
		return 1.0
	}
	if score > 5.0 {
		return 5.0
	}
	return score
}

// meanScore averages the scores of the given principles. Returns the neutral
// midpoint when the list is empty.
func meanScore(checks map[Principle]Check, principles []Principle) float64 {
	if len(principles) == 0 {
		return 3.0
	}
	var sum float64
	for _, p := range principles {
		sum += checks[p].Score
	}
	return sum / float64(len(principles))
}

// failedCheck builds a non-compliant check with the lowest score, used when
// the artifact a principle depends on is missing. Missing artifacts yield
// compliance false, never an evaluation error.
func failedCheck(format string, a ...any) Check {
	return Check{
		Compliant:  false,
		Score:      1.0,
		Violations: []string{fmt.Sprintf(format, a...)},
	}
}

// formatViolations joins violations for error messages.
func formatViolations(violations []string) string {
	return strings.Join(violations, "; ")
}
