package dna

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Engine evaluates the nine principles for one agent role. Engines are cheap
// and stateless apart from configuration; construct one per agent at startup.
type Engine struct {
	agent  contract.AgentType
	cfg    *Config
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates an engine for the given agent role. A nil config uses
// DefaultConfig; a nil logger uses zap.NewNop.
func NewEngine(agent contract.AgentType, cfg *Config, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		agent:  agent,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// requiredPrinciples returns the subset of principles an agent's result must
// satisfy for overall compliance. Every principle is still evaluated and
// scored; only the required ones gate the handoff. Agents that synthesize code
// or review it answer for all nine; narrative-only agents answer for the
// design five; the game designer additionally answers for structural
// simplicity, and the test engineer for the budget and tone axes its suites
// can violate.
func requiredPrinciples(agent contract.AgentType) []Principle {
	switch agent {
	case contract.AgentDeveloper, contract.AgentQualityReviewer:
		return append(DesignPrinciples(), ArchitecturePrinciples()...)
	case contract.AgentGameDesigner:
		return append(DesignPrinciples(), SimplicityFirst)
	case contract.AgentTestEngineer:
		return []Principle{TimeRespect, SimplicityFirst, ProfessionalTone}
	default:
		return DesignPrinciples()
	}
}

// Evaluate scores the agent's produced artifacts against all nine principles.
// The input contract supplies upstream context (the story breakdown rides in
// required data); the output contract supplies the deliverables under
// evaluation. Malformed artifact payloads are the only error path; a missing
// artifact is scored as non-compliance on the principles that need it.
func (e *Engine) Evaluate(in, out *contract.Contract) (*Result, error) {
	if out == nil {
		return nil, fmt.Errorf("cannot evaluate a nil output contract")
	}

	var requiredData map[string]any
	if in != nil {
		requiredData = in.InputRequirements.RequiredData
	}
	artifacts, err := DecodeArtifacts(out.OutputSpecifications.DeliverableData, requiredData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifacts for %s: %w", e.agent, err)
	}

	checks := map[Principle]Check{
		PedagogicalValue: evaluatePedagogicalValue(artifacts, e.cfg),
		PolicyToPractice: evaluatePolicyToPractice(artifacts, e.cfg),
		TimeRespect:      evaluateTimeRespect(e.agent, artifacts, e.cfg),
		HolisticThinking: evaluateHolisticThinking(artifacts, e.cfg),
		ProfessionalTone: evaluateProfessionalTone(artifacts, e.cfg),

		APIFirst:             evaluateAPIFirst(artifacts, e.cfg),
		StatelessBackend:     evaluateStatelessBackend(artifacts, e.cfg),
		SeparationOfConcerns: evaluateSeparationOfConcerns(artifacts, e.cfg),
		SimplicityFirst:      evaluateSimplicityFirst(artifacts, e.cfg),
	}

	result := &Result{
		Agent:     e.agent,
		Checks:    checks,
		Timestamp: e.now().UTC(),
	}

	result.OverallCompliant = true
	for _, principle := range requiredPrinciples(e.agent) {
		check := checks[principle]
		if !check.Compliant {
			result.OverallCompliant = false
		}
		result.Violations = append(result.Violations, check.Violations...)
		result.Recommendations = append(result.Recommendations, check.Recommendations...)
	}

	result.OverallScore = e.overallScore(artifacts, checks)

	if e.agent == contract.AgentQualityReviewer {
		result.ReviewerMetrics = computeReviewerMetrics(artifacts, checks)
	}

	e.logger.Debug("compliance evaluated",
		zap.String("agent", string(e.agent)),
		zap.String("story_id", out.StoryID),
		zap.Bool("compliant", result.OverallCompliant),
		zap.Float64("score", result.OverallScore))

	return result, nil
}

// overallScore composes the weighted 1..5 score: the design-principle mean
// carries most weight, the architecture mean less, and a per-role extension
// axis least. The extension axis reflects what each role is uniquely
// accountable for: documentation for the developer, test effectiveness for
// the test engineer, architecture health for the reviewer, and design quality
// for the narrative roles.
func (e *Engine) overallScore(a *Artifacts, checks map[Principle]Check) float64 {
	design := meanScore(checks, DesignPrinciples())
	architecture := meanScore(checks, ArchitecturePrinciples())

	var extension float64
	switch e.agent {
	case contract.AgentDeveloper:
		extension = documentationQuality(a)
	case contract.AgentTestEngineer:
		extension = testEffectiveness(a)
	case contract.AgentQualityReviewer:
		extension = architecture
	default:
		extension = design
	}

	score := design*e.cfg.DesignWeight +
		architecture*e.cfg.ArchitectureWeight +
		extension*e.cfg.ExtensionWeight
	return clampScore(score)
}

// ComplianceError reports a blocked handoff: the agent's result failed one or
// more required principles. It carries the full violation and recommendation
// lists so callers can surface actionable feedback.
type ComplianceError struct {
	Agent           contract.AgentType
	Violations      []string
	Recommendations []string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("%s output failed compliance: %s", e.Agent, formatViolations(e.Violations))
}

// Validate converts a non-compliant result into a *ComplianceError. Compliant
// results pass regardless of score; scores inform, compliance gates.
func (e *Engine) Validate(r *Result) error {
	if r == nil {
		return fmt.Errorf("cannot validate a nil compliance result")
	}
	if r.OverallCompliant {
		return nil
	}
	return &ComplianceError{
		Agent:           r.Agent,
		Violations:      r.Violations,
		Recommendations: r.Recommendations,
	}
}
