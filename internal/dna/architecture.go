package dna

import (
	"fmt"
	"strings"
)

// Architecture principles: evaluated over the code artifact's reported
// metrics and (for the text-scanning checks) its source snippets. Agents that
// produce no code artifact fail these checks; whether that matters is decided
// by the agent's required-principle subset.

// statefulIndicators flag backend source that smells of per-instance state.
// An explicit stateless justification on the endpoint overrides the check.
var statefulIndicators = []string{"session", "cache", "global "}

// businessLogicMarkers flag business logic leaking into UI components.
var businessLogicMarkers = []string{"validate", "process", "calculate", "transform"}

// evaluateAPIFirst checks that any UI is backed by at least one REST-style
// endpoint, that endpoint paths live under /api/, and that estimated response
// times fit the budget.
func evaluateAPIFirst(a *Artifacts, cfg *Config) Check {
	if a.Code == nil {
		return failedCheck("api_first: no code artifact to evaluate")
	}

	var violations []string

	if len(a.Code.Components) > 0 && len(a.Code.Endpoints) == 0 {
		violations = append(violations, "api_first: UI components exist but no API endpoint backs them")
	}

	for _, endpoint := range a.Code.Endpoints {
		if !strings.HasPrefix(endpoint.Path, "/api/") {
			violations = append(violations, fmt.Sprintf(
				"api_first: endpoint path %q must begin with /api/", endpoint.Path))
		}
		if endpoint.EstimatedResponseMs > cfg.MaxEndpointResponseMs {
			violations = append(violations, fmt.Sprintf(
				"api_first: endpoint %s %s estimates %.0f ms response (max %.0f ms)",
				endpoint.Method, endpoint.Path, endpoint.EstimatedResponseMs, cfg.MaxEndpointResponseMs))
		}
	}

	return scoreBudgetCheck(violations, len(a.Code.Endpoints)+1,
		"design the API before the UI and keep endpoints under /api/")
}

// evaluateStatelessBackend scans endpoint source for stateful indicators.
func evaluateStatelessBackend(a *Artifacts, cfg *Config) Check {
	if a.Code == nil {
		return failedCheck("stateless_backend: no code artifact to evaluate")
	}

	var violations []string
	for _, endpoint := range a.Code.Endpoints {
		if endpoint.StatelessJustification != "" {
			continue
		}
		lowered := strings.ToLower(endpoint.Source)
		for _, indicator := range statefulIndicators {
			if strings.Contains(lowered, indicator) {
				violations = append(violations, fmt.Sprintf(
					"stateless_backend: endpoint %s %s contains stateful indicator %q",
					endpoint.Method, endpoint.Path, strings.TrimSpace(indicator)))
			}
		}
	}

	return scoreBudgetCheck(violations, len(a.Code.Endpoints)+1,
		"keep all state in the database or the request; justify any exception explicitly")
}

// evaluateSeparationOfConcerns counts business-logic markers in UI component
// source. More than the configured maximum is a violation.
func evaluateSeparationOfConcerns(a *Artifacts, cfg *Config) Check {
	if a.Code == nil {
		return failedCheck("separation_of_concerns: no code artifact to evaluate")
	}

	var violations []string
	for _, component := range a.Code.Components {
		lowered := strings.ToLower(component.Source)
		markers := 0
		for _, marker := range businessLogicMarkers {
			markers += strings.Count(lowered, marker)
		}
		if markers > cfg.MaxBusinessLogicMarkers {
			violations = append(violations, fmt.Sprintf(
				"separation_of_concerns: component %q contains %d business-logic markers (max %d)",
				component.Name, markers, cfg.MaxBusinessLogicMarkers))
		}
	}

	return scoreBudgetCheck(violations, len(a.Code.Components)+1,
		"move business logic behind the API; components render and delegate")
}

// evaluateSimplicityFirst measures structural simplicity of whatever the
// agent produced: mean cyclomatic complexity for code, flow depth for a UX
// specification, suite size for a test suite.
func evaluateSimplicityFirst(a *Artifacts, cfg *Config) Check {
	switch {
	case a.Code != nil:
		return checkCodeSimplicity(a.Code, cfg)
	case a.UX != nil:
		return checkUXSimplicity(a.UX, cfg)
	case a.Tests != nil:
		return checkSuiteSimplicity(a.Tests, cfg)
	default:
		return failedCheck("simplicity_first: no structured artifact to evaluate")
	}
}

func checkCodeSimplicity(code *CodeArtifact, cfg *Config) Check {
	total := 0
	units := 0
	for _, component := range code.Components {
		total += component.CyclomaticComplexity
		units++
	}
	for _, endpoint := range code.Endpoints {
		total += endpoint.CyclomaticComplexity
		units++
	}
	if units == 0 {
		return failedCheck("simplicity_first: code artifact reports no units to measure")
	}

	mean := float64(total) / float64(units)
	if mean <= cfg.MaxMeanComplexity {
		// Simpler code scores higher within the compliant band.
		return Check{Compliant: true, Score: clampScore(5.0 - mean/cfg.MaxMeanComplexity)}
	}

	return Check{
		Compliant: false,
		Score:     clampScore(5.0 - mean/2.0),
		Violations: []string{fmt.Sprintf(
			"simplicity_first: mean cyclomatic complexity %.1f exceeds %.1f",
			mean, cfg.MaxMeanComplexity)},
		Recommendations: []string{"prefer the simplest structure that satisfies the story"},
	}
}

func checkUXSimplicity(ux *UXSpec, cfg *Config) Check {
	if len(ux.Screens) == 0 {
		return failedCheck("simplicity_first: ux specification has no screens")
	}

	var violations []string
	for _, screen := range ux.Screens {
		if screen.InteractionSteps > cfg.MaxInteractionSteps {
			violations = append(violations, fmt.Sprintf(
				"simplicity_first: screen %q needs %d interaction steps (max %d)",
				screen.Name, screen.InteractionSteps, cfg.MaxInteractionSteps))
		}
		if screen.NavigationDepth > cfg.MaxNavigationDepth {
			violations = append(violations, fmt.Sprintf(
				"simplicity_first: screen %q sits at navigation depth %d (max %d)",
				screen.Name, screen.NavigationDepth, cfg.MaxNavigationDepth))
		}
	}

	return scoreBudgetCheck(violations, len(ux.Screens),
		"flatten the flow so every screen is a short step from the start")
}

func checkSuiteSimplicity(tests *TestSuiteArtifact, cfg *Config) Check {
	if tests.TestCount == 0 {
		return failedCheck("simplicity_first: test suite reports no tests")
	}
	total := tests.TotalMinutes()
	if total <= cfg.MaxSuiteMinutes {
		return Check{Compliant: true, Score: clampScore(5.0 - total/cfg.MaxSuiteMinutes)}
	}
	return Check{
		Compliant: false,
		Score:     clampScore(5.0 - total/cfg.MaxSuiteMinutes),
		Violations: []string{fmt.Sprintf(
			"simplicity_first: suite wall time %.1f min exceeds %.1f min", total, cfg.MaxSuiteMinutes)},
		Recommendations: []string{"cut redundant cases until the suite fits its budget"},
	}
}
