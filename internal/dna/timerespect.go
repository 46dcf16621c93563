package dna

import (
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Time respect: the bounded-cost principle. Municipal users get ten minutes,
// developers get bounded complexity, test suites get bounded wall time. The
// applicable sub-checks depend on which agent produced the artifact.

// evaluateTimeRespect scores the time-respect principle for the given agent's
// artifact set.
func evaluateTimeRespect(agent contract.AgentType, a *Artifacts, cfg *Config) Check {
	switch agent {
	case contract.AgentGameDesigner:
		if a.UX == nil {
			return failedCheck("time_respect: no ux_specification artifact to evaluate")
		}
		return checkUXTimeRespect(a.UX, cfg)

	case contract.AgentDeveloper:
		if a.Code == nil {
			return failedCheck("time_respect: no code artifact to evaluate")
		}
		return checkCodeTimeRespect(a.Code, cfg)

	case contract.AgentTestEngineer:
		if a.Tests == nil {
			return failedCheck("time_respect: no test_suites artifact to evaluate")
		}
		return checkSuiteTimeRespect(a.Tests, cfg)

	default:
		// Narrative agents: their artifacts carry no quantitative cost, but a
		// QA completion measurement above budget still counts against them.
		if a.QA != nil && a.QA.CompletionMinutes > cfg.MaxCompletionMinutes {
			return Check{
				Compliant: false,
				Score:     clampScore(5 - (a.QA.CompletionMinutes - cfg.MaxCompletionMinutes)),
				Violations: []string{fmt.Sprintf(
					"time_respect: measured completion time %.1f min exceeds %.1f min budget",
					a.QA.CompletionMinutes, cfg.MaxCompletionMinutes)},
				Recommendations: []string{"shorten the feature flow to fit the completion-time budget"},
			}
		}
		return Check{Compliant: true, Score: 5.0}
	}
}

// checkUXTimeRespect applies the game-designer budgets: UI elements per
// screen, interaction steps, navigation depth, and estimated completion time.
func checkUXTimeRespect(ux *UXSpec, cfg *Config) Check {
	var violations []string

	for _, screen := range ux.Screens {
		if len(screen.UIElements) > cfg.MaxUIElementsPerScreen {
			violations = append(violations, fmt.Sprintf(
				"screen %q has %d UI elements (max %d)",
				screen.Name, len(screen.UIElements), cfg.MaxUIElementsPerScreen))
		}
		if screen.InteractionSteps > cfg.MaxInteractionSteps {
			violations = append(violations, fmt.Sprintf(
				"screen %q has %d interaction steps (max %d)",
				screen.Name, screen.InteractionSteps, cfg.MaxInteractionSteps))
		}
		if screen.NavigationDepth > cfg.MaxNavigationDepth {
			violations = append(violations, fmt.Sprintf(
				"screen %q sits at navigation depth %d (max %d)",
				screen.Name, screen.NavigationDepth, cfg.MaxNavigationDepth))
		}
	}

	if ux.EstimatedCompletionMinutes > cfg.MaxCompletionMinutes {
		violations = append(violations, fmt.Sprintf(
			"estimated completion time %.1f min exceeds %.1f min budget",
			ux.EstimatedCompletionMinutes, cfg.MaxCompletionMinutes))
	}

	return scoreBudgetCheck(violations, len(ux.Screens)+1,
		"simplify the flow: fewer elements, fewer steps, shallower navigation")
}

// checkCodeTimeRespect applies the developer budgets: component and endpoint
// complexity, per-function complexity, nesting depth, and file length.
func checkCodeTimeRespect(code *CodeArtifact, cfg *Config) Check {
	var violations []string

	for _, component := range code.Components {
		if component.CyclomaticComplexity > cfg.MaxUIComponentComplexity {
			violations = append(violations, fmt.Sprintf(
				"component %q has cyclomatic complexity %d (max %d)",
				component.Name, component.CyclomaticComplexity, cfg.MaxUIComponentComplexity))
		}
		if component.NestingDepth > cfg.MaxNestingDepth {
			violations = append(violations, fmt.Sprintf(
				"component %q has nesting depth %d (max %d)",
				component.Name, component.NestingDepth, cfg.MaxNestingDepth))
		}
		if component.Lines > cfg.MaxFileLines {
			violations = append(violations, fmt.Sprintf(
				"file %q is %d lines (max %d)",
				component.File, component.Lines, cfg.MaxFileLines))
		}
		for _, function := range component.Functions {
			if function.CyclomaticComplexity > cfg.MaxFunctionComplexity {
				violations = append(violations, fmt.Sprintf(
					"function %q has cyclomatic complexity %d (max %d)",
					function.Name, function.CyclomaticComplexity, cfg.MaxFunctionComplexity))
			}
		}
	}

	for _, endpoint := range code.Endpoints {
		if endpoint.CyclomaticComplexity > cfg.MaxEndpointComplexity {
			violations = append(violations, fmt.Sprintf(
				"endpoint %s %s has cyclomatic complexity %d (max %d)",
				endpoint.Method, endpoint.Path, endpoint.CyclomaticComplexity, cfg.MaxEndpointComplexity))
		}
	}

	total := len(code.Components) + len(code.Endpoints)
	return scoreBudgetCheck(violations, total,
		"split complex units until every function fits its complexity budget")
}

// checkSuiteTimeRespect applies the test-engineer budgets: per-stage and
// total wall time, plus the parallelism requirement above the threshold.
func checkSuiteTimeRespect(tests *TestSuiteArtifact, cfg *Config) Check {
	var violations []string

	if tests.UnitMinutes > cfg.MaxUnitMinutes {
		violations = append(violations, fmt.Sprintf(
			"unit tests take %.1f min (max %.1f)", tests.UnitMinutes, cfg.MaxUnitMinutes))
	}
	if tests.IntegrationMinutes > cfg.MaxIntegrationMinutes {
		violations = append(violations, fmt.Sprintf(
			"integration tests take %.1f min (max %.1f)", tests.IntegrationMinutes, cfg.MaxIntegrationMinutes))
	}
	if tests.E2EMinutes > cfg.MaxE2EMinutes {
		violations = append(violations, fmt.Sprintf(
			"end-to-end tests take %.1f min (max %.1f)", tests.E2EMinutes, cfg.MaxE2EMinutes))
	}
	if total := tests.TotalMinutes(); total > cfg.MaxSuiteMinutes {
		violations = append(violations, fmt.Sprintf(
			"total suite takes %.1f min (max %.1f)", total, cfg.MaxSuiteMinutes))
	}
	if tests.TotalMinutes() > cfg.ParallelThresholdMinutes && !tests.Parallel {
		violations = append(violations, fmt.Sprintf(
			"suite exceeds %.1f min and must enable parallel execution", cfg.ParallelThresholdMinutes))
	}

	return scoreBudgetCheck(violations, 4, "parallelize and trim slow tests")
}

// scoreBudgetCheck converts a violation count over a number of checked units
// into a clamped score. Zero violations is a perfect score; each violation
// costs proportionally more when fewer units were checked.
func scoreBudgetCheck(violations []string, checkedUnits int, recommendation string) Check {
	if len(violations) == 0 {
		return Check{Compliant: true, Score: 5.0}
	}
	if checkedUnits < 1 {
		checkedUnits = 1
	}

	penalty := 4.0 * float64(len(violations)) / float64(checkedUnits)
	return Check{
		Compliant:       false,
		Score:           clampScore(5.0 - penalty),
		Violations:      violations,
		Recommendations: []string{recommendation},
	}
}
