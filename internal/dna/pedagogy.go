package dna

import (
	"fmt"
	"strings"
)

// Pedagogical value: the artifact must teach something. Scoring is the
// fraction of declared learning objectives explicitly referenced in the
// artifact text, weighted by the presence of assessment and engagement
// elements.

// evaluatePedagogicalValue scores learning-objective coverage for the
// artifact set.
func evaluatePedagogicalValue(a *Artifacts, cfg *Config) Check {
	if a.Story == nil || len(a.Story.LearningObjectives) == 0 {
		return failedCheck("pedagogical_value: no declared learning objectives to cover")
	}

	// The declaration list itself does not count as a reference: coverage is
	// measured against the rest of the artifact text.
	declared := make(map[string]struct{}, len(a.Story.LearningObjectives))
	for _, objective := range a.Story.LearningObjectives {
		declared[objective] = struct{}{}
	}
	var scan []string
	for _, text := range a.Texts() {
		if _, ok := declared[text]; ok {
			continue
		}
		scan = append(scan, text)
	}
	combined := strings.ToLower(strings.Join(scan, " "))

	covered := 0
	var missed []string
	for _, objective := range a.Story.LearningObjectives {
		if strings.Contains(combined, strings.ToLower(objective)) {
			covered++
		} else {
			missed = append(missed, objective)
		}
	}
	coverage := float64(covered) / float64(len(a.Story.LearningObjectives))

	// Assessment and engagement elements weight the coverage score: a fully
	// covered objective set without either caps below the pass threshold.
	weight := 0.7
	if len(a.Story.AssessmentElements) > 0 {
		weight += 0.15
	}
	if len(a.Story.EngagementElements) > 0 {
		weight += 0.15
	}

	score := clampScore((1.0 + 4.0*coverage) * weight)

	var violations, recommendations []string
	for _, objective := range missed {
		violations = append(violations, fmt.Sprintf(
			"pedagogical_value: learning objective %q is never referenced", objective))
	}
	if len(a.Story.AssessmentElements) == 0 {
		recommendations = append(recommendations, "add an assessment element so learning can be verified")
	}
	if len(a.Story.EngagementElements) == 0 {
		recommendations = append(recommendations, "add an engagement element to keep the learner active")
	}

	return Check{
		Compliant:       score >= cfg.MinPedagogicalScore,
		Score:           score,
		Violations:      violations,
		Recommendations: recommendations,
	}
}
