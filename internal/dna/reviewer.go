package dna

// Reviewer metrics summarize the whole pipeline's output for the final
// quality gate. They are derived from the same artifact views the principle
// evaluators consume, so the reviewer never re-parses upstream payloads.

// computeReviewerMetrics builds the digest attached to quality_reviewer
// results. The architecture score is the mean of the four architecture
// principle checks already evaluated.
func computeReviewerMetrics(a *Artifacts, checks map[Principle]Check) *ReviewerMetrics {
	return &ReviewerMetrics{
		AverageComponentComplexity: averageComponentComplexity(a),
		AverageAPIComplexity:       averageAPIComplexity(a),
		TestEffectiveness:          testEffectiveness(a),
		DocumentationQuality:       documentationQuality(a),
		OverallArchitectureScore:   meanScore(checks, ArchitecturePrinciples()),
	}
}

func averageComponentComplexity(a *Artifacts) float64 {
	if a.Code == nil || len(a.Code.Components) == 0 {
		return 0
	}
	total := 0
	for _, component := range a.Code.Components {
		total += component.CyclomaticComplexity
	}
	return float64(total) / float64(len(a.Code.Components))
}

func averageAPIComplexity(a *Artifacts) float64 {
	if a.Code == nil || len(a.Code.Endpoints) == 0 {
		return 0
	}
	total := 0
	for _, endpoint := range a.Code.Endpoints {
		total += endpoint.CyclomaticComplexity
	}
	return float64(total) / float64(len(a.Code.Endpoints))
}

// testEffectiveness scores the test suite on the 1..5 scale from reported
// coverage, with a floor when no tests exist at all.
func testEffectiveness(a *Artifacts) float64 {
	if a.Tests == nil || a.Tests.TestCount == 0 {
		return 1.0
	}
	coverage := a.Tests.CoveragePercent / 100.0
	if coverage > 1.0 {
		coverage = 1.0
	}
	return clampScore(1.0 + 4.0*coverage)
}

// documentationQuality scores the fraction of components carrying doc text on
// the 1..5 scale. A code artifact with no components is neutral.
func documentationQuality(a *Artifacts) float64 {
	if a.Code == nil || len(a.Code.Components) == 0 {
		return 3.0
	}
	documented := 0
	for _, component := range a.Code.Components {
		if component.Documentation != "" {
			documented++
		}
	}
	fraction := float64(documented) / float64(len(a.Code.Components))
	return clampScore(1.0 + 4.0*fraction)
}
