package dna

import "strings"

// Narrative principles: policy-to-practice and holistic thinking are
// evaluated over the produced text and spec fields rather than code metrics.
// Both require a 4.0 score.

// policyIndicators and practiceIndicators anchor the policy-to-practice
// check: the artifact must connect the regulation side to the everyday side.
var policyIndicators = []string{"policy", "regulation", "directive", "guideline", "law"}

var practiceIndicators = []string{"practice", "everyday", "workflow", "scenario", "daily work", "hands-on"}

// holisticIndicators anchor the holistic-thinking check: the artifact should
// situate the feature in its organisational context.
var holisticIndicators = []string{"context", "stakeholder", "impact", "consequence", "organisation", "long-term"}

// evaluatePolicyToPractice scores how well the artifact text bridges policy
// language and practical application.
func evaluatePolicyToPractice(a *Artifacts, cfg *Config) Check {
	combined := strings.ToLower(strings.Join(a.Texts(), " "))
	if combined == "" {
		return failedCheck("policy_to_practice: no narrative text to evaluate")
	}

	policyHit := containsAny(combined, policyIndicators)
	practiceHit := containsAny(combined, practiceIndicators)

	score := 1.0
	if policyHit {
		score += 2.0
	}
	if practiceHit {
		score += 2.0
	}
	score = clampScore(score)

	var violations, recommendations []string
	if !policyHit {
		violations = append(violations, "policy_to_practice: artifact never names the policy being trained")
		recommendations = append(recommendations, "anchor the feature in the policy or regulation it teaches")
	}
	if !practiceHit {
		violations = append(violations, "policy_to_practice: artifact never connects to everyday practice")
		recommendations = append(recommendations, "show how the policy applies in a daily-work scenario")
	}

	return Check{
		Compliant:       score >= cfg.MinNarrativeScore,
		Score:           score,
		Violations:      violations,
		Recommendations: recommendations,
	}
}

// evaluateHolisticThinking scores how well the artifact situates the feature
// in its wider organisational context.
func evaluateHolisticThinking(a *Artifacts, cfg *Config) Check {
	combined := strings.ToLower(strings.Join(a.Texts(), " "))
	if combined == "" {
		return failedCheck("holistic_thinking: no narrative text to evaluate")
	}

	hits := 0
	for _, indicator := range holisticIndicators {
		if strings.Contains(combined, indicator) {
			hits++
		}
	}
	fraction := float64(hits) / float64(len(holisticIndicators))
	score := clampScore(1.0 + 4.0*fraction)

	var violations, recommendations []string
	if score < cfg.MinNarrativeScore {
		violations = append(violations, "holistic_thinking: artifact does not consider the wider organisational context")
		recommendations = append(recommendations, "address stakeholders, impact, and long-term consequences")
	}

	return Check{
		Compliant:       score >= cfg.MinNarrativeScore,
		Score:           score,
		Violations:      violations,
		Recommendations: recommendations,
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
