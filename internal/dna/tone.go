package dna

import (
	"fmt"
	"strings"
	"unicode"
)

// Professional tone: text analysis over every human-readable string in the
// artifact set. Matching is case-insensitive; violation messages preserve the
// original casing of the offending text.

// evaluateProfessionalTone scores the professional-tone principle over the
// artifact texts.
func evaluateProfessionalTone(a *Artifacts, cfg *Config) Check {
	texts := a.Texts()
	if len(texts) == 0 {
		return failedCheck("professional_tone: no human-readable text to analyze")
	}

	combined := strings.Join(texts, " ")
	lowered := strings.ToLower(combined)

	var violations, recommendations []string

	// Domain terminology presence.
	matched := 0
	for _, term := range cfg.RequiredTerms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			matched++
		}
	}
	termFraction := 0.0
	if len(cfg.RequiredTerms) > 0 {
		termFraction = float64(matched) / float64(len(cfg.RequiredTerms))
	}
	if matched == 0 {
		violations = append(violations, "professional_tone: no domain terminology found in artifact text")
		recommendations = append(recommendations, "use established municipal-training terminology")
	}

	// Casual-term absence. Report the term as it appears in the source text.
	casualHits := 0
	for _, term := range cfg.ForbiddenCasualTerms {
		if idx := strings.Index(lowered, strings.ToLower(term)); idx >= 0 {
			casualHits++
			violations = append(violations, fmt.Sprintf(
				"professional_tone: casual term %q is not acceptable", combined[idx:idx+len(term)]))
		}
	}
	if casualHits > 0 {
		recommendations = append(recommendations, "replace casual wording with professional phrasing")
	}

	// Reading-grade cap over the combined text.
	grade := readingGrade(combined)
	complexityFit := 1.0
	if grade > cfg.MaxReadingGrade {
		complexityFit = 0.0
		violations = append(violations, fmt.Sprintf(
			"professional_tone: reading grade %.1f exceeds cap %.1f", grade, cfg.MaxReadingGrade))
		recommendations = append(recommendations, "shorten sentences and prefer plain words")
	}

	casualAbsence := 1.0
	if casualHits > 0 {
		casualAbsence = 0.0
	}

	totalWeight := cfg.TermPresenceWeight + cfg.CasualAbsenceWeight + cfg.ComplexityFitWeight
	weighted := (termFraction*cfg.TermPresenceWeight +
		casualAbsence*cfg.CasualAbsenceWeight +
		complexityFit*cfg.ComplexityFitWeight) / totalWeight

	return Check{
		Compliant:       len(violations) == 0,
		Score:           clampScore(1.0 + 4.0*weighted),
		Violations:      violations,
		Recommendations: recommendations,
	}
}

// readingGrade estimates the Flesch-Kincaid grade level of a text. The
// syllable heuristic counts vowel groups per word, which is close enough for
// a bounded-complexity gate.
func readingGrade(text string) float64 {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return 0
	}

	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	grade := 0.39*(float64(len(words))/float64(sentences)) +
		11.8*(float64(syllables)/float64(len(words))) - 15.59
	if grade < 0 {
		grade = 0
	}
	return grade
}

// countSyllables approximates syllables as maximal vowel groups, minimum one.
func countSyllables(word string) int {
	count := 0
	inGroup := false
	for _, r := range strings.ToLower(word) {
		if strings.ContainsRune("aeiouyåäö", r) {
			if !inGroup {
				count++
				inGroup = true
			}
		} else {
			inGroup = false
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}
