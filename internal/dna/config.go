// Package dna implements the nine-principle compliance engine applied to
// every agent handoff. Each pipeline agent runs a per-agent engine over the
// artifacts it produced; the scored result rides in the output contract and a
// non-compliant result blocks the handoff entirely.
//
// Five design principles (pedagogical value, policy-to-practice, time
// respect, holistic thinking, professional tone) and four architecture
// principles (API first, stateless backend, separation of concerns,
// simplicity first) are evaluated by pure, deterministic rules over the
// artifact metrics and text the agent reported.
package dna

// Config carries the tunable thresholds and term sets for principle
// evaluation. Thresholds may be adjusted per deployment; the 1..5 score scale
// is fixed.
type Config struct {
	// Time respect: game designer artifacts.
	MaxUIElementsPerScreen int
	MaxInteractionSteps    int
	MaxNavigationDepth     int
	MaxCompletionMinutes   float64

	// Time respect: developer artifacts.
	MaxUIComponentComplexity int
	MaxEndpointComplexity    int
	MaxFunctionComplexity    int
	MaxNestingDepth          int
	MaxFileLines             int

	// Time respect: test engineer artifacts.
	MaxSuiteMinutes          float64
	MaxUnitMinutes           float64
	MaxIntegrationMinutes    float64
	MaxE2EMinutes            float64
	ParallelThresholdMinutes float64

	// Pedagogical value and narrative principles.
	MinPedagogicalScore float64
	MinNarrativeScore   float64

	// Professional tone.
	RequiredTerms        []string
	ForbiddenCasualTerms []string
	MaxReadingGrade      float64
	TermPresenceWeight   float64
	CasualAbsenceWeight  float64
	ComplexityFitWeight  float64

	// Architecture principles.
	MaxEndpointResponseMs   float64
	MaxBusinessLogicMarkers int
	MaxMeanComplexity       float64

	// Overall score composition.
	DesignWeight       float64
	ArchitectureWeight float64
	ExtensionWeight    float64
}

// DefaultConfig returns the standard thresholds. The tone weights follow the
// 2.0 / 1.5 / 1.0 scheme: domain-term presence counts most, casual-term
// absence next, reading-level fit least.
func DefaultConfig() *Config {
	return &Config{
		MaxUIElementsPerScreen: 8,
		MaxInteractionSteps:    5,
		MaxNavigationDepth:     3,
		MaxCompletionMinutes:   10,

		MaxUIComponentComplexity: 10,
		MaxEndpointComplexity:    8,
		MaxFunctionComplexity:    5,
		MaxNestingDepth:          3,
		MaxFileLines:             200,

		MaxSuiteMinutes:          10,
		MaxUnitMinutes:           2,
		MaxIntegrationMinutes:    5,
		MaxE2EMinutes:            8,
		ParallelThresholdMinutes: 3,

		MinPedagogicalScore: 4.0,
		MinNarrativeScore:   4.0,

		RequiredTerms: []string{
			"municipality", "municipal", "policy", "training",
			"competence", "professional", "practice",
		},
		ForbiddenCasualTerms: []string{
			"awesome", "cool", "super", "gonna", "wanna",
			"stuff", "guys", "lol", "crazy",
		},
		MaxReadingGrade:     8,
		TermPresenceWeight:  2.0,
		CasualAbsenceWeight: 1.5,
		ComplexityFitWeight: 1.0,

		MaxEndpointResponseMs:   200,
		MaxBusinessLogicMarkers: 2,
		MaxMeanComplexity:       8,

		DesignWeight:       0.60,
		ArchitectureWeight: 0.30,
		ExtensionWeight:    0.10,
	}
}
