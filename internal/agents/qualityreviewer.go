package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// QualityReviewer judges the whole chain. Its deliverable bundles every
// reviewed artifact alongside the review report so the final assessment
// covers all nine principles, and its verdict routes the story back to the
// project manager for closing or rework.
type QualityReviewer struct{}

// NewQualityReviewer returns the reference quality-reviewer agent.
func NewQualityReviewer() *QualityReviewer { return &QualityReviewer{} }

func (r *QualityReviewer) AgentType() contract.AgentType { return contract.AgentQualityReviewer }

func (r *QualityReviewer) ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	a, err := artifactsFrom(in)
	if err != nil {
		return nil, err
	}
	for key, present := range map[string]bool{
		keyStoryBreakdown: a.Story != nil,
		keyUXSpec:         a.UX != nil,
		keyCode:           a.Code != nil,
		keyTestSuites:     a.Tests != nil,
		keyQAReport:       a.QA != nil,
	} {
		if !present {
			return nil, missingArtifact(r.AgentType(), key)
		}
	}

	var recommendations []string
	if a.Tests.CoveragePercent < 90 {
		recommendations = append(recommendations, "Raise test coverage before the next release.")
	}
	for _, finding := range a.QA.Findings {
		if strings.Contains(strings.ToLower(finding), "blocker") {
			recommendations = append(recommendations, finding)
		}
	}

	review := &dna.ReviewReport{
		Summary:         "The work meets the policy goal and fits daily practice.",
		Approved:        len(recommendations) == 0,
		Recommendations: recommendations,
	}

	persona := personaFrom(in)
	required := forwarded(a, persona)
	required[keyReviewReport] = review

	return contract.Derive(in, contract.Patch{
		TargetAgent:       contract.AgentProjectManager,
		InputRequirements: contract.InputRequirements{RequiredData: required},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: []string{fmt.Sprintf("docs/reviews/%s_review.md", in.StoryID)},
			DeliverableData: map[string]any{
				keyReviewReport: review,
				keyUXSpec:       a.UX,
				keyCode:         a.Code,
				keyTestSuites:   a.Tests,
				keyQAReport:     a.QA,
			},
		},
		QualityGates:    []string{"review_verdict_recorded"},
		HandoffCriteria: []string{"review verdict recorded for the project manager"},
	})
}

func (r *QualityReviewer) CheckQualityGate(gate string, out *contract.Contract) (bool, error) {
	switch gate {
	case "review_verdict_recorded":
		a, err := artifactsFrom(out)
		if err != nil {
			return false, err
		}
		if a.Review == nil || a.Review.Summary == "" {
			return false, nil
		}
		return a.Review.Approved || len(a.Review.Recommendations) > 0, nil
	default:
		return false, fmt.Errorf("unknown quality gate %q", gate)
	}
}

func (r *QualityReviewer) KnownQualityGates() []string {
	return []string{"review_verdict_recorded"}
}
