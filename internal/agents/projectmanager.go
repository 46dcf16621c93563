package agents

import (
	"context"
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// ProjectManager turns an originator request into a story breakdown, and
// closes the story when the quality reviewer approves it. An unapproved
// review loops the story back to the game designer with the reviewer's
// recommendations folded in as extra acceptance criteria.
type ProjectManager struct{}

// NewProjectManager returns the reference project-manager agent.
func NewProjectManager() *ProjectManager { return &ProjectManager{} }

func (p *ProjectManager) AgentType() contract.AgentType { return contract.AgentProjectManager }

func (p *ProjectManager) ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	if in.SourceAgent == contract.AgentQualityReviewer {
		return p.closeOrRework(in)
	}
	return p.breakDown(in)
}

// breakDown normalizes the originator's free-form request into the pipeline's
// story shape. The summary and learning objective are templated rather than
// copied: issue prose is whatever the reporter typed, but the breakdown has
// to read like training material.
func (p *ProjectManager) breakDown(in *contract.Contract) (*contract.Contract, error) {
	data := in.InputRequirements.RequiredData

	persona, _ := data[keyUserPersona].(string)
	if persona == "" {
		persona = DefaultPersona
	}

	criteria := stringsFrom(data["acceptance_criteria"])
	if len(criteria) == 0 {
		return nil, missingArtifact(p.AgentType(), "acceptance_criteria")
	}
	// Standing municipal acceptance criteria close every breakdown.
	criteria = append(criteria,
		"Each stakeholder sees the impact in context.",
		"The long-term consequence for the municipal organisation is clear.")

	story := &dna.StoryBreakdown{
		FeatureSummary: "Training for municipal staff on the policy behind this request. " +
			"Show how to apply the policy in daily work and practice.",
		UserStories: []string{
			fmt.Sprintf("As %s I practice the task in a real case.", persona),
		},
		LearningObjectives: []string{"apply the policy in daily work"},
		AcceptanceCriteria: criteria,
		AssessmentElements: []string{"quiz on the policy"},
		EngagementElements: []string{"scenario practice"},
	}

	return contract.Derive(in, contract.Patch{
		TargetAgent: contract.AgentGameDesigner,
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{
				keyUserPersona:    persona,
				keyStoryBreakdown: story,
			},
		},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: []string{fmt.Sprintf("docs/stories/%s_breakdown.md", in.StoryID)},
			DeliverableData:  map[string]any{keyStoryBreakdown: story},
		},
		QualityGates:    []string{"story_breakdown_complete"},
		HandoffCriteria: []string{"story broken down into implementable tasks"},
	})
}

// closeOrRework ends the pipeline on an approved review and re-opens the
// design phase otherwise.
func (p *ProjectManager) closeOrRework(in *contract.Contract) (*contract.Contract, error) {
	a, err := artifactsFrom(in)
	if err != nil {
		return nil, err
	}
	if a.Review == nil {
		return nil, missingArtifact(p.AgentType(), keyReviewReport)
	}
	if a.Review.Approved {
		// Story complete; nothing left to delegate.
		return nil, nil
	}

	if a.Story == nil {
		return nil, missingArtifact(p.AgentType(), keyStoryBreakdown)
	}
	story := *a.Story
	story.AcceptanceCriteria = append(append([]string{}, story.AcceptanceCriteria...),
		a.Review.Recommendations...)

	persona := personaFrom(in)
	return contract.Derive(in, contract.Patch{
		TargetAgent: contract.AgentGameDesigner,
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{
				keyUserPersona:    persona,
				keyStoryBreakdown: &story,
			},
		},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: []string{fmt.Sprintf("docs/stories/%s_breakdown.md", in.StoryID)},
			DeliverableData:  map[string]any{keyStoryBreakdown: &story},
		},
		QualityGates:    []string{"story_breakdown_complete"},
		HandoffCriteria: []string{"review findings folded back into the story"},
	})
}

func (p *ProjectManager) CheckQualityGate(gate string, out *contract.Contract) (bool, error) {
	switch gate {
	case "story_breakdown_complete":
		a, err := artifactsFrom(out)
		if err != nil {
			return false, err
		}
		return a.Story != nil &&
			a.Story.FeatureSummary != "" &&
			len(a.Story.LearningObjectives) > 0 &&
			len(a.Story.AcceptanceCriteria) > 0, nil
	default:
		return false, fmt.Errorf("unknown quality gate %q", gate)
	}
}

func (p *ProjectManager) KnownQualityGates() []string {
	return []string{"story_breakdown_complete"}
}
