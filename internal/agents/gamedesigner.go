package agents

import (
	"context"
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// GameDesigner turns a story breakdown into a UX specification: one short
// screen per user story, each within the ten-minute session budget.
type GameDesigner struct{}

// NewGameDesigner returns the reference game-designer agent.
func NewGameDesigner() *GameDesigner { return &GameDesigner{} }

func (g *GameDesigner) AgentType() contract.AgentType { return contract.AgentGameDesigner }

func (g *GameDesigner) ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	a, err := artifactsFrom(in)
	if err != nil {
		return nil, err
	}
	if a.Story == nil {
		return nil, missingArtifact(g.AgentType(), keyStoryBreakdown)
	}

	screens := make([]dna.Screen, 0, len(a.Story.UserStories))
	for i := range a.Story.UserStories {
		screens = append(screens, dna.Screen{
			Name: fmt.Sprintf("step-%d", i+1),
			UIElements: []dna.UIElement{
				{Name: "scenario text", Kind: "text"},
				{Name: "choice list", Kind: "list"},
				{Name: "confirm", Kind: "button"},
			},
			InteractionSteps: 3,
			NavigationDepth:  1,
			Texts:            []string{"Pick the policy step that fits the case."},
		})
	}

	ux := &dna.UXSpec{
		Screens:                    screens,
		EstimatedCompletionMinutes: 2.5 * float64(len(screens)),
	}

	persona := personaFrom(in)
	required := forwarded(a, persona)
	required[keyUXSpec] = ux

	return contract.Derive(in, contract.Patch{
		TargetAgent:       contract.AgentDeveloper,
		InputRequirements: contract.InputRequirements{RequiredData: required},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: []string{fmt.Sprintf("docs/specs/%s_ux.json", in.StoryID)},
			DeliverableData:  map[string]any{keyUXSpec: ux},
		},
		QualityGates:    []string{"ux_within_time_budget"},
		HandoffCriteria: []string{"every screen fits the session budget"},
	})
}

func (g *GameDesigner) CheckQualityGate(gate string, out *contract.Contract) (bool, error) {
	switch gate {
	case "ux_within_time_budget":
		a, err := artifactsFrom(out)
		if err != nil {
			return false, err
		}
		if a.UX == nil || len(a.UX.Screens) == 0 {
			return false, nil
		}
		return a.UX.EstimatedCompletionMinutes <= 10, nil
	default:
		return false, fmt.Errorf("unknown quality gate %q", gate)
	}
}

func (g *GameDesigner) KnownQualityGates() []string {
	return []string{"ux_within_time_budget"}
}
