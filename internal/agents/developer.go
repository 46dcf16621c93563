package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Developer turns a UX specification into a code artifact: one thin React
// component per screen, backed by a single stateless API endpoint.
type Developer struct{}

// NewDeveloper returns the reference developer agent.
func NewDeveloper() *Developer { return &Developer{} }

func (d *Developer) AgentType() contract.AgentType { return contract.AgentDeveloper }

func (d *Developer) ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	a, err := artifactsFrom(in)
	if err != nil {
		return nil, err
	}
	if a.UX == nil {
		return nil, missingArtifact(d.AgentType(), keyUXSpec)
	}

	var files []string
	components := make([]dna.Component, 0, len(a.UX.Screens))
	for i, screen := range a.UX.Screens {
		name := fmt.Sprintf("Step%dView", i+1)
		file := fmt.Sprintf("frontend/%s/%s.tsx", in.StoryID, name)
		files = append(files, file)
		components = append(components, dna.Component{
			Name:                 name,
			File:                 file,
			Lines:                80,
			CyclomaticComplexity: 4,
			NestingDepth:         2,
			Source:               fmt.Sprintf("return <ScenarioStep screen=%q onConfirm={submit} />", screen.Name),
			Documentation:        "Shows one step of the training flow.",
			Functions: []dna.FunctionMetric{
				{Name: "render", CyclomaticComplexity: 2, NestingDepth: 1},
			},
		})
	}

	endpoint := dna.Endpoint{
		Path:                 fmt.Sprintf("/api/answers/%s", strings.ToLower(in.StoryID)),
		Method:               "POST",
		CyclomaticComplexity: 5,
		EstimatedResponseMs:  120,
		Source:               "persist the answer row and return the graded result",
	}
	files = append(files, fmt.Sprintf("backend/%s/answers.py", in.StoryID))

	code := &dna.CodeArtifact{
		Components: components,
		Endpoints:  []dna.Endpoint{endpoint},
	}

	persona := personaFrom(in)
	required := forwarded(a, persona)
	required[keyCode] = code

	return contract.Derive(in, contract.Patch{
		TargetAgent:       contract.AgentTestEngineer,
		InputRequirements: contract.InputRequirements{RequiredData: required},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: files,
			DeliverableData:  map[string]any{keyCode: code},
		},
		QualityGates:    []string{"code_within_complexity_budget"},
		HandoffCriteria: []string{"every unit fits its complexity budget"},
	})
}

func (d *Developer) CheckQualityGate(gate string, out *contract.Contract) (bool, error) {
	switch gate {
	case "code_within_complexity_budget":
		a, err := artifactsFrom(out)
		if err != nil {
			return false, err
		}
		if a.Code == nil || len(a.Code.Endpoints) == 0 {
			return false, nil
		}
		for _, component := range a.Code.Components {
			if component.CyclomaticComplexity > 10 || component.NestingDepth > 3 {
				return false, nil
			}
		}
		for _, endpoint := range a.Code.Endpoints {
			if endpoint.CyclomaticComplexity > 8 {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown quality gate %q", gate)
	}
}

func (d *Developer) KnownQualityGates() []string {
	return []string{"code_within_complexity_budget"}
}
