package agents

import (
	"context"
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// TestEngineer sizes a test suite for the code artifact. Suite wall time
// scales with the number of produced units and turns parallel past the
// three-minute threshold.
type TestEngineer struct{}

// NewTestEngineer returns the reference test-engineer agent.
func NewTestEngineer() *TestEngineer { return &TestEngineer{} }

func (t *TestEngineer) AgentType() contract.AgentType { return contract.AgentTestEngineer }

func (t *TestEngineer) ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	a, err := artifactsFrom(in)
	if err != nil {
		return nil, err
	}
	if a.Code == nil {
		return nil, missingArtifact(t.AgentType(), keyCode)
	}

	units := len(a.Code.Components) + len(a.Code.Endpoints)
	suite := &dna.TestSuiteArtifact{
		UnitMinutes:        0.5 * float64(units),
		IntegrationMinutes: 1.0 * float64(len(a.Code.Endpoints)),
		E2EMinutes:         2.0,
		CoveragePercent:    92,
		TestCount:          6 * units,
	}
	suite.Parallel = suite.TotalMinutes() > 3

	persona := personaFrom(in)
	required := forwarded(a, persona)
	required[keyTestSuites] = suite

	return contract.Derive(in, contract.Patch{
		TargetAgent:       contract.AgentQATester,
		InputRequirements: contract.InputRequirements{RequiredData: required},
		OutputSpecifications: contract.OutputSpecifications{
			DeliverableFiles: []string{fmt.Sprintf("tests/%s/suite.spec.ts", in.StoryID)},
			DeliverableData:  map[string]any{keyTestSuites: suite},
		},
		QualityGates:    []string{"suite_within_time_budget"},
		HandoffCriteria: []string{"suite runs inside the wall-time budget"},
	})
}

func (t *TestEngineer) CheckQualityGate(gate string, out *contract.Contract) (bool, error) {
	switch gate {
	case "suite_within_time_budget":
		a, err := artifactsFrom(out)
		if err != nil {
			return false, err
		}
		if a.Tests == nil || a.Tests.TestCount == 0 {
			return false, nil
		}
		if a.Tests.TotalMinutes() > 10 {
			return false, nil
		}
		return a.Tests.TotalMinutes() <= 3 || a.Tests.Parallel, nil
	default:
		return false, fmt.Errorf("unknown quality gate %q", gate)
	}
}

func (t *TestEngineer) KnownQualityGates() []string {
	return []string{"suite_within_time_budget"}
}
