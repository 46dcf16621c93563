package contract

import "strings"

// Fields carries the inputs for building a new contract. Version defaults to
// CurrentVersion when empty.
type Fields struct {
	Version              string
	StoryID              string
	SourceAgent          AgentType
	TargetAgent          AgentType
	DNACompliance        DNACompliance
	InputRequirements    InputRequirements
	OutputSpecifications OutputSpecifications
	QualityGates         []string
	HandoffCriteria      []string
}

// New builds an immutable contract from the given fields. It returns a
// *ShapeError listing every structural problem if any required field is
// missing or invalid. Slices and maps are copied so later mutation of the
// fields cannot reach the emitted contract.
func New(fields Fields) (*Contract, error) {
	version := fields.Version
	if version == "" {
		version = CurrentVersion
	}

	c := &Contract{
		ContractVersion:      version,
		StoryID:              fields.StoryID,
		SourceAgent:          fields.SourceAgent,
		TargetAgent:          fields.TargetAgent,
		DNACompliance:        fields.DNACompliance,
		InputRequirements:    fields.InputRequirements,
		OutputSpecifications: fields.OutputSpecifications,
		QualityGates:         fields.QualityGates,
		HandoffCriteria:      fields.HandoffCriteria,
	}

	if result := Validate(c); !result.OK {
		return nil, &ShapeError{Problems: result.Errors}
	}

	return c.Clone(), nil
}

// Patch carries the fields an agent supplies when deriving its output
// contract from the one it consumed.
type Patch struct {
	TargetAgent          AgentType
	InputRequirements    InputRequirements
	OutputSpecifications OutputSpecifications
	QualityGates         []string
	HandoffCriteria      []string
}

// Derive builds the next contract in a chain. The story identifier and DNA
// block are carried forward from prev, the source agent becomes prev's target
// agent, and the patch supplies the new target and work description. Any file
// path in the patch that omits prev's story id fails derivation with a
// *TraceabilityError before the contract is built.
func Derive(prev *Contract, patch Patch) (*Contract, error) {
	for _, path := range append(append([]string{}, patch.InputRequirements.RequiredFiles...), patch.OutputSpecifications.DeliverableFiles...) {
		if !strings.Contains(path, prev.StoryID) {
			return nil, &TraceabilityError{StoryID: prev.StoryID, Path: path}
		}
	}

	return New(Fields{
		Version:              prev.ContractVersion,
		StoryID:              prev.StoryID,
		SourceAgent:          prev.TargetAgent,
		TargetAgent:          patch.TargetAgent,
		DNACompliance:        prev.DNACompliance,
		InputRequirements:    patch.InputRequirements,
		OutputSpecifications: patch.OutputSpecifications,
		QualityGates:         patch.QualityGates,
		HandoffCriteria:      patch.HandoffCriteria,
	})
}
