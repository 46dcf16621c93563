// Package contract provides the typed handoff message that flows between
// pipeline agents, together with the structural and sequence validation every
// handoff must pass. A contract is the atomic unit of coordination: each agent
// consumes exactly one contract and emits exactly one contract, and the story
// identifier inside it persists unchanged across the whole chain.
//
// Contracts are values, not entities. Once emitted they are never mutated;
// every helper that changes a contract returns a fresh copy.
package contract

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the only contract version this coordination core accepts.
const CurrentVersion = "1.0"

// AgentType identifies a pipeline participant. The originator aliases
// (github, system) may appear only as source agents; every other value is a
// real agent that can both receive and emit contracts.
type AgentType string

const (
	// AgentGitHub is the originator alias for contracts synthesized from a
	// GitHub issue. Valid as a source agent only.
	AgentGitHub AgentType = "github"

	// AgentSystem is the originator alias for contracts synthesized
	// internally (CLI, webhook, scheduled job). Valid as a source agent only.
	AgentSystem AgentType = "system"

	// AgentProjectManager breaks a feature request into a story breakdown.
	AgentProjectManager AgentType = "project_manager"

	// AgentGameDesigner produces the UX specification for a story.
	AgentGameDesigner AgentType = "game_designer"

	// AgentDeveloper produces code artifacts (UI components, API endpoints).
	AgentDeveloper AgentType = "developer"

	// AgentTestEngineer produces the automated test suites.
	AgentTestEngineer AgentType = "test_engineer"

	// AgentQATester performs persona-based validation of the built feature.
	AgentQATester AgentType = "qa_tester"

	// AgentQualityReviewer performs the final quality review and closes the
	// loop back to the project manager.
	AgentQualityReviewer AgentType = "quality_reviewer"
)

// AgentTypes returns the real pipeline agents, in pipeline order.
// Originator aliases are excluded.
func AgentTypes() []AgentType {
	return []AgentType{
		AgentProjectManager,
		AgentGameDesigner,
		AgentDeveloper,
		AgentTestEngineer,
		AgentQATester,
		AgentQualityReviewer,
	}
}

// Validate checks if the AgentType is a valid enum value (originator aliases
// included).
func (a AgentType) Validate() error {
	switch a {
	case AgentGitHub, AgentSystem, AgentProjectManager, AgentGameDesigner,
		AgentDeveloper, AgentTestEngineer, AgentQATester, AgentQualityReviewer:
		return nil
	default:
		return fmt.Errorf("unknown agent type: %q", a)
	}
}

// IsOriginator reports whether the agent type is an originator alias rather
// than a real pipeline agent. Originators can be contract sources but never
// targets.
func (a AgentType) IsOriginator() bool {
	return a == AgentGitHub || a == AgentSystem
}

// Priority orders work items for dispatch. Lower rank is serviced earlier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the numeric service order for the priority: critical=1,
// high=2, medium=3, low=4. Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

// Validate checks if the Priority is a valid enum value.
func (p Priority) Validate() error {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return fmt.Errorf("unknown priority: %q", p)
	}
}

// DesignPrinciples carries the five design-principle booleans every contract
// must assert. All five keys are required on the wire; absence of any one is
// a structural validation failure, which is distinct from a principle being
// asserted false.
type DesignPrinciples struct {
	PedagogicalValue bool `json:"pedagogical_value"`
	PolicyToPractice bool `json:"policy_to_practice"`
	TimeRespect      bool `json:"time_respect"`
	HolisticThinking bool `json:"holistic_thinking"`
	ProfessionalTone bool `json:"professional_tone"`
}

// ArchitectureCompliance carries the four architecture-principle booleans.
// All four keys are required on the wire.
type ArchitectureCompliance struct {
	APIFirst             bool `json:"api_first"`
	StatelessBackend     bool `json:"stateless_backend"`
	SeparationOfConcerns bool `json:"separation_of_concerns"`
	SimplicityFirst      bool `json:"simplicity_first"`
}

// designPrincipleKeys and architectureKeys enumerate the nine required wire
// keys, used for presence checking during unmarshal.
var designPrincipleKeys = []string{
	"pedagogical_value",
	"policy_to_practice",
	"time_respect",
	"holistic_thinking",
	"professional_tone",
}

var architectureKeys = []string{
	"api_first",
	"stateless_backend",
	"separation_of_concerns",
	"simplicity_first",
}

// DNACompliance is the two-part structured policy assertion carried in every
// contract. Beyond the two fixed blocks, producing agents may attach their
// scored assessment under a "<agent>_dna_validation" key; those blocks are
// additive and preserved verbatim through serialization.
type DNACompliance struct {
	DesignPrinciples DesignPrinciples
	Architecture     ArchitectureCompliance

	// AgentValidations holds the optional per-agent scored assessment blocks,
	// keyed by their full wire key (e.g. "developer_dna_validation"). The
	// payloads are kept as raw JSON so the contract round-trips without loss.
	AgentValidations map[string]json.RawMessage

	// missingKeys records which of the nine required boolean keys were absent
	// when this block was decoded from the wire. Empty for blocks built in
	// process. Consumed by Validate.
	missingKeys []string
}

// agentValidationSuffix is the wire-key suffix for per-agent assessment blocks.
const agentValidationSuffix = "_dna_validation"

// MarshalJSON writes the fixed blocks plus any per-agent validation blocks.
func (d DNACompliance) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, 2+len(d.AgentValidations))

	dp, err := json.Marshal(d.DesignPrinciples)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal design principles: %w", err)
	}
	out["design_principles_validation"] = dp

	ac, err := json.Marshal(d.Architecture)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal architecture compliance: %w", err)
	}
	out["architecture_compliance"] = ac

	for key, block := range d.AgentValidations {
		out[key] = block
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the fixed blocks, recording any of the nine required
// boolean keys that are absent, and captures per-agent validation blocks
// verbatim. Missing keys do not fail the unmarshal; they fail Validate.
func (d *DNACompliance) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal dna_compliance: %w", err)
	}

	*d = DNACompliance{}

	d.missingKeys = append(d.missingKeys,
		decodeBoolBlock(raw["design_principles_validation"], designPrincipleKeys, "design_principles_validation")...)
	d.missingKeys = append(d.missingKeys,
		decodeBoolBlock(raw["architecture_compliance"], architectureKeys, "architecture_compliance")...)

	if block, ok := raw["design_principles_validation"]; ok {
		if err := json.Unmarshal(block, &d.DesignPrinciples); err != nil {
			return fmt.Errorf("failed to unmarshal design_principles_validation: %w", err)
		}
	}
	if block, ok := raw["architecture_compliance"]; ok {
		if err := json.Unmarshal(block, &d.Architecture); err != nil {
			return fmt.Errorf("failed to unmarshal architecture_compliance: %w", err)
		}
	}

	for key, block := range raw {
		if key == "design_principles_validation" || key == "architecture_compliance" {
			continue
		}
		if len(key) > len(agentValidationSuffix) && key[len(key)-len(agentValidationSuffix):] == agentValidationSuffix {
			if d.AgentValidations == nil {
				d.AgentValidations = make(map[string]json.RawMessage)
			}
			d.AgentValidations[key] = block
		}
		// Unknown keys that are not agent validation blocks are dropped:
		// additive evolution must not break older consumers.
	}

	return nil
}

// decodeBoolBlock reports which required keys are absent from a JSON object.
// A missing or undecodable block reports every key as absent.
func decodeBoolBlock(block json.RawMessage, required []string, blockName string) []string {
	var missing []string
	present := make(map[string]json.RawMessage)
	if block != nil {
		if err := json.Unmarshal(block, &present); err != nil {
			present = nil
		}
	}
	for _, key := range required {
		if _, ok := present[key]; !ok {
			missing = append(missing, blockName+"."+key)
		}
	}
	return missing
}

// MissingKeys returns the required DNA boolean keys that were absent when the
// block was decoded from the wire. Empty for blocks built in process.
func (d *DNACompliance) MissingKeys() []string {
	return d.missingKeys
}

// AllTrue returns a DNA block with all nine booleans asserted. Originators
// use this as the initial assertion; downstream agents re-validate it.
func AllTrue() DNACompliance {
	return DNACompliance{
		DesignPrinciples: DesignPrinciples{
			PedagogicalValue: true,
			PolicyToPractice: true,
			TimeRespect:      true,
			HolisticThinking: true,
			ProfessionalTone: true,
		},
		Architecture: ArchitectureCompliance{
			APIFirst:             true,
			StatelessBackend:     true,
			SeparationOfConcerns: true,
			SimplicityFirst:      true,
		},
	}
}

// InputRequirements describes what the target agent needs to start work.
type InputRequirements struct {
	RequiredFiles       []string       `json:"required_files"`
	RequiredData        map[string]any `json:"required_data"`
	RequiredValidations []string       `json:"required_validations"`
}

// OutputSpecifications describes what the target agent must deliver.
type OutputSpecifications struct {
	DeliverableFiles   []string       `json:"deliverable_files"`
	DeliverableData    map[string]any `json:"deliverable_data"`
	ValidationCriteria map[string]any `json:"validation_criteria"`
}

// Contract is the immutable handoff message between agents. Every file path
// it references must contain the StoryID substring (traceability invariant),
// and the (SourceAgent, TargetAgent) pair must be a legal pipeline transition.
type Contract struct {
	ContractVersion      string               `json:"contract_version"`
	StoryID              string               `json:"story_id"`
	SourceAgent          AgentType            `json:"source_agent"`
	TargetAgent          AgentType            `json:"target_agent"`
	DNACompliance        DNACompliance        `json:"dna_compliance"`
	InputRequirements    InputRequirements    `json:"input_requirements"`
	OutputSpecifications OutputSpecifications `json:"output_specifications"`
	QualityGates         []string             `json:"quality_gates"`
	HandoffCriteria      []string             `json:"handoff_criteria"`
}

// FilePaths returns every file path the contract references, in declaration
// order: required files first, then deliverable files.
func (c *Contract) FilePaths() []string {
	paths := make([]string, 0, len(c.InputRequirements.RequiredFiles)+len(c.OutputSpecifications.DeliverableFiles))
	paths = append(paths, c.InputRequirements.RequiredFiles...)
	paths = append(paths, c.OutputSpecifications.DeliverableFiles...)
	return paths
}

// WithAgentValidation returns a copy of the contract with the given agent's
// scored DNA assessment attached under "<agent>_dna_validation". The
// receiver is not modified.
func (c *Contract) WithAgentValidation(agent AgentType, assessment json.RawMessage) *Contract {
	out := c.Clone()
	if out.DNACompliance.AgentValidations == nil {
		out.DNACompliance.AgentValidations = make(map[string]json.RawMessage, 1)
	}
	out.DNACompliance.AgentValidations[string(agent)+agentValidationSuffix] = assessment
	return out
}

// Clone returns a deep copy of the contract. Slices and maps are copied so
// the clone shares no mutable state with the receiver.
func (c *Contract) Clone() *Contract {
	out := *c
	out.InputRequirements.RequiredFiles = copyStrings(c.InputRequirements.RequiredFiles)
	out.InputRequirements.RequiredValidations = copyStrings(c.InputRequirements.RequiredValidations)
	out.InputRequirements.RequiredData = copyAnyMap(c.InputRequirements.RequiredData)
	out.OutputSpecifications.DeliverableFiles = copyStrings(c.OutputSpecifications.DeliverableFiles)
	out.OutputSpecifications.DeliverableData = copyAnyMap(c.OutputSpecifications.DeliverableData)
	out.OutputSpecifications.ValidationCriteria = copyAnyMap(c.OutputSpecifications.ValidationCriteria)
	out.QualityGates = copyStrings(c.QualityGates)
	out.HandoffCriteria = copyStrings(c.HandoffCriteria)
	if c.DNACompliance.AgentValidations != nil {
		out.DNACompliance.AgentValidations = make(map[string]json.RawMessage, len(c.DNACompliance.AgentValidations))
		for key, block := range c.DNACompliance.AgentValidations {
			copied := make(json.RawMessage, len(block))
			copy(copied, block)
			out.DNACompliance.AgentValidations[key] = copied
		}
	}
	out.DNACompliance.missingKeys = copyStrings(c.DNACompliance.missingKeys)
	return &out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// copyAnyMap makes a shallow copy of a payload map. Payload values are
// treated as immutable by convention; only the map header is owned.
func copyAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
