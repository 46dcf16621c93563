// Package agents hosts the in-process reference implementations of the six
// pipeline roles. Each agent is deterministic: it reads the artifacts carried
// in its input contract, produces its own artifact from templates shaped for
// the municipal-training domain, and derives the next handoff in the
// pipeline. The runtime wrapping each agent enforces compliance; the agents
// here only have to do the work.
package agents

import (
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/internal/runtime"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// DefaultPersona stands in when the handoff chain lost the persona hint.
const DefaultPersona = "Anna"

// Conventional payload keys shared across the pipeline.
const (
	keyStoryBreakdown = "story_breakdown"
	keyUXSpec         = "ux_specification"
	keyCode           = "code"
	keyTestSuites     = "test_suites"
	keyQAReport       = "qa_report"
	keyReviewReport   = "review_report"
	keyUserPersona    = "user_persona"
)

// artifactsFrom decodes every artifact reachable from the input contract,
// whether it arrived as the predecessor's deliverable or as forwarded
// context.
func artifactsFrom(in *contract.Contract) (*dna.Artifacts, error) {
	merged := make(map[string]any, len(in.InputRequirements.RequiredData)+len(in.OutputSpecifications.DeliverableData))
	for k, v := range in.InputRequirements.RequiredData {
		merged[k] = v
	}
	for k, v := range in.OutputSpecifications.DeliverableData {
		merged[k] = v
	}
	return dna.DecodeArtifacts(merged, nil)
}

// personaFrom recovers the persona hint forwarded through the chain.
func personaFrom(in *contract.Contract) string {
	if persona, ok := in.InputRequirements.RequiredData[keyUserPersona].(string); ok && persona != "" {
		return persona
	}
	return DefaultPersona
}

// forwarded builds the next contract's required data: persona, story context,
// and every artifact produced so far, so any downstream agent can see the
// whole chain.
func forwarded(a *dna.Artifacts, persona string) map[string]any {
	data := map[string]any{keyUserPersona: persona}
	if a.Story != nil {
		data[keyStoryBreakdown] = a.Story
	}
	if a.UX != nil {
		data[keyUXSpec] = a.UX
	}
	if a.Code != nil {
		data[keyCode] = a.Code
	}
	if a.Tests != nil {
		data[keyTestSuites] = a.Tests
	}
	if a.QA != nil {
		data[keyQAReport] = a.QA
	}
	return data
}

// missingArtifact is the permanent failure for a handoff that lost its
// upstream artifact.
func missingArtifact(agent contract.AgentType, key string) error {
	return &runtime.BusinessLogicError{
		Agent: string(agent),
		Msg:   fmt.Sprintf("input contract carries no %s artifact", key),
	}
}

// stringsFrom tolerates both decoded-JSON and native slices in payload maps.
func stringsFrom(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
