// Package originator turns external work requests into pipeline contracts.
//
// The only adapter today consumes GitHub issues: the issue body supplies the
// feature description and acceptance criteria, labels carry priority and
// persona hints, and the issue number anchors the story identifier that every
// later artifact must trace back to.
package originator

import (
	"fmt"
	"strings"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// DefaultPersona is assumed when an issue carries no persona label. Anna is
// the primary municipal training coordinator persona the product is built
// around.
const DefaultPersona = "Anna"

// GitHubIssue is the subset of the GitHub issue payload the adapter reads.
type GitHubIssue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
	URL    string   `json:"html_url"`
}

// StoryID synthesizes the pipeline-wide story identifier for the issue.
func (i *GitHubIssue) StoryID() string {
	return fmt.Sprintf("STORY-GH-%d", i.Number)
}

// Priority maps issue labels onto queue priority. The first matching
// priority label wins; an unlabeled issue is medium.
func (i *GitHubIssue) Priority() contract.Priority {
	for _, label := range i.Labels {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "priority-critical", "critical":
			return contract.PriorityCritical
		case "priority-high", "high":
			return contract.PriorityHigh
		case "priority-low", "low":
			return contract.PriorityLow
		}
	}
	return contract.PriorityMedium
}

// Persona returns the target user persona from a "persona:<name>" label,
// falling back to DefaultPersona.
func (i *GitHubIssue) Persona() string {
	for _, label := range i.Labels {
		if name, ok := strings.CutPrefix(strings.TrimSpace(label), "persona:"); ok && name != "" {
			return name
		}
	}
	return DefaultPersona
}

// AcceptanceCriteria extracts the issue body's task-list items. Both checked
// and unchecked boxes count: a pre-checked box still names a condition the
// feature must satisfy.
func (i *GitHubIssue) AcceptanceCriteria() []string {
	var criteria []string
	for _, line := range strings.Split(i.Body, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- [ ]", "- [x]", "- [X]"} {
			if item, ok := strings.CutPrefix(line, marker); ok {
				if item = strings.TrimSpace(item); item != "" {
					criteria = append(criteria, item)
				}
				break
			}
		}
	}
	return criteria
}

// Validate rejects issues that cannot seed a story.
func (i *GitHubIssue) Validate() error {
	var problems []string
	if i.Number <= 0 {
		problems = append(problems, "issue number must be positive")
	}
	if strings.TrimSpace(i.Title) == "" {
		problems = append(problems, "issue title is empty")
	}
	if len(i.AcceptanceCriteria()) == 0 {
		problems = append(problems, "issue body has no acceptance criteria task list")
	}
	if len(problems) > 0 {
		return fmt.Errorf("issue #%d not actionable: %s", i.Number, strings.Join(problems, "; "))
	}
	return nil
}

// Contract builds the initial project-manager contract for the issue. The
// nine compliance booleans start out asserted: the originator has nothing to
// evaluate yet, and the first agent's own engine re-scores its output.
func Contract(issue *GitHubIssue) (*contract.Contract, error) {
	if issue == nil {
		return nil, fmt.Errorf("nil issue")
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(issue.Title)
	if body := strings.TrimSpace(issue.Body); body != "" {
		description += "\n\n" + body
	}

	return contract.New(contract.Fields{
		StoryID:     issue.StoryID(),
		SourceAgent: contract.AgentGitHub,
		TargetAgent: contract.AgentProjectManager,
		DNACompliance: contract.DNACompliance{
			DesignPrinciples: contract.DesignPrinciples{
				PedagogicalValue: true,
				PolicyToPractice: true,
				TimeRespect:      true,
				HolisticThinking: true,
				ProfessionalTone: true,
			},
			Architecture: contract.ArchitectureCompliance{
				APIFirst:             true,
				StatelessBackend:     true,
				SeparationOfConcerns: true,
				SimplicityFirst:      true,
			},
		},
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{
				"feature_description": description,
				"acceptance_criteria": issue.AcceptanceCriteria(),
				"user_persona":        issue.Persona(),
				"priority_level":      string(issue.Priority()),
				"source_url":          issue.URL,
			},
		},
		QualityGates:    []string{"story_breakdown_complete"},
		HandoffCriteria: []string{"story broken down into implementable tasks"},
	})
}
