package contract

// SequenceTable maps each source agent to the target agents it may hand off
// to. The default table is the closed pipeline cycle; EventBus construction
// may override it.
type SequenceTable map[AgentType][]AgentType

// DefaultSequences returns the standard pipeline transition table:
//
//	github           -> project_manager
//	system           -> project_manager
//	project_manager  -> game_designer
//	game_designer    -> developer
//	developer        -> test_engineer
//	test_engineer    -> qa_tester
//	qa_tester        -> quality_reviewer
//	quality_reviewer -> project_manager
//
// The quality_reviewer -> project_manager edge closes the cycle; whether the
// cycle repeats or stops on an approval is the reviewer agent's concern, not
// the scheduler's.
func DefaultSequences() SequenceTable {
	return SequenceTable{
		AgentGitHub:          {AgentProjectManager},
		AgentSystem:          {AgentProjectManager},
		AgentProjectManager:  {AgentGameDesigner},
		AgentGameDesigner:    {AgentDeveloper},
		AgentDeveloper:       {AgentTestEngineer},
		AgentTestEngineer:    {AgentQATester},
		AgentQATester:        {AgentQualityReviewer},
		AgentQualityReviewer: {AgentProjectManager},
	}
}

// Allows reports whether the table permits a source -> target handoff.
func (t SequenceTable) Allows(source, target AgentType) bool {
	for _, allowed := range t[source] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Validate checks a source -> target pair against the table, returning a
// *SequenceError for any pair outside it.
func (t SequenceTable) Validate(source, target AgentType) error {
	if !t.Allows(source, target) {
		return &SequenceError{Source: source, Target: target}
	}
	return nil
}

// IsTerminal reports whether an agent has no outbound transition in the
// table. A completed contract targeting a terminal agent ends its chain
// instead of being re-delegated.
func (t SequenceTable) IsTerminal(agent AgentType) bool {
	return len(t[agent]) == 0
}
