package eventbus

import (
	"context"
	"time"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Runner executes one contract handoff. The agent runtime implements it; the
// bus only knows that a runner turns an input contract into the next output
// contract or an error.
type Runner interface {
	Run(ctx context.Context, in *contract.Contract) (*contract.Contract, error)
}

// AgentState is the availability of a registered agent.
type AgentState string

const (
	AgentAvailable AgentState = "available"
	AgentBusy      AgentState = "busy"
	AgentOffline   AgentState = "offline"
)

// AgentEntry is one registered agent instance. LastHeartbeat starts at the
// registration time; an agent that stops heartbeating can be marked offline
// and is skipped by dispatch until it reports in again.
type AgentEntry struct {
	ID            string
	Type          contract.AgentType
	State         AgentState
	Runner        Runner
	RegisteredAt  time.Time
	LastHeartbeat time.Time
	CurrentWorkID string
}

// agentRegistry tracks registered agents by ID. Not safe for concurrent use;
// the bus serializes access under its own mutex.
type agentRegistry struct {
	agents map[string]*AgentEntry
}

func newAgentRegistry() *agentRegistry {
	return &agentRegistry{agents: make(map[string]*AgentEntry)}
}

func (r *agentRegistry) get(agentID string) *AgentEntry {
	return r.agents[agentID]
}

func (r *agentRegistry) add(entry *AgentEntry) {
	r.agents[entry.ID] = entry
}

func (r *agentRegistry) remove(agentID string) *AgentEntry {
	entry := r.agents[agentID]
	delete(r.agents, agentID)
	return entry
}

// findAvailable returns an available agent of the given type, or nil.
// Selection is by earliest registration, then by ID, so dispatch is
// deterministic regardless of map iteration order.
func (r *agentRegistry) findAvailable(agentType contract.AgentType) *AgentEntry {
	var best *AgentEntry
	for _, entry := range r.agents {
		if entry.Type != agentType || entry.State != AgentAvailable {
			continue
		}
		if best == nil || entry.RegisteredAt.Before(best.RegisteredAt) ||
			(entry.RegisteredAt.Equal(best.RegisteredAt) && entry.ID < best.ID) {
			best = entry
		}
	}
	return best
}

// countByType returns registered agent counts per type and the per-state
// breakdown across all registered agents.
func (r *agentRegistry) countByType() (byType map[string]int, available, busy, offline int) {
	byType = make(map[string]int)
	for _, entry := range r.agents {
		byType[string(entry.Type)]++
		switch entry.State {
		case AgentBusy:
			busy++
		case AgentOffline:
			offline++
		default:
			available++
		}
	}
	return byType, available, busy, offline
}
