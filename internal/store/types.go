// Package store provides the Redis persistence layer for the coordination
// engine: the archive of finished work, the per-story work index, queue
// status snapshots, and the pipeline event channel.
//
// All keys and channels are namespaced with the instance name so multiple
// engine instances can safely share a Redis server. The in-memory event bus
// is the source of truth for live scheduling state; this package is the
// write-through record of it.
package store

import (
	"fmt"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// WorkRecord is the archived form of one work item. It is flat on purpose:
// the scheduler owns the live item, the store only remembers its outcome and
// the full contract it carried.
type WorkRecord struct {
	WorkID      string `json:"work_id"`
	StoryID     string `json:"story_id"`
	SourceAgent string `json:"source_agent"`
	TargetAgent string `json:"target_agent"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`

	// AssignedAgentID is the registration ID of the agent that processed the
	// item, empty if it never dispatched.
	AssignedAgentID string `json:"assigned_agent_id"`
	RetryCount      int    `json:"retry_count"`
	Error           string `json:"error,omitempty"`

	// ContractJSON is the serialized input contract the item carried.
	ContractJSON string `json:"contract_json"`

	CreatedAtMs  int64 `json:"created_at_ms"`
	FinishedAtMs int64 `json:"finished_at_ms"`
}

// Validate checks that a record is archivable.
func (r *WorkRecord) Validate() error {
	if r.WorkID == "" {
		return fmt.Errorf("work record must have a work_id")
	}
	if r.StoryID == "" {
		return fmt.Errorf("work record must have a story_id")
	}
	if r.Status == "" {
		return fmt.Errorf("work record must have a status")
	}
	if err := contract.AgentType(r.TargetAgent).Validate(); err != nil {
		return fmt.Errorf("work record has invalid target agent: %w", err)
	}
	return nil
}

// PipelineEvent is the message published on the pipeline events channel for
// every lifecycle transition a work item goes through.
type PipelineEvent struct {
	Type        string `json:"type"`
	WorkID      string `json:"work_id"`
	StoryID     string `json:"story_id"`
	TargetAgent string `json:"target_agent"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// Pipeline event types.
const (
	EventWorkDelegated = "work_delegated"
	EventWorkStarted   = "work_started"
	EventWorkCompleted = "work_completed"
	EventWorkFailed    = "work_failed"
	EventWorkCancelled = "work_cancelled"
	EventWorkRetried   = "work_retried"
)

// Validate checks that an event is publishable.
func (e *PipelineEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("pipeline event must have a type")
	}
	if e.WorkID == "" {
		return fmt.Errorf("pipeline event must have a work_id")
	}
	if e.StoryID == "" {
		return fmt.Errorf("pipeline event must have a story_id")
	}
	return nil
}

// QueueSnapshot is the periodically persisted view of the live queue, served
// by the status surfaces without touching the scheduler.
type QueueSnapshot struct {
	QueuedItems     int            `json:"queued_items"`
	ActiveItems     int            `json:"active_items"`
	CompletedItems  int            `json:"completed_items"`
	RegisteredBy    map[string]int `json:"registered_agents_by_type"`
	AvailableAgents int            `json:"available_agents"`
	BusyAgents      int            `json:"busy_agents"`
	OfflineAgents   int            `json:"offline_agents"`
	UpdatedAtMs     int64          `json:"updated_at_ms"`
}
