package eventbus

import (
	"context"
	"time"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Status is the lifecycle state of a work item.
type Status string

const (
	// StatusPending means the item is queued, waiting for a free agent.
	StatusPending Status = "pending"

	// StatusInProgress means the item has been dispatched to an agent.
	StatusInProgress Status = "in_progress"

	// StatusCompleted means the agent produced a valid output contract.
	StatusCompleted Status = "completed"

	// StatusFailed means the item failed permanently (retries exhausted or a
	// non-retryable error).
	StatusFailed Status = "failed"

	// StatusCancelled means the item was cancelled before finishing.
	StatusCancelled Status = "cancelled"
)

// DefaultMaxRetries is the retry budget for a work item whose delegation did
// not specify one.
const DefaultMaxRetries = 3

// WorkItem is one scheduled contract handoff. The bus owns the item for its
// whole lifetime; callers only ever see snapshots.
type WorkItem struct {
	WorkID   string
	StoryID  string
	Contract *contract.Contract
	Priority contract.Priority
	Status   Status

	// AssignedAgentID is set while the item is in progress.
	AssignedAgentID string

	RetryCount int
	MaxRetries int

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string

	// cancel aborts the in-flight processing context, nil while pending.
	cancel context.CancelFunc
}

// TargetAgent returns the agent type the item is addressed to.
func (w *WorkItem) TargetAgent() contract.AgentType {
	return w.Contract.TargetAgent
}

// WorkStatus is the caller-visible snapshot of a work item, live or archived.
type WorkStatus struct {
	WorkID          string             `json:"work_id"`
	StoryID         string             `json:"story_id"`
	TargetAgent     contract.AgentType `json:"target_agent"`
	Priority        contract.Priority  `json:"priority"`
	Status          Status             `json:"status"`
	AssignedAgentID string             `json:"assigned_agent_id,omitempty"`
	RetryCount      int                `json:"retry_count"`
	Error           string             `json:"error,omitempty"`
}

func (w *WorkItem) snapshot() *WorkStatus {
	return &WorkStatus{
		WorkID:          w.WorkID,
		StoryID:         w.StoryID,
		TargetAgent:     w.TargetAgent(),
		Priority:        w.Priority,
		Status:          w.Status,
		AssignedAgentID: w.AssignedAgentID,
		RetryCount:      w.RetryCount,
		Error:           w.Error,
	}
}
