// Package eventbus implements the in-memory scheduler at the heart of the
// coordination engine: a priority work queue, an agent registry, and the
// dispatch loop that moves contracts through the pipeline one handoff at a
// time.
//
// The bus is the single source of truth for live scheduling state. All state
// lives under one mutex; Redis (via the store package) is a write-through
// record of outcomes and events, never consulted for scheduling decisions.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jhonnyo88/devteam-sub001/internal/store"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Recorder is the persistence surface the bus writes through to. The store
// client satisfies it; a nil Recorder disables persistence entirely, which is
// how unit tests run.
type Recorder interface {
	ArchiveWork(ctx context.Context, record *store.WorkRecord) error
	GetWork(ctx context.Context, workID string) (*store.WorkRecord, error)
	PublishEvent(ctx context.Context, event *store.PipelineEvent) error
	SaveQueueStatus(ctx context.Context, snapshot *store.QueueSnapshot) error
}

// Config carries the scheduler tunables.
type Config struct {
	// MaxConcurrentWork caps the number of items processing at once.
	MaxConcurrentWork int

	// WorkTimeout bounds a single agent's processing time per item.
	WorkTimeout time.Duration

	// SnapshotInterval is how often the queue snapshot is persisted.
	SnapshotInterval time.Duration

	// Sequences is the legal handoff table. Nil means the default pipeline.
	Sequences contract.SequenceTable
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentWork <= 0 {
		c.MaxConcurrentWork = 10
	}
	if c.WorkTimeout <= 0 {
		c.WorkTimeout = 60 * time.Minute
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = 10 * time.Second
	}
	if c.Sequences == nil {
		c.Sequences = contract.DefaultSequences()
	}
	return c
}

// EventBus schedules contract handoffs across registered agents.
// All exported methods are safe for concurrent use.
type EventBus struct {
	cfg      Config
	recorder Recorder
	metrics  *Metrics
	logger   *zap.Logger

	mu        sync.Mutex
	registry  *agentRegistry
	queue     workQueue
	active    map[string]*WorkItem
	completed int
	stopped   bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	now func() time.Time
}

// New creates an event bus. The recorder and metrics may be nil; the logger
// defaults to a no-op logger.
func New(cfg Config, recorder Recorder, metrics *Metrics, logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		cfg:      cfg.withDefaults(),
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		registry: newAgentRegistry(),
		active:   make(map[string]*WorkItem),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the background snapshot loop. Safe to skip in tests that
// never read persisted queue status.
func (b *EventBus) Start() {
	b.wg.Add(1)
	go b.snapshotLoop()
}

// Stop shuts the bus down: no further delegations are accepted, all in-flight
// processing contexts are cancelled, and Stop blocks until the worker
// goroutines have drained. Safe to call multiple times.
func (b *EventBus) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		for _, item := range b.active {
			if item.cancel != nil {
				item.cancel()
			}
		}
		b.mu.Unlock()
		close(b.stopCh)
	})
	b.wg.Wait()
}

// RegisterAgent adds an agent instance to the registry and immediately tries
// to dispatch queued work to it. Registration is idempotent: re-registering
// the same ID with the same type just replaces the runner.
func (b *EventBus) RegisterAgent(agentID string, agentType contract.AgentType, runner Runner) error {
	if agentID == "" {
		return fmt.Errorf("agent ID cannot be empty")
	}
	if err := agentType.Validate(); err != nil {
		return err
	}
	if agentType.IsOriginator() {
		return fmt.Errorf("originator %s cannot register as a processing agent", agentType)
	}
	if runner == nil {
		return fmt.Errorf("agent %s has no runner", agentID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return ErrBusStopped
	}

	if existing := b.registry.get(agentID); existing != nil {
		if existing.Type != agentType {
			return fmt.Errorf("agent %s is already registered as %s", agentID, existing.Type)
		}
		existing.Runner = runner
		return nil
	}

	now := b.now()
	b.registry.add(&AgentEntry{
		ID:            agentID,
		Type:          agentType,
		State:         AgentAvailable,
		Runner:        runner,
		RegisteredAt:  now,
		LastHeartbeat: now,
	})
	b.logger.Info("agent registered",
		zap.String("agent_id", agentID),
		zap.String("agent_type", string(agentType)))

	b.updateAgentMetricsLocked()
	b.dispatchLocked()
	return nil
}

// UnregisterAgent removes an agent. Work the agent was processing is pulled
// back under the same lock and cancelled with reason "Agent unregistered",
// so the interrupted runner goroutine finds its item gone and drops its
// stale result. Callers that still want the work done re-delegate the
// contract. Unregistering an unknown ID is a no-op.
func (b *EventBus) UnregisterAgent(agentID string) {
	b.mu.Lock()

	entry := b.registry.remove(agentID)
	if entry == nil {
		b.mu.Unlock()
		return
	}
	b.logger.Info("agent unregistered", zap.String("agent_id", agentID))

	var cancelled *WorkItem
	if entry.CurrentWorkID != "" {
		if item := b.takeActiveLocked(entry.CurrentWorkID, agentID); item != nil {
			if item.cancel != nil {
				item.cancel()
			}
			item.Status = StatusCancelled
			item.Error = "Agent unregistered"
			item.FinishedAt = b.now()
			cancelled = item
			b.metrics.cancelled(string(item.TargetAgent()))
		}
	}
	b.updateAgentMetricsLocked()
	b.dispatchLocked()
	b.mu.Unlock()

	if cancelled != nil {
		b.finishWork(cancelled, store.EventWorkCancelled, cancelled.Error)
	}
}

// Heartbeat records liveness for a registered agent. An offline agent that
// heartbeats comes back as available and is considered for dispatch again.
// Returns false for unknown IDs.
func (b *EventBus) Heartbeat(agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := b.registry.get(agentID)
	if entry == nil {
		return false
	}
	entry.LastHeartbeat = b.now()
	if entry.State == AgentOffline {
		entry.State = AgentAvailable
		b.dispatchLocked()
	}
	return true
}

// MarkAgentOffline takes an idle agent out of dispatch until its next
// heartbeat. Returns false for unknown or busy agents; a busy agent keeps
// its current item.
func (b *EventBus) MarkAgentOffline(agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := b.registry.get(agentID)
	if entry == nil || entry.State == AgentBusy {
		return false
	}
	entry.State = AgentOffline
	return true
}

// Delegate validates a contract and queues it for its target agent. Returns
// the work ID assigned to the handoff.
//
// An empty priority defaults to medium. The contract is deep-copied on entry;
// callers may keep mutating their copy.
func (b *EventBus) Delegate(ctx context.Context, c *contract.Contract, priority contract.Priority) (string, error) {
	if result := contract.Validate(c); !result.OK {
		return "", fmt.Errorf("contract validation failed: %s", strings.Join(result.Errors, "; "))
	}
	if err := contract.ValidateSequence(c, b.cfg.Sequences); err != nil {
		return "", err
	}
	if priority == "" {
		priority = contract.PriorityMedium
	}
	if err := priority.Validate(); err != nil {
		return "", err
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return "", ErrBusStopped
	}

	item := &WorkItem{
		WorkID:     uuid.New().String(),
		StoryID:    c.StoryID,
		Contract:   c.Clone(),
		Priority:   priority,
		Status:     StatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  b.now(),
	}
	b.queue.push(item)
	queued := item.snapshot()

	b.logger.Info("work delegated",
		zap.String("work_id", item.WorkID),
		zap.String("story_id", item.StoryID),
		zap.String("target_agent", string(item.TargetAgent())),
		zap.String("priority", string(priority)))

	b.metrics.delegated(string(item.TargetAgent()))
	b.dispatchLocked()
	b.mu.Unlock()

	b.publishEvent(ctx, store.EventWorkDelegated, queued, "")
	return queued.WorkID, nil
}

// CancelWork cancels a pending or in-progress work item, recording the
// caller's reason on the archived record. Returns true if the item was live
// and is now cancelled, false if the work ID is unknown or the item already
// finished. Cancelling twice returns false the second time.
func (b *EventBus) CancelWork(workID, reason string) bool {
	b.mu.Lock()

	if item := b.queue.remove(workID); item != nil {
		item.Status = StatusCancelled
		item.Error = reason
		item.FinishedAt = b.now()
		b.metrics.setQueueDepth(b.queue.len())
		b.metrics.cancelled(string(item.TargetAgent()))
		b.mu.Unlock()

		b.finishWork(item, store.EventWorkCancelled, reason)
		return true
	}

	item, ok := b.active[workID]
	if !ok {
		b.mu.Unlock()
		return false
	}

	delete(b.active, workID)
	if item.cancel != nil {
		item.cancel()
	}
	item.Status = StatusCancelled
	item.Error = reason
	item.FinishedAt = b.now()
	b.metrics.cancelled(string(item.TargetAgent()))
	b.releaseAgentLocked(item.AssignedAgentID)
	b.dispatchLocked()
	b.mu.Unlock()

	b.finishWork(item, store.EventWorkCancelled, reason)
	return true
}

// GetWorkStatus returns the status of a work item, checking the pending
// queue, then active work, then the archive. Returns ErrWorkNotFound when the
// work ID is unknown everywhere.
func (b *EventBus) GetWorkStatus(ctx context.Context, workID string) (*WorkStatus, error) {
	b.mu.Lock()
	if item := b.queue.find(workID); item != nil {
		status := item.snapshot()
		b.mu.Unlock()
		return status, nil
	}
	if item, ok := b.active[workID]; ok {
		status := item.snapshot()
		b.mu.Unlock()
		return status, nil
	}
	b.mu.Unlock()

	if b.recorder == nil {
		return nil, ErrWorkNotFound
	}

	record, err := b.recorder.GetWork(ctx, workID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrWorkNotFound
		}
		return nil, fmt.Errorf("failed to look up archived work: %w", err)
	}

	return &WorkStatus{
		WorkID:          record.WorkID,
		StoryID:         record.StoryID,
		TargetAgent:     contract.AgentType(record.TargetAgent),
		Priority:        contract.Priority(record.Priority),
		Status:          Status(record.Status),
		AssignedAgentID: record.AssignedAgentID,
		RetryCount:      record.RetryCount,
		Error:           record.Error,
	}, nil
}

// GetQueueStatus returns a point-in-time snapshot of the live queue.
func (b *EventBus) GetQueueStatus() *store.QueueSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queueSnapshotLocked()
}

func (b *EventBus) queueSnapshotLocked() *store.QueueSnapshot {
	byType, available, busy, offline := b.registry.countByType()
	return &store.QueueSnapshot{
		QueuedItems:     b.queue.len(),
		ActiveItems:     len(b.active),
		CompletedItems:  b.completed,
		RegisteredBy:    byType,
		AvailableAgents: available,
		BusyAgents:      busy,
		OfflineAgents:   offline,
		UpdatedAtMs:     b.now().UnixMilli(),
	}
}

// dispatchLocked assigns queued items to available agents up to the
// concurrency cap. An item is eligible when its story has nothing in flight
// and an agent of its target type is free; ineligible items are skipped, not
// blocked on, so a stalled story never starves the queue.
// Caller must hold b.mu.
func (b *EventBus) dispatchLocked() {
	for len(b.active) < b.cfg.MaxConcurrentWork {
		inFlight := make(map[string]bool, len(b.active))
		for _, item := range b.active {
			inFlight[item.StoryID] = true
		}

		item := b.queue.next(func(candidate *WorkItem) bool {
			if inFlight[candidate.StoryID] {
				return false
			}
			return b.registry.findAvailable(candidate.TargetAgent()) != nil
		})
		if item == nil {
			break
		}

		agent := b.registry.findAvailable(item.TargetAgent())
		agent.State = AgentBusy
		agent.CurrentWorkID = item.WorkID

		runCtx, cancel := context.WithTimeout(context.Background(), b.cfg.WorkTimeout)
		item.Status = StatusInProgress
		item.AssignedAgentID = agent.ID
		item.StartedAt = b.now()
		item.cancel = cancel
		b.active[item.WorkID] = item

		b.logger.Info("work dispatched",
			zap.String("work_id", item.WorkID),
			zap.String("story_id", item.StoryID),
			zap.String("agent_id", agent.ID))

		b.wg.Add(1)
		go b.runWork(runCtx, cancel, item.WorkID, agent.ID, agent.Runner, item.Contract)
	}

	b.metrics.setQueueDepth(b.queue.len())
	b.metrics.setActiveWork(len(b.active))
}

// runWork executes one dispatched item on its agent's runner.
func (b *EventBus) runWork(ctx context.Context, cancel context.CancelFunc, workID, agentID string, runner Runner, in *contract.Contract) {
	defer b.wg.Done()
	defer cancel()

	b.publishEvent(ctx, store.EventWorkStarted, b.peekStatus(workID), "")

	out, err := runner.Run(ctx, in)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = &TimeoutError{WorkID: workID, Timeout: b.cfg.WorkTimeout}
		}
		b.failWork(workID, agentID, err)
		return
	}

	b.completeWork(workID, agentID, out)
}

// completeWork finishes a successful item, archives it, and auto-delegates
// the agent's output contract to continue the pipeline. A nil output contract
// ends the pipeline for that story.
func (b *EventBus) completeWork(workID, agentID string, out *contract.Contract) {
	b.mu.Lock()
	item := b.takeActiveLocked(workID, agentID)
	if item == nil {
		b.mu.Unlock()
		return
	}

	item.Status = StatusCompleted
	item.FinishedAt = b.now()
	b.completed++
	b.releaseAgentLocked(agentID)
	b.dispatchLocked()
	b.mu.Unlock()

	b.logger.Info("work completed",
		zap.String("work_id", item.WorkID),
		zap.String("story_id", item.StoryID),
		zap.String("agent_id", agentID))

	b.metrics.completed(string(item.TargetAgent()))
	b.finishWork(item, store.EventWorkCompleted, "")

	if out == nil {
		return
	}
	if _, err := b.Delegate(context.Background(), out, item.Priority); err != nil {
		b.logger.Error("failed to delegate pipeline continuation",
			zap.String("story_id", item.StoryID),
			zap.String("previous_work_id", item.WorkID),
			zap.Error(err))
	}
}

// failWork handles a failed item: requeue when the error is retryable and the
// budget allows, archive as failed otherwise.
func (b *EventBus) failWork(workID, agentID string, workErr error) {
	b.mu.Lock()
	item := b.takeActiveLocked(workID, agentID)
	if item == nil {
		b.mu.Unlock()
		return
	}

	b.releaseAgentLocked(agentID)
	item.Error = workErr.Error()

	if IsRetryable(workErr) && item.RetryCount < item.MaxRetries {
		item.RetryCount++
		item.Status = StatusPending
		item.AssignedAgentID = ""
		item.cancel = nil
		b.queue.push(item)

		b.logger.Warn("work requeued for retry",
			zap.String("work_id", item.WorkID),
			zap.String("story_id", item.StoryID),
			zap.Int("retry_count", item.RetryCount),
			zap.Error(workErr))

		retried := item.snapshot()
		b.metrics.retried(string(item.TargetAgent()))
		b.dispatchLocked()
		b.mu.Unlock()

		b.publishEvent(context.Background(), store.EventWorkRetried, retried, workErr.Error())
		return
	}

	item.Status = StatusFailed
	item.FinishedAt = b.now()
	b.dispatchLocked()
	b.mu.Unlock()

	b.logger.Error("work failed permanently",
		zap.String("work_id", item.WorkID),
		zap.String("story_id", item.StoryID),
		zap.Int("retry_count", item.RetryCount),
		zap.Error(workErr))

	b.metrics.failed(string(item.TargetAgent()))
	b.finishWork(item, store.EventWorkFailed, workErr.Error())
}

// takeActiveLocked removes an active item if it is still owned by the given
// agent. A mismatch means the item was cancelled or requeued while the
// agent's goroutine was finishing; the stale result is dropped.
// Caller must hold b.mu.
func (b *EventBus) takeActiveLocked(workID, agentID string) *WorkItem {
	item, ok := b.active[workID]
	if !ok || item.AssignedAgentID != agentID || item.Status != StatusInProgress {
		return nil
	}
	delete(b.active, workID)
	return item
}

// releaseAgentLocked marks an agent available again.
// Caller must hold b.mu.
func (b *EventBus) releaseAgentLocked(agentID string) {
	if entry := b.registry.get(agentID); entry != nil {
		entry.State = AgentAvailable
		entry.CurrentWorkID = ""
	}
}

func (b *EventBus) updateAgentMetricsLocked() {
	byType, _, _, _ := b.registry.countByType()
	for _, agentType := range contract.AgentTypes() {
		if agentType.IsOriginator() {
			continue
		}
		b.metrics.setAgents(string(agentType), byType[string(agentType)])
	}
}

// peekStatus snapshots a live item for event publishing, nil if unknown.
func (b *EventBus) peekStatus(workID string) *WorkStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item, ok := b.active[workID]; ok {
		return item.snapshot()
	}
	if item := b.queue.find(workID); item != nil {
		return item.snapshot()
	}
	return nil
}

// finishWork archives a finished item and publishes its terminal event.
// Both writes are best-effort: persistence failures are logged, never fatal.
func (b *EventBus) finishWork(item *WorkItem, eventType, detail string) {
	ctx := context.Background()

	if b.recorder != nil {
		contractJSON, err := json.Marshal(item.Contract)
		if err != nil {
			b.logger.Error("failed to serialize contract for archive",
				zap.String("work_id", item.WorkID), zap.Error(err))
			contractJSON = nil
		}

		record := &store.WorkRecord{
			WorkID:          item.WorkID,
			StoryID:         item.StoryID,
			SourceAgent:     string(item.Contract.SourceAgent),
			TargetAgent:     string(item.Contract.TargetAgent),
			Priority:        string(item.Priority),
			Status:          string(item.Status),
			AssignedAgentID: item.AssignedAgentID,
			RetryCount:      item.RetryCount,
			Error:           item.Error,
			ContractJSON:    string(contractJSON),
			CreatedAtMs:     item.CreatedAt.UnixMilli(),
			FinishedAtMs:    item.FinishedAt.UnixMilli(),
		}
		if err := b.recorder.ArchiveWork(ctx, record); err != nil {
			b.logger.Error("failed to archive work record",
				zap.String("work_id", item.WorkID), zap.Error(err))
		}
	}

	b.publishEvent(ctx, eventType, item.snapshot(), detail)
}

// publishEvent publishes a lifecycle event, best-effort.
func (b *EventBus) publishEvent(ctx context.Context, eventType string, ws *WorkStatus, detail string) {
	if b.recorder == nil || ws == nil {
		return
	}

	event := &store.PipelineEvent{
		Type:        eventType,
		WorkID:      ws.WorkID,
		StoryID:     ws.StoryID,
		TargetAgent: string(ws.TargetAgent),
		Status:      string(ws.Status),
		Detail:      detail,
		TimestampMs: b.now().UnixMilli(),
	}
	if err := b.recorder.PublishEvent(ctx, event); err != nil {
		b.logger.Warn("failed to publish pipeline event",
			zap.String("work_id", ws.WorkID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// snapshotLoop periodically persists the queue snapshot until Stop.
func (b *EventBus) snapshotLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			if b.recorder == nil {
				continue
			}
			snapshot := b.GetQueueStatus()
			if err := b.recorder.SaveQueueStatus(context.Background(), snapshot); err != nil {
				b.logger.Warn("failed to persist queue snapshot", zap.Error(err))
			}
		}
	}
}
