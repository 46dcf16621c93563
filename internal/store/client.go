package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the engine.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a new store client for the specified instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: engine instance identifier (must not be empty)
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// ArchiveWork writes a finished work record to Redis and indexes it under its
// story. Validates the record before writing. This method is idempotent -
// archiving the same record twice is safe.
//
// The record is stored as a Redis hash at devteam:{instance}:work:{work_id},
// and the work ID is added to the story's ZSET scored by finish time so the
// pipeline history reads back in order.
func (c *Client) ArchiveWork(ctx context.Context, record *WorkRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid work record: %w", err)
	}

	key := WorkKey(c.instanceName, record.WorkID)
	if err := c.rdb.HSet(ctx, key, WorkRecordToHash(record)).Err(); err != nil {
		return fmt.Errorf("failed to write work record to Redis: %w", err)
	}

	z := redis.Z{
		Score:  float64(record.FinishedAtMs),
		Member: record.WorkID,
	}
	indexKey := StoryWorkKey(c.instanceName, record.StoryID)
	if err := c.rdb.ZAdd(ctx, indexKey, z).Err(); err != nil {
		return fmt.Errorf("failed to index work record under story: %w", err)
	}

	return nil
}

// GetWork retrieves an archived work record by ID.
// Returns (nil, redis.Nil) if the record doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetWork(ctx context.Context, workID string) (*WorkRecord, error) {
	key := WorkKey(c.instanceName, workID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read work record from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys.
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	record, err := HashToWorkRecord(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize work record: %w", err)
	}

	return record, nil
}

// WorkExists checks if a work record exists without fetching it.
func (c *Client) WorkExists(ctx context.Context, workID string) (bool, error) {
	key := WorkKey(c.instanceName, workID)
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check work record existence: %w", err)
	}
	return exists > 0, nil
}

// StoryHistory returns the archived work IDs for a story in finish order.
// Returns an empty slice if the story has no archived work (not an error).
func (c *Client) StoryHistory(ctx context.Context, storyID string) ([]string, error) {
	key := StoryWorkKey(c.instanceName, storyID)

	workIDs, err := c.rdb.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read story history from Redis: %w", err)
	}

	return workIDs, nil
}

// PublishEvent publishes a pipeline lifecycle event for this instance.
// Validates the event before publishing.
func (c *Client) PublishEvent(ctx context.Context, event *PipelineEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline event: %w", err)
	}

	channel := PipelineEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish pipeline event: %w", err)
	}

	return nil
}

// SaveQueueStatus persists the queue snapshot for this instance.
func (c *Client) SaveQueueStatus(ctx context.Context, snapshot *QueueSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal queue snapshot: %w", err)
	}

	key := QueueStatusKey(c.instanceName)
	if err := c.rdb.Set(ctx, key, snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to write queue snapshot to Redis: %w", err)
	}

	return nil
}

// GetQueueStatus retrieves the last persisted queue snapshot.
// Returns (nil, redis.Nil) if no snapshot has been saved yet.
func (c *Client) GetQueueStatus(ctx context.Context) (*QueueSnapshot, error) {
	key := QueueStatusKey(c.instanceName)

	snapshotJSON, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read queue snapshot from Redis: %w", err)
	}

	var snapshot QueueSnapshot
	if err := json.Unmarshal([]byte(snapshotJSON), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to deserialize queue snapshot: %w", err)
	}

	return &snapshot, nil
}

// Submission is an inbox envelope: a serialized contract plus the priority
// the submitter asked for.
type Submission struct {
	ContractJSON  json.RawMessage `json:"contract_json"`
	Priority      string          `json:"priority"`
	SubmittedAtMs int64           `json:"submitted_at_ms"`
}

// SubmitWork pushes a contract submission onto the instance inbox. The
// coordinator pops submissions and delegates them to the scheduler.
func (c *Client) SubmitWork(ctx context.Context, submission *Submission) error {
	if len(submission.ContractJSON) == 0 {
		return fmt.Errorf("submission carries no contract")
	}

	envelope, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	key := InboxKey(c.instanceName)
	if err := c.rdb.RPush(ctx, key, envelope).Err(); err != nil {
		return fmt.Errorf("failed to push submission to inbox: %w", err)
	}

	return nil
}

// NextSubmission blocks up to timeout for the next inbox submission.
// Returns (nil, redis.Nil) when the timeout elapses with an empty inbox.
func (c *Client) NextSubmission(ctx context.Context, timeout time.Duration) (*Submission, error) {
	key := InboxKey(c.instanceName)

	values, err := c.rdb.BLPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to pop submission from inbox: %w", err)
	}
	// BLPOP returns [key, value].
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of %d values", len(values))
	}

	var submission Submission
	if err := json.Unmarshal([]byte(values[1]), &submission); err != nil {
		return nil, fmt.Errorf("failed to deserialize submission: %w", err)
	}

	return &submission, nil
}

// Subscription represents an active Pub/Sub subscription to pipeline events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *PipelineEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of pipeline events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *PipelineEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeEvents subscribes to pipeline lifecycle events for this instance.
// Returns a Subscription that delivers full event objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeEvents(ctx context.Context) (*Subscription, error) {
	channel := PipelineEventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	// Wait for the server-side subscription confirmation so events published
	// immediately after this call returns are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to confirm event subscription: %w", err)
	}

	eventsChan := make(chan *PipelineEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event PipelineEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					// Send error on error channel, skip message
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal pipeline event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if GetWork or GetQueueStatus returned
// "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
