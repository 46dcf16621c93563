package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testRecord() *WorkRecord {
	return &WorkRecord{
		WorkID:          uuid.New().String(),
		StoryID:         "STORY-GH-123",
		SourceAgent:     "project_manager",
		TargetAgent:     "game_designer",
		Priority:        "high",
		Status:          "completed",
		AssignedAgentID: "game_designer-001",
		RetryCount:      1,
		ContractJSON:    `{"contract_version":"1.0","story_id":"STORY-GH-123"}`,
		CreatedAtMs:     1700000000000,
		FinishedAtMs:    1700000060000,
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.NotNil(t, client)
		assert.Equal(t, "test-instance", client.instanceName)
	})

	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})
}

func TestPing(t *testing.T) {
	client, _ := setupTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestArchiveWork(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	t.Run("archives valid record", func(t *testing.T) {
		record := testRecord()
		err := client.ArchiveWork(ctx, record)
		require.NoError(t, err)

		// Record hash exists under the namespaced key.
		key := WorkKey("test-instance", record.WorkID)
		assert.True(t, mr.Exists(key))

		// Story index contains the work ID.
		history, err := client.StoryHistory(ctx, record.StoryID)
		require.NoError(t, err)
		assert.Contains(t, history, record.WorkID)
	})

	t.Run("archiving twice is idempotent", func(t *testing.T) {
		record := testRecord()
		require.NoError(t, client.ArchiveWork(ctx, record))
		require.NoError(t, client.ArchiveWork(ctx, record))

		history, err := client.StoryHistory(ctx, record.StoryID)
		require.NoError(t, err)

		count := 0
		for _, id := range history {
			if id == record.WorkID {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("rejects record without work_id", func(t *testing.T) {
		record := testRecord()
		record.WorkID = ""
		err := client.ArchiveWork(ctx, record)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid work record")
	})

	t.Run("rejects record with unknown target agent", func(t *testing.T) {
		record := testRecord()
		record.TargetAgent = "intern"
		err := client.ArchiveWork(ctx, record)
		assert.Error(t, err)
	})
}

func TestGetWork(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("round-trips an archived record", func(t *testing.T) {
		record := testRecord()
		require.NoError(t, client.ArchiveWork(ctx, record))

		got, err := client.GetWork(ctx, record.WorkID)
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("returns redis.Nil for missing record", func(t *testing.T) {
		_, err := client.GetWork(ctx, uuid.New().String())
		assert.True(t, IsNotFound(err))
	})
}

func TestWorkExists(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	record := testRecord()
	require.NoError(t, client.ArchiveWork(ctx, record))

	exists, err := client.WorkExists(ctx, record.WorkID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.WorkExists(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoryHistoryOrder(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	first := testRecord()
	first.FinishedAtMs = 1000
	second := testRecord()
	second.FinishedAtMs = 2000

	// Archive out of order; the index is scored by finish time.
	require.NoError(t, client.ArchiveWork(ctx, second))
	require.NoError(t, client.ArchiveWork(ctx, first))

	history, err := client.StoryHistory(ctx, first.StoryID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.WorkID, history[0])
	assert.Equal(t, second.WorkID, history[1])
}

func TestQueueStatus(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("returns redis.Nil before first save", func(t *testing.T) {
		_, err := client.GetQueueStatus(ctx)
		assert.True(t, IsNotFound(err))
	})

	t.Run("round-trips a snapshot", func(t *testing.T) {
		snapshot := &QueueSnapshot{
			QueuedItems:     3,
			ActiveItems:     2,
			CompletedItems:  7,
			RegisteredBy:    map[string]int{"developer": 1, "qa_tester": 1},
			AvailableAgents: 1,
			BusyAgents:      1,
			UpdatedAtMs:     1700000000000,
		}
		require.NoError(t, client.SaveQueueStatus(ctx, snapshot))

		got, err := client.GetQueueStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)
	})
}

func TestPublishAndSubscribeEvents(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("delivers published events to subscriber", func(t *testing.T) {
		sub, err := client.SubscribeEvents(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { sub.Close() })

		event := &PipelineEvent{
			Type:        EventWorkCompleted,
			WorkID:      uuid.New().String(),
			StoryID:     "STORY-GH-123",
			TargetAgent: "developer",
			Status:      "completed",
			TimestampMs: 1700000000000,
		}
		require.NoError(t, client.PublishEvent(ctx, event))

		select {
		case got := <-sub.Events():
			assert.Equal(t, event, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for pipeline event")
		}
	})

	t.Run("rejects invalid event", func(t *testing.T) {
		err := client.PublishEvent(ctx, &PipelineEvent{Type: EventWorkFailed})
		assert.Error(t, err)
	})

	t.Run("close is safe to call twice", func(t *testing.T) {
		sub, err := client.SubscribeEvents(ctx)
		require.NoError(t, err)
		assert.NoError(t, sub.Close())
		assert.NoError(t, sub.Close())
	})

	t.Run("malformed payload reported on error channel", func(t *testing.T) {
		sub, err := client.SubscribeEvents(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { sub.Close() })

		channel := PipelineEventsChannel("test-instance")
		require.NoError(t, client.rdb.Publish(ctx, channel, "not json").Err())

		select {
		case err := <-sub.Errors():
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for subscription error")
		}
	})
}

func TestInstanceNamespacing(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	alpha, err := NewClient(&redis.Options{Addr: mr.Addr()}, "alpha")
	require.NoError(t, err)
	t.Cleanup(func() { alpha.Close() })

	beta, err := NewClient(&redis.Options{Addr: mr.Addr()}, "beta")
	require.NoError(t, err)
	t.Cleanup(func() { beta.Close() })

	ctx := context.Background()
	record := testRecord()
	require.NoError(t, alpha.ArchiveWork(ctx, record))

	// The record is visible only through its own instance.
	_, err = beta.GetWork(ctx, record.WorkID)
	assert.True(t, IsNotFound(err))

	got, err := alpha.GetWork(ctx, record.WorkID)
	require.NoError(t, err)
	assert.Equal(t, record.WorkID, got.WorkID)
}

func TestHashRoundTrip(t *testing.T) {
	record := testRecord()
	hash := WorkRecordToHash(record)

	// Simulate the string-to-string map Redis hands back.
	stringHash := make(map[string]string, len(hash))
	for k, v := range hash {
		switch value := v.(type) {
		case string:
			stringHash[k] = value
		case int:
			stringHash[k] = strconv.Itoa(value)
		case int64:
			stringHash[k] = strconv.FormatInt(value, 10)
		}
	}

	got, err := HashToWorkRecord(stringHash)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestHashToWorkRecordRejectsCorruptFields(t *testing.T) {
	record := testRecord()
	hash := map[string]string{
		"work_id":       record.WorkID,
		"story_id":      record.StoryID,
		"retry_count":   "not-a-number",
		"created_at_ms": "1700000000000",
	}
	_, err := HashToWorkRecord(hash)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry_count")
}

func TestInbox(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("round-trips a submission", func(t *testing.T) {
		submission := &Submission{
			ContractJSON:  []byte(`{"contract_version":"1.0","story_id":"STORY-GH-5"}`),
			Priority:      "high",
			SubmittedAtMs: 1700000000000,
		}
		require.NoError(t, client.SubmitWork(ctx, submission))

		got, err := client.NextSubmission(ctx, time.Second)
		require.NoError(t, err)
		assert.JSONEq(t, string(submission.ContractJSON), string(got.ContractJSON))
		assert.Equal(t, "high", got.Priority)
		assert.Equal(t, int64(1700000000000), got.SubmittedAtMs)
	})

	t.Run("preserves FIFO order", func(t *testing.T) {
		for _, story := range []string{"STORY-GH-1", "STORY-GH-2"} {
			require.NoError(t, client.SubmitWork(ctx, &Submission{
				ContractJSON: []byte(`{"story_id":"` + story + `"}`),
				Priority:     "medium",
			}))
		}

		first, err := client.NextSubmission(ctx, time.Second)
		require.NoError(t, err)
		assert.Contains(t, string(first.ContractJSON), "STORY-GH-1")

		second, err := client.NextSubmission(ctx, time.Second)
		require.NoError(t, err)
		assert.Contains(t, string(second.ContractJSON), "STORY-GH-2")
	})

	t.Run("rejects empty submissions", func(t *testing.T) {
		err := client.SubmitWork(ctx, &Submission{Priority: "low"})
		assert.Error(t, err)
	})

	t.Run("empty inbox times out with redis.Nil", func(t *testing.T) {
		_, err := client.NextSubmission(ctx, 10*time.Millisecond)
		assert.True(t, IsNotFound(err))
	})
}
