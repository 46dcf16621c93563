package store

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between work records and Redis hashes.
//
// Redis stores hashes as string-to-string maps. The contract payload is
// already JSON and is stored verbatim in a single field; numeric fields are
// stringified and parsed back.

// WorkRecordToHash converts a WorkRecord to Redis hash format.
func WorkRecordToHash(r *WorkRecord) map[string]interface{} {
	return map[string]interface{}{
		"work_id":           r.WorkID,
		"story_id":          r.StoryID,
		"source_agent":      r.SourceAgent,
		"target_agent":      r.TargetAgent,
		"priority":          r.Priority,
		"status":            r.Status,
		"assigned_agent_id": r.AssignedAgentID,
		"retry_count":       r.RetryCount,
		"error":             r.Error,
		"contract_json":     r.ContractJSON,
		"created_at_ms":     r.CreatedAtMs,
		"finished_at_ms":    r.FinishedAtMs,
	}
}

// HashToWorkRecord converts a Redis hash back to a WorkRecord.
func HashToWorkRecord(hash map[string]string) (*WorkRecord, error) {
	retryCount, err := strconv.Atoi(hash["retry_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid retry_count field: %w", err)
	}

	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	// finished_at_ms may legitimately be absent for records archived while
	// still pending (cancellations racing a shutdown).
	finishedAtMs, _ := strconv.ParseInt(hash["finished_at_ms"], 10, 64)

	return &WorkRecord{
		WorkID:          hash["work_id"],
		StoryID:         hash["story_id"],
		SourceAgent:     hash["source_agent"],
		TargetAgent:     hash["target_agent"],
		Priority:        hash["priority"],
		Status:          hash["status"],
		AssignedAgentID: hash["assigned_agent_id"],
		RetryCount:      retryCount,
		Error:           hash["error"],
		ContractJSON:    hash["contract_json"],
		CreatedAtMs:     createdAtMs,
		FinishedAtMs:    finishedAtMs,
	}, nil
}
