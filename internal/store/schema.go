package store

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so
// several engine instances can coexist on a single Redis server.
//
// Key pattern: devteam:{instance_name}:{entity}:{id}
// Channel pattern: devteam:{instance_name}:{event_type}_events

// WorkKey returns the Redis key for an archived work record.
// Pattern: devteam:{instance_name}:work:{work_id}
func WorkKey(instanceName, workID string) string {
	return fmt.Sprintf("devteam:%s:work:%s", instanceName, workID)
}

// StoryWorkKey returns the Redis key for the per-story work index ZSET,
// scored by archive time so pipeline history reads back in order.
// Pattern: devteam:{instance_name}:story:{story_id}:work
func StoryWorkKey(instanceName, storyID string) string {
	return fmt.Sprintf("devteam:%s:story:%s:work", instanceName, storyID)
}

// QueueStatusKey returns the Redis key for the queue status snapshot.
// Pattern: devteam:{instance_name}:queue_status
func QueueStatusKey(instanceName string) string {
	return fmt.Sprintf("devteam:%s:queue_status", instanceName)
}

// PipelineEventsChannel returns the Pub/Sub channel name for work lifecycle
// events. The watch command and any external monitor subscribe here.
// Pattern: devteam:{instance_name}:pipeline_events
func PipelineEventsChannel(instanceName string) string {
	return fmt.Sprintf("devteam:%s:pipeline_events", instanceName)
}

// InboxKey returns the Redis key for the submission inbox list. Originators
// push contracts here; the coordinator pops them and delegates.
// Pattern: devteam:{instance_name}:inbox
func InboxKey(instanceName string) string {
	return fmt.Sprintf("devteam:%s:inbox", instanceName)
}
