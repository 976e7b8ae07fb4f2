package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeNotificationDeliver = "notification:deliver"
	TypeJobClose            = "job:close"
)

// Notification kinds
const (
	KindApplicationReceived = "application_received"
	KindApplicationStatus   = "application_status"
	KindMessageReceived     = "message_received"
	KindJobClosed           = "job_closed"
)

// NotificationPayload is the payload for notification delivery tasks
type NotificationPayload struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Body   string `json:"body"`
}

// JobClosePayload is the payload for deadline-driven job closing
type JobClosePayload struct {
	JobID string `json:"job_id"`
}

// NewNotificationDeliverTask creates a task to persist a notification for a user
func NewNotificationDeliverTask(userID, kind, body string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotificationPayload{
		UserID: userID,
		Kind:   kind,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeNotificationDeliver, payload), nil
}

// NewJobCloseTask creates a task to close a job whose deadline has passed
func NewJobCloseTask(jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(JobClosePayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeJobClose, payload), nil
}

// ParseNotificationPayload parses a notification payload from an Asynq task
func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var payload NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseJobClosePayload parses a job close payload from an Asynq task
func ParseJobClosePayload(task *asynq.Task) (JobClosePayload, error) {
	var payload JobClosePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
