package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a queued offline task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Offline action types. Each has a corresponding payload struct below;
// the payload column in offline_queue is opaque JSON keyed by ActionType.
const (
	ActionCreateDiary         = "create_diary"
	ActionCreateFoodEntry     = "create_food_entry"
	ActionDeleteFoodEntry     = "delete_food_entry"
	ActionUploadActivityDiary = "upload_activity_diary"
)

// Task is a durably-persisted deferred mutation. Immutable once created
// except for Status and Error, which only the queue may change. Tasks are
// never deleted; completed and failed rows remain as an audit trail.
type Task struct {
	ID         string          `json:"id"`
	ActionType string          `json:"action_type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	Status     TaskStatus      `json:"status"`
	Error      string          `json:"error,omitempty"`
}

// CreateDiaryPayload asks the server to create the missing remote counterpart
// of a diary that was synthesized locally while offline.
type CreateDiaryPayload struct {
	DiaryID string       `json:"diary_id"`
	Date    string       `json:"date"`
	Goals   ProfileGoals `json:"goals"`
}

// CreateFoodEntryPayload replays an entry logged offline. EntryID is the
// client-generated temporary UUID; the server assigns the canonical one.
type CreateFoodEntryPayload struct {
	EntryID string    `json:"entry_id"`
	Date    string    `json:"date"`
	Entry   FoodEntry `json:"entry"`
}

// DeleteFoodEntryPayload replays an entry deletion. EntryID may still be a
// temporary identifier; replay resolves it through the id mapping table.
type DeleteFoodEntryPayload struct {
	EntryID string `json:"entry_id"`
	DiaryID string `json:"diary_id"`
	Date    string `json:"date"`
}

// UploadActivityDiaryPayload uploads a closed workout session.
type UploadActivityDiaryPayload struct {
	DiaryID string        `json:"diary_id"`
	Session ActivityDiary `json:"session"`
}

// DecodePayload unmarshals raw into dst, wrapping failures with the action
// type for log context.
func DecodePayload(actionType string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", actionType, err)
	}
	return nil
}
