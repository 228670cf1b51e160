package models

import "time"

// Các loại sự kiện được phát khi dữ liệu thay đổi
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
	EventUserDeleted = "user.deleted"
)

// Event là một sự kiện hoạt động, gửi tới SSE stream và MQTT broker
type Event struct {
	Type       string    `json:"type"`
	ActorID    int64     `json:"actor_id"`
	Task       *Task     `json:"task,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
