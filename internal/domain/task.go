package domain

import "time"

// TaskStatus mirrors the task entity's lifecycle state as far as the
// schedulers care: completed tasks are never due-notified.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task is the due-date projection of a task used by the schedulers.
// PreDueSent is the pipeline's only idempotency flag: once set, the pre-due
// checker stays silent until task-update logic toggles Rescheduled and
// resets the flag (a new due-state epoch).
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Rescheduled bool       `json:"rescheduled"`
	PreDueSent  bool       `json:"pre_due_sent"`
}
