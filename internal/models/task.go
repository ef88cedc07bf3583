package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TaskStatus is the short code stored for a task's progress.
// Only the values returned by TaskStatuses are valid.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "P"
	TaskStatusInProgress TaskStatus = "IP"
	TaskStatusCompleted  TaskStatus = "C"
)

var taskStatusLabels = map[TaskStatus]string{
	TaskStatusPending:    "Pending",
	TaskStatusInProgress: "In-progress",
	TaskStatusCompleted:  "Completed",
}

// TaskStatuses returns the acceptable status codes in declaration order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}
}

// ParseTaskStatus converts a short code into a TaskStatus.
func ParseTaskStatus(code string) (TaskStatus, error) {
	status := TaskStatus(code)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown task status %q", code)
	}
	return status, nil
}

// IsValid reports whether s is one of the defined codes.
func (s TaskStatus) IsValid() bool {
	_, ok := taskStatusLabels[s]
	return ok
}

// Label returns the human readable name, e.g. "In-progress".
func (s TaskStatus) Label() string {
	return taskStatusLabels[s]
}

// Value refuses to write an unknown code to the database.
func (s TaskStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid task status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *TaskStatus) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*s = TaskStatus(v)
	case []byte:
		*s = TaskStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into TaskStatus", value)
	}
	if !s.IsValid() {
		return fmt.Errorf("invalid task status %q", string(*s))
	}
	return nil
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      TaskStatus `gorm:"type:varchar(2);not null;default:'P'" json:"status"`
}
