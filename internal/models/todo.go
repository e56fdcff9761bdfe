package models

import (
	"time"

	"github.com/google/uuid"
)

// Todo statuses. Stored as plain text in the todos table.
const (
	StatusToDo       = "to_do"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Todo struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Description   string
	DueDate       *time.Time
	IsCompleted   bool
	IsImportant   bool
	IsUrgent      bool
	CreatedAt     time.Time
	CompletedAt   *time.Time
	Status        string
	PomodoroCount int
}
