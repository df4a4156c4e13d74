package task

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxDetailsLength = 2000
)

// Status constants
const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusOpen, StatusCompleted, StatusCancelled}

// Domain errors
var (
	ErrEmptyTitle       = errors.New("task title cannot be empty")
	ErrEmptyCadetID     = errors.New("cadet ID cannot be empty")
	ErrEmptySchoolID    = errors.New("school ID cannot be empty")
	ErrInvalidStatus    = errors.New("status must be one of: open, completed, cancelled")
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrNotOpen          = errors.New("only open tasks can be completed")
)

// Task is a duty assigned to a cadet, e.g. "polish the trophy case
// before inspection".
type Task struct {
	ID          string
	SchoolID    string
	CadetID     string
	Title       string
	Details     string
	DueDate     time.Time // zero value means no due date
	Status      string
	CreatedBy   string // account ID
	CreatedAt   time.Time
	CompletedAt time.Time // zero until completed
}

// Validate checks if the Task has valid data.
// PRE: Task struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > MaxTitleLength {
		return errors.New("task title cannot exceed 200 characters")
	}
	if len(t.Details) > MaxDetailsLength {
		return errors.New("task details cannot exceed 2000 characters")
	}
	if strings.TrimSpace(t.CadetID) == "" {
		return ErrEmptyCadetID
	}
	if strings.TrimSpace(t.SchoolID) == "" {
		return ErrEmptySchoolID
	}
	if !isValidStatus(t.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Complete transitions an open task to completed.
// PRE: Task is in open status
// POST: Status is completed, CompletedAt is set
func (t *Task) Complete(now time.Time) error {
	if t.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	if t.Status != StatusOpen {
		return ErrNotOpen
	}
	t.Status = StatusCompleted
	t.CompletedAt = now
	return nil
}

// IsOverdue returns true if the task is open and past its due date.
// INVARIANT: Task fields are not mutated
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status != StatusOpen || t.DueDate.IsZero() {
		return false
	}
	return now.After(t.DueDate)
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
