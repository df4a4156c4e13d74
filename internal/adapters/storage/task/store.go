package task

import (
	"context"

	domain "cadethq/internal/domain/task"
)

// Store persists Task state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Task, error)
	Save(ctx context.Context, value domain.Task) error
	// ListBySchool returns a school's tasks, optionally filtered by
	// status. Empty status means all statuses.
	ListBySchool(ctx context.Context, schoolID, status string) ([]domain.Task, error)
	ListByCadet(ctx context.Context, cadetID, status string) ([]domain.Task, error)
}
