package incident

import (
	"context"

	domain "cadethq/internal/domain/incident"
)

// Store persists Incident state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Incident, error)
	Save(ctx context.Context, value domain.Incident) error
	// ListBySchool returns a school's most recent incidents, newest
	// first. limit <= 0 means no limit.
	ListBySchool(ctx context.Context, schoolID string, limit int) ([]domain.Incident, error)
	ListByCadet(ctx context.Context, cadetID string) ([]domain.Incident, error)
}
