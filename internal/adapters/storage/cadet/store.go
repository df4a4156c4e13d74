package cadet

import (
	"context"

	domain "cadethq/internal/domain/cadet"
)

// Store persists Cadet state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Cadet, error)
	Save(ctx context.Context, value domain.Cadet) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Cadet, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count. SchoolID
// is required: every roster read is scoped to one school.
type ListFilter struct {
	SchoolID string
	Status   string
	Flight   string
	Search   string
	Sort     string
	Dir      string
	Limit    int
	Offset   int
}
