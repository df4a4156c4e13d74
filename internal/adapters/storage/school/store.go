package school

import (
	"context"

	domain "cadethq/internal/domain/school"
)

// Store persists School state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.School, error)
	Save(ctx context.Context, value domain.School) error
	ListAll(ctx context.Context) ([]domain.School, error)
}
