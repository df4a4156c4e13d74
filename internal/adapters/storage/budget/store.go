package budget

import (
	"context"

	domain "cadethq/internal/domain/budget"
)

// Store persists budget ledger entries. The ledger is append-only:
// there is no update or delete.
type Store interface {
	Save(ctx context.Context, value domain.Entry) error
	ListBySchool(ctx context.Context, schoolID string) ([]domain.Entry, error)
}
