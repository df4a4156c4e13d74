package competition

import (
	"context"
	"time"

	domain "cadethq/internal/domain/competition"
)

// Store persists Competition and Event state. The portal treats
// competitions as read-mostly: they are seeded or managed by admins,
// never written from the registration flow.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Competition, error)
	Save(ctx context.Context, value domain.Competition) error
	SaveEvent(ctx context.Context, value domain.Event) error
	ListAll(ctx context.Context) ([]domain.Competition, error)
	// ListUpcoming returns competitions whose start date is on or
	// after from, soonest first.
	ListUpcoming(ctx context.Context, from time.Time) ([]domain.Competition, error)
	// ListEvents returns a competition's events in schedule order:
	// timed events by start time, then untimed events by name.
	ListEvents(ctx context.Context, competitionID string) ([]domain.Event, error)
}
