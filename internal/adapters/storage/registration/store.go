package registration

import (
	"context"

	domain "cadethq/internal/domain/registration"
)

// Store persists a school's competition registration: the registration
// row itself, its per-event entries, and its booked schedule slots.
type Store interface {
	// GetBySchool returns the school's registration for a competition.
	GetBySchool(ctx context.Context, competitionID, schoolID string) (domain.Registration, error)

	// ListEventRegistrations returns the school's event entries for a
	// competition.
	ListEventRegistrations(ctx context.Context, competitionID, schoolID string) ([]domain.EventRegistration, error)

	// ListSlotsBySchool returns the school's booked slots for a
	// competition.
	ListSlotsBySchool(ctx context.Context, competitionID, schoolID string) ([]domain.ScheduleSlot, error)

	// ListOccupancy returns every booked slot in a competition joined
	// with the owning school's name.
	ListOccupancy(ctx context.Context, competitionID string) ([]domain.OccupancyRow, error)

	// ListSlotsByEvents returns booked slots for the named events only.
	ListSlotsByEvents(ctx context.Context, competitionID string, eventIDs []string) ([]domain.OccupancyRow, error)

	// ReplaceForSchool atomically replaces the school's registration,
	// entries and slots in one transaction. A slot insert that violates
	// the one-school-per-slot unique index rolls everything back and
	// returns registration.ErrSlotTaken.
	ReplaceForSchool(ctx context.Context, reg domain.Registration, entries []domain.EventRegistration, slots []domain.ScheduleSlot) error

	// DeleteForSchool removes the school's registration, entries and
	// slots for a competition in one transaction.
	DeleteForSchool(ctx context.Context, competitionID, schoolID string) error
}
