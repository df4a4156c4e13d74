package registration

import (
	"errors"
	"time"
)

// Registration statuses
const (
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ValidStatuses contains all valid registration statuses.
var ValidStatuses = []string{StatusSubmitted, StatusConfirmed, StatusCancelled}

// Domain errors
var (
	ErrEmptyCompetitionID = errors.New("competition ID cannot be empty")
	ErrEmptySchoolID      = errors.New("school ID cannot be empty")
	ErrEmptyEventID       = errors.New("event ID cannot be empty")
	ErrInvalidStatus      = errors.New("status must be one of: submitted, confirmed, cancelled")
	ErrNegativeFee        = errors.New("total fee cannot be negative")
	ErrMissingSlotTime    = errors.New("scheduled time must be set")

	// ErrSlotTaken is returned by stores when a slot insert violates
	// the one-school-per-slot unique index.
	ErrSlotTaken = errors.New("time slot is already taken")
)

// Registration is a school's enrollment in a competition as a whole:
// one row per (competition, school). TotalFeeCents is a snapshot of
// the derived fee at commit time, never an independent source of
// truth.
type Registration struct {
	ID            string
	CompetitionID string
	SchoolID      string
	TotalFeeCents int64
	Status        string
	Paid          bool
	CreatedAt     time.Time
}

// Validate checks if the Registration has valid data.
// PRE: Registration struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Registration) Validate() error {
	if r.CompetitionID == "" {
		return ErrEmptyCompetitionID
	}
	if r.SchoolID == "" {
		return ErrEmptySchoolID
	}
	if !isValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	if r.TotalFeeCents < 0 {
		return ErrNegativeFee
	}
	return nil
}

// EventRegistration is a school's entry into one specific event within
// a competition.
type EventRegistration struct {
	ID            string
	CompetitionID string
	EventID       string
	SchoolID      string
}

// Validate checks if the EventRegistration has valid data.
// PRE: EventRegistration struct is populated
// POST: Returns nil if valid, error otherwise
func (er *EventRegistration) Validate() error {
	if er.CompetitionID == "" {
		return ErrEmptyCompetitionID
	}
	if er.EventID == "" {
		return ErrEmptyEventID
	}
	if er.SchoolID == "" {
		return ErrEmptySchoolID
	}
	return nil
}

// ScheduleSlot binds a school, event, competition and booked timestamp.
// INVARIANT: at most one school owns a given (competition, event,
// scheduled_time) — enforced by a unique index in storage; the
// application-level availability check is only a fast-path UX
// optimization.
type ScheduleSlot struct {
	ID            string
	CompetitionID string
	EventID       string
	SchoolID      string
	ScheduledTime time.Time
}

// Validate checks if the ScheduleSlot has valid data.
// PRE: ScheduleSlot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *ScheduleSlot) Validate() error {
	if s.CompetitionID == "" {
		return ErrEmptyCompetitionID
	}
	if s.EventID == "" {
		return ErrEmptyEventID
	}
	if s.SchoolID == "" {
		return ErrEmptySchoolID
	}
	if s.ScheduledTime.IsZero() {
		return ErrMissingSlotTime
	}
	return nil
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
