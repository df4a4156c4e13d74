package competition

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 200
	MaxLocationLength    = 200
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrEmptyName          = errors.New("competition name cannot be empty")
	ErrMissingStartDate   = errors.New("competition start date is required")
	ErrEndBeforeStart     = errors.New("end date cannot be before start date")
	ErrNegativeFee        = errors.New("fee cannot be negative")
	ErrEmptyCompetitionID = errors.New("competition ID cannot be empty")
	ErrEmptyEventName     = errors.New("event name cannot be empty")
	ErrHalfTimeWindow     = errors.New("event start and end time must both be set or both be empty")
	ErrHalfLunchWindow    = errors.New("lunch start and end time must both be set or both be empty")
)

// Competition is an inter-school competition hosted on the portal.
// Read-only from the registration subsystem's perspective.
type Competition struct {
	ID        string
	Name      string
	Location  string
	FeeCents  int64 // base registration fee
	StartDate time.Time
	EndDate   time.Time // zero value means single-day competition
}

// Validate checks the competition's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Competition) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("competition name cannot exceed 200 characters")
	}
	if len(c.Location) > MaxLocationLength {
		return errors.New("competition location cannot exceed 200 characters")
	}
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return ErrEndBeforeStart
	}
	if c.FeeCents < 0 {
		return ErrNegativeFee
	}
	return nil
}

// Event is a single scored event within a competition, e.g. "Armed
// Drill" or "Color Guard". An event with a time window is booked into
// discrete time slots; an event without one is a flat yes/no entry.
type Event struct {
	ID              string
	CompetitionID   string
	Name            string
	Description     string
	FeeCents        int64
	StartTime       time.Time // zero value means no slot concept
	EndTime         time.Time
	LunchStart      time.Time // zero value means no lunch break
	LunchEnd        time.Time
	IntervalMinutes int // slot spacing; <= 0 falls back to DefaultIntervalMinutes
	MaxParticipants int // 0 means unlimited
}

// Validate checks the event's invariants. IntervalMinutes is not
// validated: zero and negative values are tolerated and fall back to
// the default at slot-generation time.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.CompetitionID == "" {
		return ErrEmptyCompetitionID
	}
	if e.Name == "" {
		return ErrEmptyEventName
	}
	if len(e.Name) > MaxNameLength {
		return errors.New("event name cannot exceed 200 characters")
	}
	if len(e.Description) > MaxDescriptionLength {
		return errors.New("event description cannot exceed 2000 characters")
	}
	if e.StartTime.IsZero() != e.EndTime.IsZero() {
		return ErrHalfTimeWindow
	}
	if !e.StartTime.IsZero() && !e.EndTime.After(e.StartTime) {
		return errors.New("event end time must be after start time")
	}
	if e.LunchStart.IsZero() != e.LunchEnd.IsZero() {
		return ErrHalfLunchWindow
	}
	if e.FeeCents < 0 {
		return ErrNegativeFee
	}
	return nil
}

// IsTimed returns true if the event books discrete time slots.
// INVARIANT: Event fields are not mutated
func (e *Event) IsTimed() bool {
	return !e.StartTime.IsZero() && !e.EndTime.IsZero()
}
