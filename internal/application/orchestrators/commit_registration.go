package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cadethq/internal/domain/audit"
	"cadethq/internal/domain/competition"
	"cadethq/internal/domain/registration"
)

// CompetitionStoreForCommit defines the reads the committer needs.
type CompetitionStoreForCommit interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
	ListEvents(ctx context.Context, competitionID string) ([]competition.Event, error)
}

// RegistrationStoreForCommit defines the registration persistence the
// committer needs. ReplaceForSchool must be atomic: it deletes the
// school's prior rows and inserts the new ones in one transaction, and
// returns ErrSlotTaken when a slot insert hits the schedule's unique
// index.
type RegistrationStoreForCommit interface {
	ListSlotsByEvents(ctx context.Context, competitionID string, eventIDs []string) ([]registration.OccupancyRow, error)
	ReplaceForSchool(ctx context.Context, reg registration.Registration, entries []registration.EventRegistration, slots []registration.ScheduleSlot) error
}

// AuditStore defines the audit log sink used by orchestrators.
type AuditStore interface {
	Save(ctx context.Context, e audit.Event) error
}

// SchedulePublisher signals subscribers that a competition's schedule
// changed.
type SchedulePublisher interface {
	Publish(competitionID string)
}

// ErrSlotTaken aliases the domain sentinel so call sites and tests in
// this package can match it without importing the store layer.
var ErrSlotTaken = registration.ErrSlotTaken

// ValidationError reports a commit rejected before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports slots lost to another school. EventIDs names
// every event whose chosen slot is no longer available, so the form can
// flag them all in one pass.
type ConflictError struct {
	EventIDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("selected time slots are no longer available for %d event(s)", len(e.EventIDs))
}

// EventSelection is one selected event, with its chosen slot when the
// event is timed.
type EventSelection struct {
	EventID string
	Slot    string // RFC3339 UTC slot ID; empty for untimed events
}

// CommitRegistrationInput carries input for the commit orchestrator.
type CommitRegistrationInput struct {
	CompetitionID string
	SchoolID      string
	ActorID       string
	ActorEmail    string
	ActorRole     string
	Selections    []EventSelection
}

// CommitRegistrationDeps holds dependencies for CommitRegistration.
type CommitRegistrationDeps struct {
	CompetitionStore  CompetitionStoreForCommit
	RegistrationStore RegistrationStoreForCommit
	AuditStore        AuditStore
	Publisher         SchedulePublisher
	GenerateID        func() string
	Now               func() time.Time
}

// Confirmation is the result of a successful commit.
type Confirmation struct {
	RegistrationID string
	TotalFeeCents  int64
}

// commitTimeout bounds the whole commit, including the transaction.
const commitTimeout = 10 * time.Second

// ExecuteCommitRegistration validates a school's selection, re-checks
// slot availability against the live schedule, and atomically replaces
// the school's registration for the competition. A commit that starts
// is allowed to finish even if the caller goes away: the incoming
// context's values are kept but its cancellation is detached.
//
// PRE: CompetitionID, SchoolID, ActorID non-empty; at least one selection
// POST: on success the school's old rows are replaced by the new
// selection in one transaction and subscribers are signalled
// INVARIANT: a failed commit writes nothing — the school's previous
// registration is untouched
func ExecuteCommitRegistration(ctx context.Context, input CommitRegistrationInput, deps CommitRegistrationDeps) (Confirmation, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if input.CompetitionID == "" || input.SchoolID == "" {
		return Confirmation{}, &ValidationError{Msg: "competition and school are required"}
	}
	if len(input.Selections) == 0 {
		return Confirmation{}, &ValidationError{Msg: "select at least one event"}
	}

	comp, err := deps.CompetitionStore.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return Confirmation{}, err
	}
	events, err := deps.CompetitionStore.ListEvents(ctx, input.CompetitionID)
	if err != nil {
		return Confirmation{}, err
	}
	byID := make(map[string]competition.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	// Shape validation first: a timed event needs a parseable slot, an
	// untimed event must not carry one, no event twice.
	seen := make(map[string]bool, len(input.Selections))
	slotTimes := make(map[string]time.Time)
	for _, sel := range input.Selections {
		ev, ok := byID[sel.EventID]
		if !ok {
			return Confirmation{}, &ValidationError{Msg: "unknown event selected"}
		}
		if seen[sel.EventID] {
			return Confirmation{}, &ValidationError{Msg: fmt.Sprintf("event %q selected twice", ev.Name)}
		}
		seen[sel.EventID] = true

		if !ev.IsTimed() {
			if sel.Slot != "" {
				return Confirmation{}, &ValidationError{Msg: fmt.Sprintf("event %q does not take a time slot", ev.Name)}
			}
			continue
		}
		if sel.Slot == "" {
			return Confirmation{}, &ValidationError{Msg: fmt.Sprintf("choose a time slot for %q", ev.Name)}
		}
		at, err := time.Parse(time.RFC3339, sel.Slot)
		if err != nil {
			return Confirmation{}, &ValidationError{Msg: fmt.Sprintf("invalid time slot for %q", ev.Name)}
		}
		slotTimes[sel.EventID] = at.UTC()
	}

	// One schedule read serves both the window check and the conflict
	// check. This is the UX fast path; the unique index in storage is
	// the real guarantee.
	eventIDs := make([]string, 0, len(slotTimes))
	for id := range slotTimes {
		eventIDs = append(eventIDs, id)
	}
	var occupied []registration.OccupancyRow
	if len(eventIDs) > 0 {
		occupied, err = deps.RegistrationStore.ListSlotsByEvents(ctx, input.CompetitionID, eventIDs)
		if err != nil {
			return Confirmation{}, err
		}
	}

	// A slot must be one of the event's generated slot times, with one
	// exception: the school's own existing booking stays committable
	// even when a later change to the event window no longer generates
	// it. The form surfaces such a slot as "(current)"; an edit that
	// keeps it must never be rejected.
	for _, sel := range input.Selections {
		at, timed := slotTimes[sel.EventID]
		if !timed {
			continue
		}
		if validSlotTime(byID[sel.EventID], at) {
			continue
		}
		if !ownsScheduledSlot(occupied, input.SchoolID, sel.EventID, at) {
			return Confirmation{}, &ValidationError{Msg: fmt.Sprintf("time slot for %q is outside the event window", byID[sel.EventID].Name)}
		}
	}

	if conflicted := findConflicts(slotTimes, occupied, input.SchoolID); len(conflicted) > 0 {
		return Confirmation{}, &ConflictError{EventIDs: conflicted}
	}

	now := deps.Now()
	total := comp.FeeCents
	for _, sel := range input.Selections {
		total += byID[sel.EventID].FeeCents
	}

	reg := registration.Registration{
		ID:            deps.GenerateID(),
		CompetitionID: input.CompetitionID,
		SchoolID:      input.SchoolID,
		TotalFeeCents: total,
		Status:        registration.StatusSubmitted,
		CreatedAt:     now,
	}
	if err := reg.Validate(); err != nil {
		return Confirmation{}, err
	}

	entries := make([]registration.EventRegistration, 0, len(input.Selections))
	slots := make([]registration.ScheduleSlot, 0, len(slotTimes))
	for _, sel := range input.Selections {
		entries = append(entries, registration.EventRegistration{
			ID:            deps.GenerateID(),
			CompetitionID: input.CompetitionID,
			EventID:       sel.EventID,
			SchoolID:      input.SchoolID,
		})
		if at, ok := slotTimes[sel.EventID]; ok {
			slots = append(slots, registration.ScheduleSlot{
				ID:            deps.GenerateID(),
				CompetitionID: input.CompetitionID,
				EventID:       sel.EventID,
				SchoolID:      input.SchoolID,
				ScheduledTime: at,
			})
		}
	}

	if err := deps.RegistrationStore.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost the race after the availability check. Re-query to
			// name every event that needs a new slot.
			occupied, qerr := deps.RegistrationStore.ListSlotsByEvents(ctx, input.CompetitionID, eventIDs)
			if qerr == nil {
				if conflicted := findConflicts(slotTimes, occupied, input.SchoolID); len(conflicted) > 0 {
					return Confirmation{}, &ConflictError{EventIDs: conflicted}
				}
			}
			return Confirmation{}, &ConflictError{EventIDs: eventIDs}
		}
		slog.Error("portal_event", "event", "commit_failed", "competition_id", input.CompetitionID, "school_id", input.SchoolID, "error", err)
		return Confirmation{}, err
	}

	evt := audit.NewEvent(input.ActorID, input.ActorEmail, input.ActorRole, audit.CategoryPortal, audit.ActionCommit).
		WithSchool(input.SchoolID).
		WithResource("registration", reg.ID).
		WithDescription(fmt.Sprintf("registered for %d event(s) in %s", len(entries), comp.Name))
	if err := deps.AuditStore.Save(ctx, evt); err != nil {
		slog.Error("audit_event", "event", "audit_write_failed", "error", err)
	}

	slog.Info("portal_event", "event", "registration_committed",
		"competition_id", input.CompetitionID,
		"school_id", input.SchoolID,
		"registration_id", reg.ID,
		"events", len(entries),
		"slots", len(slots),
		"total_fee_cents", total,
	)

	if deps.Publisher != nil {
		deps.Publisher.Publish(input.CompetitionID)
	}

	return Confirmation{RegistrationID: reg.ID, TotalFeeCents: total}, nil
}

// validSlotTime reports whether at is one of the event's generated slot
// times.
func validSlotTime(ev competition.Event, at time.Time) bool {
	for _, t := range competition.SlotTimes(ev) {
		if t.Equal(at) {
			return true
		}
	}
	return false
}

// ownsScheduledSlot reports whether the school already holds the exact
// (event, time) row on the live schedule.
func ownsScheduledSlot(occupied []registration.OccupancyRow, schoolID, eventID string, at time.Time) bool {
	for _, row := range occupied {
		if row.SchoolID == schoolID && row.EventID == eventID && row.ScheduledTime.Equal(at) {
			return true
		}
	}
	return false
}

// findConflicts returns the event IDs whose chosen slot is held by a
// different school, sorted for stable output.
func findConflicts(slotTimes map[string]time.Time, occupied []registration.OccupancyRow, schoolID string) []string {
	var conflicted []string
	for eventID, at := range slotTimes {
		for _, row := range occupied {
			if row.SchoolID == schoolID {
				continue
			}
			if row.EventID == eventID && row.ScheduledTime.Equal(at) {
				conflicted = append(conflicted, eventID)
				break
			}
		}
	}
	sort.Strings(conflicted)
	return conflicted
}
