package portal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cadethq/internal/domain/competition"
	"cadethq/internal/domain/registration"
)

// OccupancyStore defines the schedule query the tracker needs.
type OccupancyStore interface {
	ListOccupancy(ctx context.Context, competitionID string) ([]registration.OccupancyRow, error)
}

// Refresh tuning. Failures keep the last known snapshot; a short capped
// backoff covers transient query errors.
const (
	refreshAttempts    = 3
	refreshBaseBackoff = 200 * time.Millisecond
	refreshTimeout     = 10 * time.Second
)

// Tracker maintains, for one competition, the set of time slots already
// booked by schools other than the acting school. The acting school's
// own rows are always excluded so its bookings never appear "filled"
// and it can freely reselect its own slot.
//
// Every trigger — surface open, a hub change signal, a manual refresh,
// a failed booking — goes through the same entry point: re-query and
// swap the snapshot. Notifications never carry deltas.
type Tracker struct {
	store         OccupancyStore
	competitionID string
	schoolID      string // acting school, excluded from the snapshot

	mu       sync.RWMutex
	occupied map[string]map[string]string // event ID -> slot ID -> owner school name
}

// NewTracker creates a tracker scoped to one competition and acting
// school. The identity is an explicit dependency, never read from
// ambient state.
// PRE: store is non-nil; competitionID and schoolID are non-empty
// POST: tracker starts empty; call Refresh before first use
func NewTracker(store OccupancyStore, competitionID, schoolID string) *Tracker {
	return &Tracker{
		store:         store,
		competitionID: competitionID,
		schoolID:      schoolID,
		occupied:      make(map[string]map[string]string),
	}
}

// Refresh re-queries the schedule table and replaces the snapshot.
// On failure the previous snapshot is kept — stale-but-available beats
// crashing — and the error is returned after the final attempt.
// PRE: none
// POST: snapshot reflects the latest successful query
func (t *Tracker) Refresh(ctx context.Context) error {
	var rows []registration.OccupancyRow
	var err error

	backoff := refreshBaseBackoff
	for attempt := 1; attempt <= refreshAttempts; attempt++ {
		qctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		rows, err = t.store.ListOccupancy(qctx, t.competitionID)
		cancel()
		if err == nil {
			break
		}
		slog.Warn("occupancy_refresh_failed",
			"competition_id", t.competitionID,
			"attempt", attempt,
			"error", err,
		)
		if attempt < refreshAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	if err != nil {
		return err
	}

	next := BuildOccupancy(rows, t.schoolID)

	t.mu.Lock()
	t.occupied = next
	t.mu.Unlock()
	return nil
}

// BuildOccupancy groups schedule rows into the event ID -> slot ID ->
// owner school name map, excluding the acting school's own rows. The
// tracker and the overview projection share this one grouping so the
// two read paths cannot drift.
// INVARIANT: actingSchoolID never appears as an owner in the result
func BuildOccupancy(rows []registration.OccupancyRow, actingSchoolID string) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, row := range rows {
		if row.SchoolID == actingSchoolID {
			continue
		}
		if out[row.EventID] == nil {
			out[row.EventID] = make(map[string]string)
		}
		out[row.EventID][competition.SlotID(row.ScheduledTime)] = row.SchoolName
	}
	return out
}

// Invalidate is the unified "new snapshot available" entry point: it
// re-runs the query and logs, but never fails the caller. Push signal,
// timer and manual refresh button all land here.
// PRE: none
// POST: snapshot refreshed, or left stale with a log line
func (t *Tracker) Invalidate(ctx context.Context) {
	if err := t.Refresh(ctx); err != nil {
		slog.Error("occupancy_invalidate_stale",
			"competition_id", t.competitionID,
			"error", err,
		)
	}
}

// Watch consumes change signals until the context ends or the channel
// closes, re-querying on every signal.
// PRE: ch was obtained from a Hub subscription for this competition
// POST: returns when ctx is done or ch is closed
func (t *Tracker) Watch(ctx context.Context, ch <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			t.Invalidate(ctx)
		}
	}
}

// Occupied returns the slot ID -> owner name map for one event. The
// returned map is a copy.
// INVARIANT: the acting school never appears as an owner
func (t *Tracker) Occupied(eventID string) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	src := t.occupied[eventID]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Snapshot returns a copy of the full occupancy map.
// INVARIANT: the acting school never appears as an owner
func (t *Tracker) Snapshot() map[string]map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]map[string]string, len(t.occupied))
	for eventID, slots := range t.occupied {
		m := make(map[string]string, len(slots))
		for k, v := range slots {
			m[k] = v
		}
		out[eventID] = m
	}
	return out
}
