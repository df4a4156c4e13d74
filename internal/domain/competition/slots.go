package competition

import (
	"time"
)

// DefaultIntervalMinutes is the slot spacing used when an event's
// interval is absent, zero or negative.
const DefaultIntervalMinutes = 15

// SlotLabelFormat is how slot times are shown to operators.
const SlotLabelFormat = "3:04 PM"

// TimeSlot is a discrete bookable timestamp within an event's window.
// Derived on demand, never persisted. Identity is the RFC3339 UTC
// timestamp string, which is also what schedule rows store.
type TimeSlot struct {
	Time      time.Time
	ISO       string // RFC3339 UTC, the slot's identity
	Label     string // formatted in the viewing school's timezone
	Available bool
	Current   bool   // carried over from a prior booking no longer in the window
	BookedBy  string // display name of the owning school when unavailable
}

// EffectiveInterval returns the slot spacing, guarding against the
// zero/negative interval that would otherwise loop forever.
// INVARIANT: Event fields are not mutated
func (e *Event) EffectiveInterval() time.Duration {
	if e.IntervalMinutes <= 0 {
		return DefaultIntervalMinutes * time.Minute
	}
	return time.Duration(e.IntervalMinutes) * time.Minute
}

// SlotTimes walks the event's time window and returns the candidate
// slot instants: strictly increasing, spaced EffectiveInterval apart,
// starting at StartTime and ending before EndTime, skipping any
// instant whose wall-clock time-of-day falls inside the lunch window.
// PRE: none
// POST: returns nil when the event has no time window
func SlotTimes(e Event) []time.Time {
	if !e.IsTimed() {
		return nil
	}
	interval := e.EffectiveInterval()

	var times []time.Time
	for cur := e.StartTime; cur.Before(e.EndTime); cur = cur.Add(interval) {
		if inLunchWindow(cur, e.LunchStart, e.LunchEnd) {
			continue
		}
		times = append(times, cur)
	}
	return times
}

// inLunchWindow reports whether t's wall-clock time-of-day falls in
// [lunchStart, lunchEnd). The comparison deliberately ignores the
// calendar date so a lunch window stored on a different reference date
// still applies — the window is recurring, not date-bound.
func inLunchWindow(t, lunchStart, lunchEnd time.Time) bool {
	if lunchStart.IsZero() || lunchEnd.IsZero() {
		return false
	}
	tod := minuteOfDay(t)
	return tod >= minuteOfDay(lunchStart) && tod < minuteOfDay(lunchEnd)
}

func minuteOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// SlotID returns the identity string for a slot instant.
func SlotID(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// GenerateSlots produces the slot list an operator sees for an event:
// the candidate sequence from SlotTimes, flagged against the occupancy
// map (slot ID -> owning school name, acting school's own rows already
// excluded), labeled in the viewing school's timezone.
//
// If the previously selected slot is no longer in the generated
// sequence (the event's window changed after booking), it is
// synthesized and prepended exactly once, marked available and labeled
// "(current)", so an existing booking is never silently dropped.
// PRE: occupied never contains the acting school's own bookings
// POST: returns slots in window order; a synthesized current slot, if
// any, is first
func GenerateSlots(e Event, selected string, occupied map[string]string, loc *time.Location) []TimeSlot {
	if loc == nil {
		loc = time.UTC
	}

	times := SlotTimes(e)
	slots := make([]TimeSlot, 0, len(times))
	selectedSeen := false
	for _, t := range times {
		id := SlotID(t)
		owner, taken := occupied[id]
		if id == selected {
			selectedSeen = true
			// A school can always see and keep its own slot.
			taken = false
			owner = ""
		}
		slots = append(slots, TimeSlot{
			Time:      t,
			ISO:       id,
			Label:     t.In(loc).Format(SlotLabelFormat),
			Available: !taken,
			BookedBy:  owner,
		})
	}

	if selected != "" && !selectedSeen {
		slots = append([]TimeSlot{synthesizeCurrent(selected, loc)}, slots...)
	}
	return slots
}

// synthesizeCurrent builds the placeholder slot for a prior booking
// that fell outside the freshly generated window.
func synthesizeCurrent(selected string, loc *time.Location) TimeSlot {
	slot := TimeSlot{
		ISO:       selected,
		Label:     selected + " (current)",
		Available: true,
		Current:   true,
	}
	if t, err := time.Parse(time.RFC3339, selected); err == nil {
		slot.Time = t
		slot.Label = t.In(loc).Format(SlotLabelFormat) + " (current)"
	}
	return slot
}
