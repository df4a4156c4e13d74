package competition

import (
	"strings"
	"testing"
	"time"
)

func timedEvent() Event {
	return Event{
		ID:              "e1",
		CompetitionID:   "c1",
		Name:            "Armed Drill",
		StartTime:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		EndTime:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IntervalMinutes: 15,
	}
}

// TestSlotTimes_Spacing verifies slots are strictly increasing and
// spaced exactly interval minutes apart within [start, end).
func TestSlotTimes_Spacing(t *testing.T) {
	e := timedEvent()
	times := SlotTimes(e)

	if len(times) != 12 {
		t.Fatalf("expected 12 slots for a 3h window at 15m, got %d", len(times))
	}
	if !times[0].Equal(e.StartTime) {
		t.Errorf("first slot = %v, want start time %v", times[0], e.StartTime)
	}
	for i := 1; i < len(times); i++ {
		if diff := times[i].Sub(times[i-1]); diff != 15*time.Minute {
			t.Errorf("slot[%d]-slot[%d] = %v, want 15m", i, i-1, diff)
		}
	}
	last := times[len(times)-1]
	if !last.Before(e.EndTime) {
		t.Errorf("last slot %v is not before end time %v", last, e.EndTime)
	}
}

// TestSlotTimes_LunchExcluded verifies no slot falls within
// [lunch_start, lunch_end).
func TestSlotTimes_LunchExcluded(t *testing.T) {
	e := timedEvent()
	e.LunchStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e.LunchEnd = time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	times := SlotTimes(e)
	if len(times) != 8 {
		t.Fatalf("expected 8 slots (12 minus 4 lunch slots), got %d", len(times))
	}
	for _, tm := range times {
		h := tm.UTC().Hour()
		if h == 10 {
			t.Errorf("slot %v falls inside the lunch window", tm)
		}
	}
	// The boundary slot at lunch_end is included (half-open window).
	found := false
	for _, tm := range times {
		if tm.UTC().Hour() == 11 && tm.UTC().Minute() == 0 {
			found = true
		}
	}
	if !found {
		t.Error("slot at lunch_end boundary should be included")
	}
}

// TestSlotTimes_LunchOnDifferentDate verifies the lunch window applies
// by wall-clock time-of-day even when stored on another calendar date.
func TestSlotTimes_LunchOnDifferentDate(t *testing.T) {
	e := timedEvent()
	e.LunchStart = time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)
	e.LunchEnd = time.Date(2000, 1, 1, 11, 0, 0, 0, time.UTC)

	for _, tm := range SlotTimes(e) {
		if tm.UTC().Hour() == 10 {
			t.Errorf("slot %v should be excluded by the recurring lunch window", tm)
		}
	}
}

// TestSlotTimes_DefaultInterval verifies absent, zero and negative
// intervals all fall back to 15 minutes and never hang.
func TestSlotTimes_DefaultInterval(t *testing.T) {
	for _, interval := range []int{0, -5, -1} {
		e := timedEvent()
		e.IntervalMinutes = interval
		times := SlotTimes(e)
		if len(times) != 12 {
			t.Errorf("interval %d: expected 12 slots via default spacing, got %d", interval, len(times))
		}
	}
}

// TestSlotTimes_NoWindow verifies events without a time window have no
// slot concept.
func TestSlotTimes_NoWindow(t *testing.T) {
	e := Event{ID: "e2", CompetitionID: "c1", Name: "Academic Bowl"}
	if times := SlotTimes(e); times != nil {
		t.Fatalf("expected nil slots for untimed event, got %v", times)
	}
}

// TestGenerateSlots_Occupancy verifies availability flags come from
// the occupancy map and carry the owning school's name.
func TestGenerateSlots_Occupancy(t *testing.T) {
	e := timedEvent()
	taken := SlotID(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	occupied := map[string]string{taken: "Central High"}

	slots := GenerateSlots(e, "", occupied, time.UTC)
	if len(slots) != 12 {
		t.Fatalf("expected 12 slots, got %d", len(slots))
	}
	if slots[0].Available {
		t.Error("occupied slot should not be available")
	}
	if slots[0].BookedBy != "Central High" {
		t.Errorf("BookedBy = %q, want Central High", slots[0].BookedBy)
	}
	for _, s := range slots[1:] {
		if !s.Available {
			t.Errorf("slot %s should be available", s.ISO)
		}
	}
}

// TestGenerateSlots_OwnSelectionAlwaysAvailable verifies the selected
// slot stays available even if the occupancy map were to contain it.
func TestGenerateSlots_OwnSelectionAlwaysAvailable(t *testing.T) {
	e := timedEvent()
	selected := SlotID(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	occupied := map[string]string{selected: "Stale Owner"}

	slots := GenerateSlots(e, selected, occupied, time.UTC)
	for _, s := range slots {
		if s.ISO == selected {
			if !s.Available {
				t.Error("selected slot must remain available to its owner")
			}
			if s.BookedBy != "" {
				t.Errorf("selected slot BookedBy = %q, want empty", s.BookedBy)
			}
			return
		}
	}
	t.Fatal("selected slot not found in generated list")
}

// TestGenerateSlots_SynthesizedCurrent verifies a previously chosen
// slot outside the fresh window is prepended exactly once, available,
// labeled as current.
func TestGenerateSlots_SynthesizedCurrent(t *testing.T) {
	e := timedEvent()
	// Slot booked before the event window was moved.
	selected := SlotID(time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC))

	slots := GenerateSlots(e, selected, nil, time.UTC)
	if len(slots) != 13 {
		t.Fatalf("expected 12 window slots + 1 synthesized, got %d", len(slots))
	}

	count := 0
	for _, s := range slots {
		if s.ISO == selected {
			count++
			if !s.Current {
				t.Error("synthesized slot should be marked current")
			}
			if !s.Available {
				t.Error("synthesized slot should be available")
			}
			if !strings.Contains(s.Label, "(current)") {
				t.Errorf("label %q should contain '(current)'", s.Label)
			}
		}
	}
	if count != 1 {
		t.Fatalf("synthesized slot should appear exactly once, got %d", count)
	}
	if slots[0].ISO != selected {
		t.Error("synthesized slot should be first in the list")
	}
}

// TestGenerateSlots_SelectedInsideWindowNotSynthesized verifies no
// duplicate is synthesized when the selection is still in the window.
func TestGenerateSlots_SelectedInsideWindowNotSynthesized(t *testing.T) {
	e := timedEvent()
	selected := SlotID(time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC))

	slots := GenerateSlots(e, selected, nil, time.UTC)
	if len(slots) != 12 {
		t.Fatalf("expected 12 slots with no synthesis, got %d", len(slots))
	}
	count := 0
	for _, s := range slots {
		if s.ISO == selected {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("selected slot should appear exactly once, got %d", count)
	}
}

// TestGenerateSlots_TimezoneLabels verifies labels are rendered in the
// viewing school's timezone.
func TestGenerateSlots_TimezoneLabels(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	e := timedEvent() // 09:00 UTC = 03:00 in Chicago (CST, March 1)
	slots := GenerateSlots(e, "", nil, chicago)
	if slots[0].Label != "3:00 AM" {
		t.Errorf("label = %q, want 3:00 AM (Chicago wall clock)", slots[0].Label)
	}
}
