package portal

import (
	"testing"
)

// prefilled returns a state loaded with an existing registration:
// events e1 (timed, slot 09:00) and e2 (untimed).
func prefilled() State {
	s := Apply(NewState(), Opened{})
	return Apply(s, PrefillLoaded{
		Events: []string{"e1", "e2"},
		Slots:  map[string]string{"e1": "2026-03-01T09:00:00Z"},
	})
}

// TestApply_PrefillCapturesInitialOnce verifies the initial snapshot is
// captured lazily exactly once, on the first non-empty load.
func TestApply_PrefillCapturesInitialOnce(t *testing.T) {
	s := Apply(NewState(), Opened{})
	if s.Phase != PhaseLoading {
		t.Fatalf("phase = %s, want loading", s.Phase)
	}

	// Empty load (create mode) captures nothing.
	s = Apply(s, PrefillLoaded{})
	if s.Initial != nil {
		t.Fatal("empty prefill should not capture a snapshot")
	}
	if s.HasUnsavedChanges() {
		t.Fatal("fresh empty form should not be dirty")
	}

	s = Apply(s, PrefillLoaded{Events: []string{"e1"}, Slots: map[string]string{"e1": "2026-03-01T09:00:00Z"}})
	if s.Initial == nil {
		t.Fatal("first non-empty prefill should capture the snapshot")
	}
	first := s.Initial

	s = Apply(s, PrefillLoaded{Events: []string{"e9"}})
	if s.Initial != first {
		t.Fatal("snapshot must be captured exactly once")
	}
}

// TestApply_PrefillMergesInProgressEdits verifies a user who edited
// before the fetch finished does not lose in-progress choices.
func TestApply_PrefillMergesInProgressEdits(t *testing.T) {
	s := Apply(NewState(), Opened{})
	s = Apply(s, ToggleEvent{EventID: "e1", On: true})
	s = Apply(s, ChooseSlot{EventID: "e1", Slot: "2026-03-01T10:00:00Z"})

	// Server says e1 was booked at 09:00, but the in-flight choice wins.
	s = Apply(s, PrefillLoaded{
		Events: []string{"e1", "e2"},
		Slots:  map[string]string{"e1": "2026-03-01T09:00:00Z"},
	})
	if s.SelectedSlots["e1"] != "2026-03-01T10:00:00Z" {
		t.Errorf("in-progress slot choice was lost: %v", s.SelectedSlots)
	}
	if !s.SelectedEvents["e2"] {
		t.Error("loaded event e2 should be merged in")
	}
}

// TestHasUnsavedChanges_Lifecycle covers the dirty-flag lifecycle:
// clean after prefill, dirty after any edit, clean again if edits
// reconstruct the original selection.
func TestHasUnsavedChanges_Lifecycle(t *testing.T) {
	s := prefilled()
	if s.HasUnsavedChanges() {
		t.Fatal("freshly prefilled form should not be dirty")
	}

	s2 := Apply(s, ToggleEvent{EventID: "e3", On: true})
	if !s2.HasUnsavedChanges() {
		t.Fatal("toggle should mark the form dirty")
	}

	s3 := Apply(s, ChooseSlot{EventID: "e1", Slot: "2026-03-01T09:30:00Z"})
	if !s3.HasUnsavedChanges() {
		t.Fatal("slot change should mark the form dirty")
	}

	// Reconstruct the original selection.
	s4 := Apply(s3, ChooseSlot{EventID: "e1", Slot: "2026-03-01T09:00:00Z"})
	if s4.HasUnsavedChanges() {
		t.Fatal("edits reconstructing the original selection should read as unchanged")
	}
}

// TestApply_ToggleOffClearsSlotAndConflict verifies deselecting an
// event drops its slot choice and conflict flag.
func TestApply_ToggleOffClearsSlotAndConflict(t *testing.T) {
	s := prefilled()
	s = Apply(s, ConflictsFound{EventIDs: []string{"e1"}})
	if s.Phase != PhaseConflicted {
		t.Fatalf("phase = %s, want conflicted", s.Phase)
	}

	s = Apply(s, ToggleEvent{EventID: "e1", On: false})
	if _, ok := s.SelectedSlots["e1"]; ok {
		t.Error("deselected event must not carry a stale slot")
	}
	if s.Conflicts["e1"] {
		t.Error("deselecting must clear the conflict flag")
	}
	if s.Phase != PhaseEditing {
		t.Errorf("phase = %s, want editing once conflicts are cleared", s.Phase)
	}
}

// TestApply_ChooseSlotClearsConflict verifies re-selecting a flagged
// event's slot returns the session to editing.
func TestApply_ChooseSlotClearsConflict(t *testing.T) {
	s := prefilled()
	s = Apply(s, ConflictsFound{EventIDs: []string{"e1", "e2"}})

	s = Apply(s, ChooseSlot{EventID: "e1", Slot: "2026-03-01T11:00:00Z"})
	if s.Phase != PhaseConflicted {
		t.Fatal("one unresolved conflict should keep the session conflicted")
	}

	s = Apply(s, ChooseSlot{EventID: "e2", Slot: "2026-03-01T11:30:00Z"})
	if s.Phase != PhaseEditing {
		t.Fatal("clearing the last conflict should return to editing")
	}
}

// TestApply_CommitTransitions covers submit/failure/success phases.
func TestApply_CommitTransitions(t *testing.T) {
	s := prefilled()
	s = Apply(s, SubmitStarted{})
	if s.Phase != PhaseSubmitting {
		t.Fatalf("phase = %s, want submitting", s.Phase)
	}

	failed := Apply(s, CommitFailed{Reason: "registration could not be saved"})
	if failed.Phase != PhaseEditing {
		t.Errorf("failure should return to editing, got %s", failed.Phase)
	}
	if failed.LastError == "" {
		t.Error("failure reason should be surfaced")
	}

	done := Apply(s, CommitSucceeded{})
	if done.Phase != PhaseCommitted {
		t.Errorf("phase = %s, want committed", done.Phase)
	}
}

// TestApply_DoesNotMutateInput verifies reducer purity.
func TestApply_DoesNotMutateInput(t *testing.T) {
	s := prefilled()
	before := len(s.SelectedEvents)
	_ = Apply(s, ToggleEvent{EventID: "e7", On: true})
	if len(s.SelectedEvents) != before {
		t.Fatal("Apply mutated its input state")
	}
	_ = Apply(s, ToggleEvent{EventID: "e1", On: false})
	if !s.SelectedEvents["e1"] || s.SelectedSlots["e1"] == "" {
		t.Fatal("Apply mutated its input state on deselect")
	}
}

// TestTotalFeeCents checks the derived fee: base 5000 + events 1000 and
// 2500 = 8500 ($50 + $10 + $25 = $85).
func TestTotalFeeCents(t *testing.T) {
	s := prefilled() // e1, e2 selected
	fees := map[string]int64{"e1": 1000, "e2": 2500, "e3": 9900}
	if got := s.TotalFeeCents(5000, fees); got != 8500 {
		t.Fatalf("total fee = %d, want 8500", got)
	}

	s = Apply(s, ToggleEvent{EventID: "e2", On: false})
	if got := s.TotalFeeCents(5000, fees); got != 6000 {
		t.Fatalf("total fee after deselect = %d, want 6000", got)
	}
}
