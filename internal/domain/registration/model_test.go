package registration

import (
	"testing"
	"time"
)

// TestRegistration_Validate tests Registration validation rules.
func TestRegistration_Validate(t *testing.T) {
	valid := Registration{
		ID:            "r1",
		CompetitionID: "c1",
		SchoolID:      "s1",
		TotalFeeCents: 8500,
		Status:        StatusSubmitted,
		CreatedAt:     time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid registration, got: %v", err)
	}

	tests := []struct {
		name   string
		modify func(r *Registration)
	}{
		{"empty competition id", func(r *Registration) { r.CompetitionID = "" }},
		{"empty school id", func(r *Registration) { r.SchoolID = "" }},
		{"invalid status", func(r *Registration) { r.Status = "maybe" }},
		{"negative fee", func(r *Registration) { r.TotalFeeCents = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.modify(&r)
			if err := r.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestEventRegistration_Validate tests EventRegistration validation.
func TestEventRegistration_Validate(t *testing.T) {
	valid := EventRegistration{ID: "er1", CompetitionID: "c1", EventID: "e1", SchoolID: "s1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid event registration, got: %v", err)
	}
	missing := valid
	missing.EventID = ""
	if err := missing.Validate(); err != ErrEmptyEventID {
		t.Fatalf("expected ErrEmptyEventID, got: %v", err)
	}
}

// TestScheduleSlot_Validate tests ScheduleSlot validation.
func TestScheduleSlot_Validate(t *testing.T) {
	valid := ScheduleSlot{
		ID:            "ss1",
		CompetitionID: "c1",
		EventID:       "e1",
		SchoolID:      "s1",
		ScheduledTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid schedule slot, got: %v", err)
	}
	missing := valid
	missing.ScheduledTime = time.Time{}
	if err := missing.Validate(); err != ErrMissingSlotTime {
		t.Fatalf("expected ErrMissingSlotTime, got: %v", err)
	}
}
