package announcement

import (
	"testing"
	"time"
)

// TestAnnouncement_Validate tests validation rules.
func TestAnnouncement_Validate(t *testing.T) {
	valid := Announcement{
		ID:        "a1",
		SchoolID:  "s1",
		Title:     "Drill practice moved to the gym",
		Content:   "**Rain plan** is in effect this week.",
		Status:    StatusDraft,
		CreatedBy: "acct1",
		CreatedAt: time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid announcement, got: %v", err)
	}

	tests := []struct {
		name   string
		modify func(a *Announcement)
	}{
		{"empty title", func(a *Announcement) { a.Title = "" }},
		{"empty content", func(a *Announcement) { a.Content = "" }},
		{"empty school", func(a *Announcement) { a.SchoolID = "" }},
		{"invalid status", func(a *Announcement) { a.Status = "queued" }},
		{"title too long", func(a *Announcement) { a.Title = string(make([]byte, MaxTitleLength+1)) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := valid
			tc.modify(&a)
			if err := a.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestAnnouncement_Publish tests the draft -> published transition.
func TestAnnouncement_Publish(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	a := Announcement{Status: StatusDraft}
	if err := a.Publish(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsPublished() || !a.PublishedAt.Equal(now) {
		t.Errorf("publish did not set status/timestamp: %+v", a)
	}
	if err := a.Publish(now); err != ErrAlreadyPublished {
		t.Fatalf("expected ErrAlreadyPublished, got: %v", err)
	}
}
