package registration

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/registration"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSchools(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, s := range [][2]string{
		{"school-1", "Central High"},
		{"school-2", "North High"},
	} {
		_, err := db.Exec(
			"INSERT INTO school (id, name, district, timezone) VALUES (?, ?, '', 'UTC')",
			s[0], s[1])
		if err != nil {
			t.Fatalf("seed school: %v", err)
		}
	}
}

func testBundle(schoolID, regID string, slotTime time.Time) (domain.Registration, []domain.EventRegistration, []domain.ScheduleSlot) {
	reg := domain.Registration{
		ID:            regID,
		CompetitionID: "comp-1",
		SchoolID:      schoolID,
		TotalFeeCents: 6000,
		Status:        domain.StatusSubmitted,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	entries := []domain.EventRegistration{
		{ID: regID + "-e1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: schoolID},
	}
	slots := []domain.ScheduleSlot{
		{ID: regID + "-s1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: schoolID, ScheduledTime: slotTime},
	}
	return reg, entries, slots
}

// TestReplaceForSchool_RoundTrip writes a registration and reads it
// back through every query path.
func TestReplaceForSchool_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	slotTime := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	reg, entries, slots := testBundle("school-1", "reg-1", slotTime)

	if err := store.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		t.Fatalf("ReplaceForSchool: %v", err)
	}

	got, err := store.GetBySchool(ctx, "comp-1", "school-1")
	if err != nil {
		t.Fatalf("GetBySchool: %v", err)
	}
	if got.ID != "reg-1" || got.TotalFeeCents != 6000 || got.Status != domain.StatusSubmitted {
		t.Errorf("registration = %+v", got)
	}

	gotEntries, err := store.ListEventRegistrations(ctx, "comp-1", "school-1")
	if err != nil {
		t.Fatalf("ListEventRegistrations: %v", err)
	}
	if len(gotEntries) != 1 || gotEntries[0].EventID != "ev-drill" {
		t.Errorf("entries = %+v", gotEntries)
	}

	gotSlots, err := store.ListSlotsBySchool(ctx, "comp-1", "school-1")
	if err != nil {
		t.Fatalf("ListSlotsBySchool: %v", err)
	}
	if len(gotSlots) != 1 || !gotSlots[0].ScheduledTime.Equal(slotTime) {
		t.Errorf("slots = %+v", gotSlots)
	}
}

// TestReplaceForSchool_Resubmit verifies a second commit replaces the
// first rather than stacking rows, and frees the old slot.
func TestReplaceForSchool_Resubmit(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	first := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	second := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)

	reg, entries, slots := testBundle("school-1", "reg-1", first)
	if err := store.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	reg2, entries2, slots2 := testBundle("school-1", "reg-2", second)
	if err := store.ReplaceForSchool(ctx, reg2, entries2, slots2); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	gotSlots, err := store.ListSlotsBySchool(ctx, "comp-1", "school-1")
	if err != nil {
		t.Fatalf("ListSlotsBySchool: %v", err)
	}
	if len(gotSlots) != 1 || !gotSlots[0].ScheduledTime.Equal(second) {
		t.Errorf("slots after resubmit = %+v, want single slot at 10:00", gotSlots)
	}

	// The freed 09:30 slot must be bookable by another school.
	other, otherEntries, otherSlots := testBundle("school-2", "reg-3", first)
	if err := store.ReplaceForSchool(ctx, other, otherEntries, otherSlots); err != nil {
		t.Errorf("freed slot should be bookable: %v", err)
	}
}

// TestReplaceForSchool_SlotTaken verifies the unique index surfaces as
// ErrSlotTaken and the losing school's transaction rolls back fully.
func TestReplaceForSchool_SlotTaken(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	slotTime := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)

	reg, entries, slots := testBundle("school-1", "reg-1", slotTime)
	if err := store.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		t.Fatalf("winner commit: %v", err)
	}

	loser, loserEntries, loserSlots := testBundle("school-2", "reg-2", slotTime)
	err := store.ReplaceForSchool(ctx, loser, loserEntries, loserSlots)
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("err = %v, want ErrSlotTaken", err)
	}

	// Loser's partial writes must be rolled back.
	if _, err := store.GetBySchool(ctx, "comp-1", "school-2"); err == nil {
		t.Error("losing school must have no registration after rollback")
	}
	gotEntries, _ := store.ListEventRegistrations(ctx, "comp-1", "school-2")
	if len(gotEntries) != 0 {
		t.Errorf("losing school entries = %+v, want none", gotEntries)
	}

	// Winner untouched.
	if _, err := store.GetBySchool(ctx, "comp-1", "school-1"); err != nil {
		t.Errorf("winner registration lost: %v", err)
	}
}

// TestReplaceForSchool_SlotTaken_PreservesPrior verifies a failed
// resubmit keeps the school's previous registration intact.
func TestReplaceForSchool_SlotTaken_PreservesPrior(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	mine := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	theirs := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)

	reg, entries, slots := testBundle("school-1", "reg-1", mine)
	if err := store.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		t.Fatalf("initial commit: %v", err)
	}
	other, otherEntries, otherSlots := testBundle("school-2", "reg-2", theirs)
	if err := store.ReplaceForSchool(ctx, other, otherEntries, otherSlots); err != nil {
		t.Fatalf("other school commit: %v", err)
	}

	// Resubmit trying to grab the other school's slot.
	resubmit, resubmitEntries, resubmitSlots := testBundle("school-1", "reg-3", theirs)
	err := store.ReplaceForSchool(ctx, resubmit, resubmitEntries, resubmitSlots)
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("err = %v, want ErrSlotTaken", err)
	}

	// The prior registration and slot must survive the rollback.
	got, err := store.GetBySchool(ctx, "comp-1", "school-1")
	if err != nil {
		t.Fatalf("prior registration lost: %v", err)
	}
	if got.ID != "reg-1" {
		t.Errorf("registration ID = %q, want reg-1", got.ID)
	}
	gotSlots, _ := store.ListSlotsBySchool(ctx, "comp-1", "school-1")
	if len(gotSlots) != 1 || !gotSlots[0].ScheduledTime.Equal(mine) {
		t.Errorf("prior slot lost: %+v", gotSlots)
	}
}

// TestListOccupancy joins slots with school names across all schools.
func TestListOccupancy(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)

	reg1, e1, s1 := testBundle("school-1", "reg-1", t1)
	reg2, e2, s2 := testBundle("school-2", "reg-2", t2)
	if err := store.ReplaceForSchool(ctx, reg1, e1, s1); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceForSchool(ctx, reg2, e2, s2); err != nil {
		t.Fatal(err)
	}

	rows, err := store.ListOccupancy(ctx, "comp-1")
	if err != nil {
		t.Fatalf("ListOccupancy: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].SchoolName != "Central High" || rows[1].SchoolName != "North High" {
		t.Errorf("school names = %q, %q", rows[0].SchoolName, rows[1].SchoolName)
	}

	// Scoped read returns the same rows for the booked event, nothing
	// for an unknown event.
	scoped, err := store.ListSlotsByEvents(ctx, "comp-1", []string{"ev-drill"})
	if err != nil {
		t.Fatalf("ListSlotsByEvents: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("scoped rows = %d, want 2", len(scoped))
	}
	none, err := store.ListSlotsByEvents(ctx, "comp-1", []string{"ev-color"})
	if err != nil || len(none) != 0 {
		t.Errorf("unknown event rows = %+v, err = %v", none, err)
	}
}

// TestDeleteForSchool removes all three row kinds and frees the slot.
func TestDeleteForSchool(t *testing.T) {
	db := openTestDB(t)
	seedSchools(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	slotTime := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	reg, entries, slots := testBundle("school-1", "reg-1", slotTime)
	if err := store.ReplaceForSchool(ctx, reg, entries, slots); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteForSchool(ctx, "comp-1", "school-1"); err != nil {
		t.Fatalf("DeleteForSchool: %v", err)
	}

	if _, err := store.GetBySchool(ctx, "comp-1", "school-1"); err == nil {
		t.Error("registration should be gone")
	}
	gotSlots, _ := store.ListSlotsBySchool(ctx, "comp-1", "school-1")
	if len(gotSlots) != 0 {
		t.Errorf("slots = %+v, want none", gotSlots)
	}

	// Slot is free again.
	other, otherEntries, otherSlots := testBundle("school-2", "reg-2", slotTime)
	if err := store.ReplaceForSchool(ctx, other, otherEntries, otherSlots); err != nil {
		t.Errorf("slot should be free after cancel: %v", err)
	}
}
