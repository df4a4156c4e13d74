package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"cadethq/internal/domain/competition"
	"cadethq/internal/domain/registration"
	"cadethq/internal/domain/school"
)

// mockCompetitionStore implements CompetitionStore for testing.
type mockCompetitionStore struct {
	comp   competition.Competition
	events []competition.Event
}

func (m *mockCompetitionStore) GetByID(_ context.Context, id string) (competition.Competition, error) {
	if id != m.comp.ID {
		return competition.Competition{}, errors.New("not found")
	}
	return m.comp, nil
}

func (m *mockCompetitionStore) ListUpcoming(_ context.Context, _ time.Time) ([]competition.Competition, error) {
	return []competition.Competition{m.comp}, nil
}

func (m *mockCompetitionStore) ListEvents(_ context.Context, _ string) ([]competition.Event, error) {
	return m.events, nil
}

// mockRegistrationStore implements RegistrationStore for testing.
type mockRegistrationStore struct {
	reg       registration.Registration
	hasReg    bool
	entries   []registration.EventRegistration
	slots     []registration.ScheduleSlot
	occupancy []registration.OccupancyRow
}

func (m *mockRegistrationStore) GetBySchool(_ context.Context, _, schoolID string) (registration.Registration, error) {
	if !m.hasReg || m.reg.SchoolID != schoolID {
		return registration.Registration{}, errors.New("not found")
	}
	return m.reg, nil
}

func (m *mockRegistrationStore) ListEventRegistrations(_ context.Context, _, _ string) ([]registration.EventRegistration, error) {
	return m.entries, nil
}

func (m *mockRegistrationStore) ListSlotsBySchool(_ context.Context, _, _ string) ([]registration.ScheduleSlot, error) {
	return m.slots, nil
}

func (m *mockRegistrationStore) ListOccupancy(_ context.Context, _ string) ([]registration.OccupancyRow, error) {
	return m.occupancy, nil
}

// mockSchoolStore implements SchoolStore for testing.
type mockSchoolStore struct {
	school school.School
}

func (m *mockSchoolStore) GetByID(_ context.Context, id string) (school.School, error) {
	if id != m.school.ID {
		return school.School{}, errors.New("not found")
	}
	return m.school, nil
}

func overviewFixture() (*mockCompetitionStore, *mockRegistrationStore, *mockSchoolStore) {
	start := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)
	comps := &mockCompetitionStore{
		comp: competition.Competition{ID: "comp-1", Name: "Spring Invitational", FeeCents: 5000, StartDate: start},
		events: []competition.Event{
			{
				ID:              "ev-drill",
				CompetitionID:   "comp-1",
				Name:            "Armed Drill",
				FeeCents:        1000,
				StartTime:       start,
				EndTime:         start.Add(2 * time.Hour),
				IntervalMinutes: 30,
			},
			{ID: "ev-academic", CompetitionID: "comp-1", Name: "Academic Bowl", FeeCents: 2500},
		},
	}
	schools := &mockSchoolStore{
		school: school.School{ID: "school-1", Name: "Central High", Timezone: "UTC"},
	}
	return comps, &mockRegistrationStore{}, schools
}

// TestQueryGetPortalOverview_FreshForm verifies the create-mode view:
// all slots available, nothing prefilled.
func TestQueryGetPortalOverview_FreshForm(t *testing.T) {
	comps, regs, schools := overviewFixture()

	result, err := QueryGetPortalOverview(context.Background(), GetPortalOverviewQuery{
		CompetitionID: "comp-1",
		SchoolID:      "school-1",
	}, GetPortalOverviewDeps{CompetitionStore: comps, RegistrationStore: regs, SchoolStore: schools})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Registered {
		t.Error("fresh form should not be registered")
	}
	if len(result.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(result.Events))
	}

	drill := result.Events[0]
	if !drill.Timed {
		t.Fatal("drill event should be timed")
	}
	// 09:00-11:00 at 30 min spacing = 4 slots.
	if len(drill.Slots) != 4 {
		t.Fatalf("drill slots = %d, want 4", len(drill.Slots))
	}
	for _, s := range drill.Slots {
		if !s.Available {
			t.Errorf("slot %s should be available on a fresh form", s.ISO)
		}
	}

	academic := result.Events[1]
	if academic.Timed || len(academic.Slots) != 0 {
		t.Error("untimed event must not carry slots")
	}
}

// TestQueryGetPortalOverview_OccupancyAndPrefill verifies another
// school's booking shows as taken with its name, while the acting
// school's own booking is prefilled and still available.
func TestQueryGetPortalOverview_OccupancyAndPrefill(t *testing.T) {
	comps, regs, schools := overviewFixture()

	own := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	theirs := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)

	regs.hasReg = true
	regs.reg = registration.Registration{ID: "reg-1", CompetitionID: "comp-1", SchoolID: "school-1", TotalFeeCents: 6000, Status: registration.StatusSubmitted}
	regs.entries = []registration.EventRegistration{
		{ID: "er-1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: "school-1"},
	}
	regs.slots = []registration.ScheduleSlot{
		{ID: "ss-1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: "school-1", ScheduledTime: own},
	}
	regs.occupancy = []registration.OccupancyRow{
		{EventID: "ev-drill", SchoolID: "school-1", SchoolName: "Central High", ScheduledTime: own},
		{EventID: "ev-drill", SchoolID: "school-2", SchoolName: "North High", ScheduledTime: theirs},
	}

	result, err := QueryGetPortalOverview(context.Background(), GetPortalOverviewQuery{
		CompetitionID: "comp-1",
		SchoolID:      "school-1",
	}, GetPortalOverviewDeps{CompetitionStore: comps, RegistrationStore: regs, SchoolStore: schools})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Registered {
		t.Fatal("expected registered")
	}
	if result.TotalFeeCents != 6000 {
		t.Errorf("fee snapshot = %d, want 6000", result.TotalFeeCents)
	}

	drill := result.Events[0]
	if !drill.Registered {
		t.Error("drill should be flagged registered")
	}
	if drill.SelectedSlot != "2026-03-21T09:30:00Z" {
		t.Errorf("selected slot = %q, want 2026-03-21T09:30:00Z", drill.SelectedSlot)
	}

	bySlot := make(map[string]competition.TimeSlot)
	for _, s := range drill.Slots {
		bySlot[s.ISO] = s
	}
	if own := bySlot["2026-03-21T09:30:00Z"]; !own.Available {
		t.Error("school's own slot must remain available to it")
	}
	taken := bySlot["2026-03-21T10:00:00Z"]
	if taken.Available {
		t.Error("another school's slot must show as taken")
	}
	if taken.BookedBy != "North High" {
		t.Errorf("BookedBy = %q, want North High", taken.BookedBy)
	}
}

// TestQueryGetPortalOverview_SynthesizedCurrentSlot verifies a booking
// outside the regenerated window is prepended as a current slot rather
// than dropped.
func TestQueryGetPortalOverview_SynthesizedCurrentSlot(t *testing.T) {
	comps, regs, schools := overviewFixture()

	// Booked at 08:00, before the event's 09:00 window start.
	outside := time.Date(2026, 3, 21, 8, 0, 0, 0, time.UTC)
	regs.hasReg = true
	regs.reg = registration.Registration{ID: "reg-1", CompetitionID: "comp-1", SchoolID: "school-1", Status: registration.StatusSubmitted}
	regs.entries = []registration.EventRegistration{
		{ID: "er-1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: "school-1"},
	}
	regs.slots = []registration.ScheduleSlot{
		{ID: "ss-1", CompetitionID: "comp-1", EventID: "ev-drill", SchoolID: "school-1", ScheduledTime: outside},
	}

	result, err := QueryGetPortalOverview(context.Background(), GetPortalOverviewQuery{
		CompetitionID: "comp-1",
		SchoolID:      "school-1",
	}, GetPortalOverviewDeps{CompetitionStore: comps, RegistrationStore: regs, SchoolStore: schools})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drill := result.Events[0]
	if len(drill.Slots) != 5 {
		t.Fatalf("slots = %d, want 4 generated + 1 synthesized", len(drill.Slots))
	}
	first := drill.Slots[0]
	if !first.Current || first.ISO != "2026-03-21T08:00:00Z" || !first.Available {
		t.Errorf("synthesized slot = %+v, want current available 08:00", first)
	}
}

// TestQueryGetCompetitionList flags competitions the school already
// entered.
func TestQueryGetCompetitionList(t *testing.T) {
	comps, regs, schools := overviewFixture()
	regs.hasReg = true
	regs.reg = registration.Registration{ID: "reg-1", CompetitionID: "comp-1", SchoolID: "school-1", Status: registration.StatusSubmitted}

	items, err := QueryGetCompetitionList(context.Background(), GetCompetitionListQuery{
		SchoolID: "school-1",
		From:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, GetPortalOverviewDeps{CompetitionStore: comps, RegistrationStore: regs, SchoolStore: schools})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || !items[0].Registered {
		t.Errorf("expected one registered competition, got %+v", items)
	}
}
