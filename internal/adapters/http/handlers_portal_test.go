package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cadethq/internal/adapters/http/middleware"
	"cadethq/internal/adapters/storage"
	auditStore "cadethq/internal/adapters/storage/audit"
	competitionStore "cadethq/internal/adapters/storage/competition"
	registrationStore "cadethq/internal/adapters/storage/registration"
	schoolStore "cadethq/internal/adapters/storage/school"
	"cadethq/internal/application/portal"
	"cadethq/internal/domain/account"
	"cadethq/internal/domain/competition"
	"cadethq/internal/domain/school"
)

var centralStaff = middleware.Session{
	AccountID: "acct-1",
	SchoolID:  "school-1",
	Email:     "staff@central.test",
	Role:      account.RoleInstructor,
	CreatedAt: time.Now(),
}

var northStaff = middleware.Session{
	AccountID: "acct-2",
	SchoolID:  "school-2",
	Email:     "staff@north.test",
	Role:      account.RoleInstructor,
	CreatedAt: time.Now(),
}

// setupPortalTest wires the handler globals to real SQLite stores over
// an in-memory database seeded with two schools and one competition.
func setupPortalTest(t *testing.T) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	schools := schoolStore.NewSQLiteStore(db)
	for _, s := range []school.School{
		{ID: "school-1", Name: "Central High", Timezone: "UTC"},
		{ID: "school-2", Name: "North High", Timezone: "UTC"},
	} {
		if err := schools.Save(ctx, s); err != nil {
			t.Fatalf("seed school: %v", err)
		}
	}

	comps := competitionStore.NewSQLiteStore(db)
	day := time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC)
	comp := competition.Competition{
		ID:        "comp-1",
		Name:      "Area 4 Spring Invitational",
		Location:  "Central High",
		FeeCents:  5000,
		StartDate: day,
	}
	if err := comps.Save(ctx, comp); err != nil {
		t.Fatalf("seed competition: %v", err)
	}
	events := []competition.Event{
		{
			ID: "ev-drill", CompetitionID: "comp-1", Name: "Armed Drill", FeeCents: 1000,
			StartTime:  day.Add(9 * time.Hour),
			EndTime:    day.Add(15 * time.Hour),
			LunchStart: day.Add(12 * time.Hour),
			LunchEnd:   day.Add(13 * time.Hour),
			IntervalMinutes: 15,
		},
		{ID: "ev-bowl", CompetitionID: "comp-1", Name: "Academic Bowl", FeeCents: 2500},
	}
	for _, ev := range events {
		if err := comps.SaveEvent(ctx, ev); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	stores = &Stores{
		SchoolStore:       schools,
		CompetitionStore:  comps,
		RegistrationStore: registrationStore.NewSQLiteStore(db),
		AuditStore:        auditStore.NewSQLiteStore(db),
	}
	scheduleHub = portal.NewHub()
	occupancyTrackers = newTrackerCache()
}

// portalRequest runs one portal request as the given session.
func portalRequest(t *testing.T, sess middleware.Session, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	switch path {
	case "/api/portal/competitions":
		handlePortalCompetitions(rec, req)
	default:
		handlePortalCompetition(rec, req)
	}
	return rec
}

const commitBody = `{"selections":[{"event_id":"ev-drill","slot":"2026-03-21T09:30:00Z"},{"event_id":"ev-bowl","slot":""}]}`

func TestPortalCommit_HappyPath(t *testing.T) {
	setupPortalTest(t)

	rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RegistrationID string `json:"registration_id"`
		TotalFeeCents  int64  `json:"total_fee_cents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RegistrationID == "" {
		t.Error("registration_id is empty")
	}
	// 5000 base + 1000 drill + 2500 bowl
	if resp.TotalFeeCents != 8500 {
		t.Errorf("total_fee_cents = %d, want 8500", resp.TotalFeeCents)
	}

	// Overview reflects the booking.
	rec = portalRequest(t, centralStaff, "GET", "/api/portal/competitions/comp-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("overview status = %d", rec.Code)
	}
	var overview struct {
		Registered    bool
		TotalFeeCents int64
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if !overview.Registered {
		t.Error("overview should show the school as registered")
	}
	if overview.TotalFeeCents != 8500 {
		t.Errorf("overview fee = %d, want 8500", overview.TotalFeeCents)
	}
}

func TestPortalCommit_SlotConflict(t *testing.T) {
	setupPortalTest(t)

	rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("first commit status = %d", rec.Code)
	}

	// Another school wants the same 09:30 slot.
	rec = portalRequest(t, northStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
	var conflict struct {
		EventIDs []string `json:"event_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("decode conflict: %v", err)
	}
	if len(conflict.EventIDs) != 1 || conflict.EventIDs[0] != "ev-drill" {
		t.Errorf("event_ids = %v, want [ev-drill]", conflict.EventIDs)
	}

	// A different slot goes through.
	other := `{"selections":[{"event_id":"ev-drill","slot":"2026-03-21T10:00:00Z"}]}`
	rec = portalRequest(t, northStaff, "POST", "/api/portal/competitions/comp-1/register", other)
	if rec.Code != http.StatusOK {
		t.Errorf("retry with free slot status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPortalCommit_Validation(t *testing.T) {
	setupPortalTest(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown event", `{"selections":[{"event_id":"ev-nope","slot":""}]}`},
		{"no selections", `{"selections":[]}`},
		{"missing slot on timed event", `{"selections":[{"event_id":"ev-drill","slot":""}]}`},
		{"slot during lunch", `{"selections":[{"event_id":"ev-drill","slot":"2026-03-21T12:15:00Z"}]}`},
		{"slot on untimed event", `{"selections":[{"event_id":"ev-bowl","slot":"2026-03-21T09:30:00Z"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPortalCancel(t *testing.T) {
	setupPortalTest(t)

	rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d", rec.Code)
	}

	rec = portalRequest(t, centralStaff, "DELETE", "/api/portal/competitions/comp-1/register", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The freed slot is bookable by the other school.
	rec = portalRequest(t, northStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Errorf("rebook freed slot status = %d", rec.Code)
	}

	// Cancelling again is a 404: nothing to withdraw.
	rec = portalRequest(t, centralStaff, "DELETE", "/api/portal/competitions/comp-1/register", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("double cancel status = %d, want 404", rec.Code)
	}
}

func TestPortalList_FlagsRegistration(t *testing.T) {
	setupPortalTest(t)
	timeNow = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = time.Now }()

	rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d", rec.Code)
	}

	rec = portalRequest(t, centralStaff, "GET", "/api/portal/competitions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var items []struct {
		Registered bool
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || !items[0].Registered {
		t.Errorf("items = %+v, want one registered competition", items)
	}

	rec = portalRequest(t, northStaff, "GET", "/api/portal/competitions", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0].Registered {
		t.Errorf("items = %+v, want one unregistered competition", items)
	}
}

func TestPortalWatch_SignalledOnCommit(t *testing.T) {
	setupPortalTest(t)

	// Start the long-poll, then commit from another school. The commit's
	// publish must release the watcher.
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- portalRequest(t, centralStaff, "GET", "/api/portal/competitions/comp-1/watch", "")
	}()

	// Give the watcher a moment to subscribe.
	time.Sleep(50 * time.Millisecond)
	rec := portalRequest(t, northStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d", rec.Code)
	}

	select {
	case watch := <-done:
		if watch.Code != http.StatusOK {
			t.Fatalf("watch status = %d, want 200", watch.Code)
		}
		var resp struct {
			Changed bool `json:"changed"`
		}
		if err := json.Unmarshal(watch.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode watch: %v", err)
		}
		if !resp.Changed {
			t.Error("changed = false, want true")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after a schedule change")
	}
}

func TestPortalOccupancy_NamesHolderAndExcludesSelf(t *testing.T) {
	setupPortalTest(t)

	rec := portalRequest(t, centralStaff, "POST", "/api/portal/competitions/comp-1/register", commitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d", rec.Code)
	}

	// The other school sees Central High holding 09:30 on the drill.
	rec = portalRequest(t, northStaff, "GET", "/api/portal/competitions/comp-1/occupancy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("occupancy status = %d", rec.Code)
	}
	var board map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode occupancy: %v", err)
	}
	if got := board["ev-drill"]["2026-03-21T09:30:00Z"]; got != "Central High" {
		t.Errorf("holder = %q, want Central High (board = %v)", got, board)
	}

	// The booking school's own board never shows its own slots.
	rec = portalRequest(t, centralStaff, "GET", "/api/portal/competitions/comp-1/occupancy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("own occupancy status = %d", rec.Code)
	}
	board = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode own occupancy: %v", err)
	}
	if len(board["ev-drill"]) != 0 {
		t.Errorf("own slots must not appear occupied, got %v", board["ev-drill"])
	}
}
