package portal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cadethq/internal/domain/registration"
)

type fakeOccupancyStore struct {
	mu    sync.Mutex
	rows  []registration.OccupancyRow
	errs  []error // consumed one per call, nil once exhausted
	calls int
}

func (f *fakeOccupancyStore) ListOccupancy(_ context.Context, _ string) ([]registration.OccupancyRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.rows, nil
}

func occupancyRows() []registration.OccupancyRow {
	at := func(hhmm string) time.Time {
		t, _ := time.Parse(time.RFC3339, "2026-03-01T"+hhmm+":00Z")
		return t
	}
	return []registration.OccupancyRow{
		{EventID: "ev-drill", SchoolID: "school-north", SchoolName: "North High", ScheduledTime: at("09:00")},
		{EventID: "ev-drill", SchoolID: "school-acting", SchoolName: "Acting High", ScheduledTime: at("09:30")},
		{EventID: "ev-color", SchoolID: "school-north", SchoolName: "North High", ScheduledTime: at("10:00")},
	}
}

// TestTracker_ExcludesActingSchool verifies the acting school's own
// bookings never appear occupied.
func TestTracker_ExcludesActingSchool(t *testing.T) {
	store := &fakeOccupancyStore{rows: occupancyRows()}
	tr := NewTracker(store, "comp-1", "school-acting")

	if err := tr.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	drill := tr.Occupied("ev-drill")
	if owner := drill["2026-03-01T09:00:00Z"]; owner != "North High" {
		t.Errorf("09:00 owner = %q, want North High", owner)
	}
	if _, ok := drill["2026-03-01T09:30:00Z"]; ok {
		t.Error("acting school's own 09:30 booking must not appear occupied")
	}
	if owner := tr.Occupied("ev-color")["2026-03-01T10:00:00Z"]; owner != "North High" {
		t.Errorf("color guard 10:00 owner = %q, want North High", owner)
	}
}

// TestTracker_RefreshRetriesTransientErrors verifies a failed query is
// retried and the eventual success populates the snapshot.
func TestTracker_RefreshRetriesTransientErrors(t *testing.T) {
	store := &fakeOccupancyStore{
		rows: occupancyRows(),
		errs: []error{errors.New("busy"), errors.New("busy"), nil},
	}
	tr := NewTracker(store, "comp-1", "school-acting")

	if err := tr.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh after transient errors: %v", err)
	}
	if store.calls != 3 {
		t.Errorf("calls = %d, want 3", store.calls)
	}
	if len(tr.Occupied("ev-drill")) == 0 {
		t.Error("snapshot should be populated after the successful attempt")
	}
}

// TestTracker_KeepsStaleSnapshotOnFailure verifies a refresh that keeps
// failing leaves the previous snapshot in place.
func TestTracker_KeepsStaleSnapshotOnFailure(t *testing.T) {
	store := &fakeOccupancyStore{rows: occupancyRows()}
	tr := NewTracker(store, "comp-1", "school-acting")
	if err := tr.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh: %v", err)
	}

	store.mu.Lock()
	store.errs = []error{errors.New("down"), errors.New("down"), errors.New("down")}
	store.mu.Unlock()

	if err := tr.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should report the error after exhausting attempts")
	}
	if len(tr.Occupied("ev-drill")) == 0 {
		t.Error("failed refresh must keep the stale snapshot")
	}

	// Invalidate swallows the error but also keeps the snapshot.
	store.mu.Lock()
	store.errs = []error{errors.New("down"), errors.New("down"), errors.New("down")}
	store.mu.Unlock()
	tr.Invalidate(context.Background())
	if len(tr.Occupied("ev-drill")) == 0 {
		t.Error("Invalidate must keep the stale snapshot on failure")
	}
}

// TestTracker_WatchRefreshesOnSignal verifies hub signals drive
// re-queries through the unified entry point.
func TestTracker_WatchRefreshesOnSignal(t *testing.T) {
	store := &fakeOccupancyStore{}
	tr := NewTracker(store, "comp-1", "school-acting")

	hub := NewHub()
	ch, cancel := hub.Subscribe("comp-1")
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Watch(ctx, ch)
		close(done)
	}()

	store.mu.Lock()
	store.rows = occupancyRows()
	store.mu.Unlock()
	hub.Publish("comp-1")

	deadline := time.After(2 * time.Second)
	for {
		if len(tr.Occupied("ev-drill")) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("snapshot never refreshed after publish")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}
}

// TestHub_PublishCoalesces verifies a subscriber with a pending signal
// is not blocked on, and that cancel removes the subscription.
func TestHub_PublishCoalesces(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("comp-1")

	hub.Publish("comp-1")
	hub.Publish("comp-1") // coalesces into the pending signal
	hub.Publish("comp-1")

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-ch:
		t.Fatal("repeated publishes must coalesce into one pending signal")
	default:
	}

	cancel()
	hub.Publish("comp-1")
	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not receive signals")
	default:
	}
}
