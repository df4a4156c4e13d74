package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"cadethq/internal/adapters/http/middleware"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/application/portal"
	"cadethq/internal/application/projections"
)

// watchTimeout bounds a portal long-poll. Clients reconnect on 204.
const watchTimeout = 25 * time.Second

// occupancyTrackers holds one live occupancy tracker per competition
// and acting school (reset by NewMux). Each tracker subscribes to the
// change hub once and re-queries on every schedule change, so its
// snapshot stays warm between polls.
var occupancyTrackers = newTrackerCache()

type trackerCache struct {
	mu       sync.Mutex
	trackers map[string]*portal.Tracker
}

func newTrackerCache() *trackerCache {
	return &trackerCache{trackers: make(map[string]*portal.Tracker)}
}

func (c *trackerCache) get(competitionID, schoolID string) *portal.Tracker {
	key := competitionID + "/" + schoolID
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.trackers[key]; ok {
		return t
	}
	t := portal.NewTracker(stores.RegistrationStore, competitionID, schoolID)
	// Trackers live as long as the process; the subscription is never
	// cancelled.
	ch, _ := scheduleHub.Subscribe(competitionID)
	go t.Watch(context.Background(), ch)
	c.trackers[key] = t
	return t
}

// portalDeps assembles the shared projection dependencies.
func portalDeps() projections.GetPortalOverviewDeps {
	return projections.GetPortalOverviewDeps{
		CompetitionStore:  stores.CompetitionStore,
		RegistrationStore: stores.RegistrationStore,
		SchoolStore:       stores.SchoolStore,
	}
}

// handlePortalCompetitions lists upcoming competitions with the acting
// school's registration flags (GET /api/portal/competitions).
func handlePortalCompetitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	items, err := projections.QueryGetCompetitionList(r.Context(), projections.GetCompetitionListQuery{
		SchoolID: sess.SchoolID,
		From:     timeNow(),
	}, portalDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handlePortalCompetition dispatches per-competition portal routes.
// Routes:
//
//	GET    /api/portal/competitions/:id            registration form data
//	POST   /api/portal/competitions/:id/register   commit a selection
//	DELETE /api/portal/competitions/:id/register   withdraw
//	GET    /api/portal/competitions/:id/occupancy  full slot board
//	GET    /api/portal/competitions/:id/watch      long-poll for changes
func handlePortalCompetition(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/portal/competitions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		errorJSON(w, http.StatusBadRequest, "competition ID required")
		return
	}
	competitionID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handlePortalOverview(w, r, competitionID, sess.SchoolID)
		return
	}

	switch parts[1] {
	case "register":
		switch r.Method {
		case http.MethodPost:
			handlePortalCommit(w, r, sess, competitionID)
		case http.MethodDelete:
			handlePortalCancel(w, r, sess, competitionID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "occupancy":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handlePortalOccupancy(w, r, sess, competitionID)
	case "watch":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handlePortalWatch(w, r, competitionID)
	default:
		errorJSON(w, http.StatusNotFound, "unknown portal route")
	}
}

// handlePortalOverview returns the registration form for one school and
// competition: events, slot lists with live availability, and the
// school's current selection.
func handlePortalOverview(w http.ResponseWriter, r *http.Request, competitionID, schoolID string) {
	result, err := projections.QueryGetPortalOverview(r.Context(), projections.GetPortalOverviewQuery{
		CompetitionID: competitionID,
		SchoolID:      schoolID,
	}, portalDeps())
	if err != nil {
		errorJSON(w, http.StatusNotFound, "competition not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePortalCommit atomically replaces the school's registration.
// Validation failures are 400; slots lost to another school are 409
// with the conflicted event IDs so the form can flag them all at once.
func handlePortalCommit(w http.ResponseWriter, r *http.Request, sess middleware.Session, competitionID string) {
	var body struct {
		Selections []struct {
			EventID string `json:"event_id"`
			Slot    string `json:"slot"`
		} `json:"selections"`
	}
	if err := strictDecode(r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := orchestrators.CommitRegistrationInput{
		CompetitionID: competitionID,
		SchoolID:      sess.SchoolID,
		ActorID:       sess.AccountID,
		ActorEmail:    sess.Email,
		ActorRole:     sess.Role,
	}
	for _, sel := range body.Selections {
		input.Selections = append(input.Selections, orchestrators.EventSelection{
			EventID: sel.EventID,
			Slot:    sel.Slot,
		})
	}

	conf, err := orchestrators.ExecuteCommitRegistration(r.Context(), input, orchestrators.CommitRegistrationDeps{
		CompetitionStore:  stores.CompetitionStore,
		RegistrationStore: stores.RegistrationStore,
		AuditStore:        stores.AuditStore,
		Publisher:         scheduleHub,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		var verr *orchestrators.ValidationError
		if errors.As(err, &verr) {
			errorJSON(w, http.StatusBadRequest, verr.Msg)
			return
		}
		var cerr *orchestrators.ConflictError
		if errors.As(err, &cerr) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     cerr.Error(),
				"event_ids": cerr.EventIDs,
			})
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"registration_id": conf.RegistrationID,
		"total_fee_cents": conf.TotalFeeCents,
	})
}

// handlePortalCancel withdraws the school from the competition.
func handlePortalCancel(w http.ResponseWriter, r *http.Request, sess middleware.Session, competitionID string) {
	err := orchestrators.ExecuteCancelRegistration(r.Context(), orchestrators.CancelRegistrationInput{
		CompetitionID: competitionID,
		SchoolID:      sess.SchoolID,
		ActorID:       sess.AccountID,
		ActorEmail:    sess.Email,
		ActorRole:     sess.Role,
	}, orchestrators.CancelRegistrationDeps{
		RegistrationStore: stores.RegistrationStore,
		AuditStore:        stores.AuditStore,
		Publisher:         scheduleHub,
	})
	if err != nil {
		var verr *orchestrators.ValidationError
		if errors.As(err, &verr) {
			errorJSON(w, http.StatusBadRequest, verr.Msg)
			return
		}
		errorJSON(w, http.StatusNotFound, "no registration for this competition")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

// handlePortalOccupancy returns the occupancy board for the acting
// school: every slot held by another school, grouped by event, with the
// holder's name. The school's own bookings never appear, so its slots
// never read as filled. Hitting the endpoint is the manual refresh
// trigger; between hits the tracker stays current via the change hub.
func handlePortalOccupancy(w http.ResponseWriter, r *http.Request, sess middleware.Session, competitionID string) {
	tr := occupancyTrackers.get(competitionID, sess.SchoolID)
	tr.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, tr.Snapshot())
}

// handlePortalWatch blocks until the competition's schedule changes or
// the poll times out. 200 means re-query the overview; 204 means
// nothing happened, reconnect.
func handlePortalWatch(w http.ResponseWriter, r *http.Request, competitionID string) {
	ch, cancel := scheduleHub.Subscribe(competitionID)
	defer cancel()

	timer := time.NewTimer(watchTimeout)
	defer timer.Stop()

	select {
	case <-ch:
		writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
		// Client went away; nothing to write.
	}
}
