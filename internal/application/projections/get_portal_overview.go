package projections

import (
	"context"
	"time"

	"cadethq/internal/application/portal"
	"cadethq/internal/domain/competition"
)

// GetPortalOverviewQuery carries input for the portal overview
// projection. SchoolID is the acting school — always passed explicitly,
// never read from ambient state.
type GetPortalOverviewQuery struct {
	CompetitionID string
	SchoolID      string
}

// PortalEvent is one event as the acting school's form sees it: its
// slot list with availability already resolved against the live
// schedule.
type PortalEvent struct {
	ID           string
	Name         string
	Description  string
	FeeCents     int64
	Timed        bool
	Slots        []competition.TimeSlot // empty for untimed events
	Registered   bool                   // school already entered this event
	SelectedSlot string                 // slot ID of the school's booking, if any
}

// PortalOverviewResult carries the output of the portal overview
// projection.
type PortalOverviewResult struct {
	Competition   competition.Competition
	Events        []PortalEvent
	Registered    bool  // school has a registration for this competition
	TotalFeeCents int64 // committed fee snapshot when registered
}

// GetPortalOverviewDeps holds dependencies for GetPortalOverview.
type GetPortalOverviewDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	SchoolStore       SchoolStore
}

// QueryGetPortalOverview assembles the registration form for one school
// and competition: every event, each timed event's slot list flagged
// with live occupancy, and the school's current selection prefilled.
// Slots booked by the acting school itself always show as available to
// it; slot labels are rendered in the school's timezone.
// PRE: CompetitionID and SchoolID are non-empty
// POST: result reflects one consistent read of the schedule
func QueryGetPortalOverview(ctx context.Context, query GetPortalOverviewQuery, deps GetPortalOverviewDeps) (PortalOverviewResult, error) {
	comp, err := deps.CompetitionStore.GetByID(ctx, query.CompetitionID)
	if err != nil {
		return PortalOverviewResult{}, err
	}
	events, err := deps.CompetitionStore.ListEvents(ctx, query.CompetitionID)
	if err != nil {
		return PortalOverviewResult{}, err
	}

	loc := time.UTC
	if school, err := deps.SchoolStore.GetByID(ctx, query.SchoolID); err == nil {
		loc = school.Location()
	}

	result := PortalOverviewResult{Competition: comp}

	// Existing registration, if any. Not found just means create mode.
	if reg, err := deps.RegistrationStore.GetBySchool(ctx, query.CompetitionID, query.SchoolID); err == nil {
		result.Registered = true
		result.TotalFeeCents = reg.TotalFeeCents
	}

	registered := make(map[string]bool)
	if result.Registered {
		entries, err := deps.RegistrationStore.ListEventRegistrations(ctx, query.CompetitionID, query.SchoolID)
		if err != nil {
			return PortalOverviewResult{}, err
		}
		for _, e := range entries {
			registered[e.EventID] = true
		}
	}

	selected := make(map[string]string)
	if result.Registered {
		slots, err := deps.RegistrationStore.ListSlotsBySchool(ctx, query.CompetitionID, query.SchoolID)
		if err != nil {
			return PortalOverviewResult{}, err
		}
		for _, s := range slots {
			selected[s.EventID] = competition.SlotID(s.ScheduledTime)
		}
	}

	// One occupancy read covers every event's slot list; the grouping
	// and own-school exclusion live in the portal package.
	occupancy, err := deps.RegistrationStore.ListOccupancy(ctx, query.CompetitionID)
	if err != nil {
		return PortalOverviewResult{}, err
	}
	occupied := portal.BuildOccupancy(occupancy, query.SchoolID)

	result.Events = make([]PortalEvent, 0, len(events))
	for _, ev := range events {
		pe := PortalEvent{
			ID:           ev.ID,
			Name:         ev.Name,
			Description:  ev.Description,
			FeeCents:     ev.FeeCents,
			Timed:        ev.IsTimed(),
			Registered:   registered[ev.ID],
			SelectedSlot: selected[ev.ID],
		}
		if pe.Timed {
			pe.Slots = competition.GenerateSlots(ev, selected[ev.ID], occupied[ev.ID], loc)
		}
		result.Events = append(result.Events, pe)
	}

	return result, nil
}

// GetCompetitionListQuery carries input for the competition list
// projection.
type GetCompetitionListQuery struct {
	SchoolID string
	From     time.Time
}

// CompetitionListItem is one competition row on the portal's index.
type CompetitionListItem struct {
	Competition competition.Competition
	Registered  bool
}

// QueryGetCompetitionList lists upcoming competitions, flagging the
// ones the acting school is already registered for.
func QueryGetCompetitionList(ctx context.Context, query GetCompetitionListQuery, deps GetPortalOverviewDeps) ([]CompetitionListItem, error) {
	comps, err := deps.CompetitionStore.ListUpcoming(ctx, query.From)
	if err != nil {
		return nil, err
	}

	items := make([]CompetitionListItem, 0, len(comps))
	for _, c := range comps {
		item := CompetitionListItem{Competition: c}
		if _, err := deps.RegistrationStore.GetBySchool(ctx, c.ID, query.SchoolID); err == nil {
			item.Registered = true
		}
		items = append(items, item)
	}
	return items, nil
}
