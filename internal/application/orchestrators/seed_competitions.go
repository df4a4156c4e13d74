package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domain "cadethq/internal/domain/competition"
)

// CompetitionStoreForSeed defines the store interface needed by SeedCompetitions.
type CompetitionStoreForSeed interface {
	Save(ctx context.Context, c domain.Competition) error
	SaveEvent(ctx context.Context, e domain.Event) error
	ListAll(ctx context.Context) ([]domain.Competition, error)
}

// SeedCompetitionsDeps holds dependencies for SeedCompetitions.
type SeedCompetitionsDeps struct {
	CompetitionStore CompetitionStoreForSeed
}

// EventSeedData represents one event inside a seeded competition.
type EventSeedData struct {
	Name            string
	FeeCents        int64
	Start           string // HH:MM on competition day, empty for untimed
	End             string
	LunchStart      string
	LunchEnd        string
	IntervalMinutes int
}

// CompetitionSeedData represents a competition to be seeded.
type CompetitionSeedData struct {
	Name      string
	Location  string
	FeeCents  int64
	StartDate string // YYYY-MM-DD
	Events    []EventSeedData
}

// SpringMeets2026 is the initial seed data for the 2026 spring
// competition season.
var SpringMeets2026 = []CompetitionSeedData{
	{
		Name:      "Area 4 Spring Invitational 2026",
		Location:  "Central High School",
		FeeCents:  5000,
		StartDate: "2026-03-21",
		Events: []EventSeedData{
			{Name: "Armed Drill", FeeCents: 1000, Start: "09:00", End: "15:00", LunchStart: "12:00", LunchEnd: "13:00", IntervalMinutes: 15},
			{Name: "Unarmed Drill", FeeCents: 1000, Start: "09:00", End: "15:00", LunchStart: "12:00", LunchEnd: "13:00", IntervalMinutes: 15},
			{Name: "Color Guard", FeeCents: 1500, Start: "09:30", End: "14:30", LunchStart: "12:00", LunchEnd: "13:00", IntervalMinutes: 20},
			{Name: "Academic Bowl", FeeCents: 2500},
			{Name: "Physical Fitness", FeeCents: 500},
		},
	},
	{
		Name:      "District Drill Championship 2026",
		Location:  "Veterans Memorial Arena",
		FeeCents:  7500,
		StartDate: "2026-04-18",
		Events: []EventSeedData{
			{Name: "Armed Exhibition", FeeCents: 1500, Start: "08:00", End: "16:00", LunchStart: "11:30", LunchEnd: "12:30", IntervalMinutes: 15},
			{Name: "Unarmed Exhibition", FeeCents: 1500, Start: "08:00", End: "16:00", LunchStart: "11:30", LunchEnd: "12:30", IntervalMinutes: 15},
			{Name: "Color Guard", FeeCents: 1500, Start: "08:30", End: "15:30", LunchStart: "11:30", LunchEnd: "12:30", IntervalMinutes: 20},
			{Name: "Knockout Drill", FeeCents: 0},
		},
	},
}

// ExecuteSeedCompetitions seeds the spring competition season.
// It is idempotent - skips any competition that already exists (matched
// by name + start date).
func ExecuteSeedCompetitions(ctx context.Context, deps SeedCompetitionsDeps) error {
	existing, err := deps.CompetitionStore.ListAll(ctx)
	if err != nil {
		return err
	}

	// Build lookup map for idempotency: key = name + start_date
	existingMap := make(map[string]bool)
	for _, c := range existing {
		key := c.Name + c.StartDate.Format("2006-01-02")
		existingMap[key] = true
	}

	var seeded int
	for _, seed := range SpringMeets2026 {
		key := seed.Name + seed.StartDate
		if existingMap[key] {
			continue
		}

		day, err := time.Parse("2006-01-02", seed.StartDate)
		if err != nil {
			continue // Skip invalid dates
		}

		comp := domain.Competition{
			ID:        uuid.New().String(),
			Name:      seed.Name,
			Location:  seed.Location,
			FeeCents:  seed.FeeCents,
			StartDate: day,
		}
		if err := comp.Validate(); err != nil {
			continue // Skip invalid competitions
		}
		if err := deps.CompetitionStore.Save(ctx, comp); err != nil {
			return err
		}

		for _, es := range seed.Events {
			event := domain.Event{
				ID:              uuid.New().String(),
				CompetitionID:   comp.ID,
				Name:            es.Name,
				FeeCents:        es.FeeCents,
				StartTime:       clockOn(day, es.Start),
				EndTime:         clockOn(day, es.End),
				LunchStart:      clockOn(day, es.LunchStart),
				LunchEnd:        clockOn(day, es.LunchEnd),
				IntervalMinutes: es.IntervalMinutes,
			}
			if err := event.Validate(); err != nil {
				continue
			}
			if err := deps.CompetitionStore.SaveEvent(ctx, event); err != nil {
				return err
			}
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("seed_event", "event", "competitions_seeded", "count", seeded)
	}
	return nil
}

// clockOn combines a competition day with an HH:MM wall-clock string.
// Returns the zero time for an empty string.
func clockOn(day time.Time, hhmm string) time.Time {
	if hhmm == "" {
		return time.Time{}
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
