package orchestrators

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"cadethq/internal/domain/school"
)

// SchoolStoreForSeed defines the store interface needed by SeedSchools.
type SchoolStoreForSeed interface {
	Save(ctx context.Context, s school.School) error
	ListAll(ctx context.Context) ([]school.School, error)
}

// SeedSchoolsDeps holds dependencies for SeedSchools.
type SeedSchoolsDeps struct {
	SchoolStore SchoolStoreForSeed
}

// DefaultSchools is the initial seed data for a fresh install.
var DefaultSchools = []school.School{
	{Name: "Central High School", District: "Area 4", Timezone: "America/Chicago"},
	{Name: "North High School", District: "Area 4", Timezone: "America/Chicago"},
	{Name: "Riverside High School", District: "Area 4", Timezone: "America/Chicago"},
}

// ExecuteSeedSchools seeds the default schools on a fresh install.
// It is idempotent - skips any school that already exists (matched by
// name).
// PRE: Database is initialized
// POST: Each default school exists exactly once; returns the ID of the
// first seeded or existing school for admin bootstrap
func ExecuteSeedSchools(ctx context.Context, deps SeedSchoolsDeps) (string, error) {
	existing, err := deps.SchoolStore.ListAll(ctx)
	if err != nil {
		return "", err
	}

	existingByName := make(map[string]string, len(existing))
	for _, s := range existing {
		existingByName[s.Name] = s.ID
	}

	firstID := ""
	var seeded int
	for _, seed := range DefaultSchools {
		if id, ok := existingByName[seed.Name]; ok {
			if firstID == "" {
				firstID = id
			}
			continue
		}

		s := school.School{
			ID:       uuid.New().String(),
			Name:     seed.Name,
			District: seed.District,
			Timezone: seed.Timezone,
		}
		if err := s.Validate(); err != nil {
			continue // Skip invalid seed rows
		}
		if err := deps.SchoolStore.Save(ctx, s); err != nil {
			return "", err
		}
		if firstID == "" {
			firstID = s.ID
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("seed_event", "event", "schools_seeded", "count", seeded)
	}
	return firstID, nil
}
