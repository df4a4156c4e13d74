package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"cadethq/internal/domain/cadet"
)

// CadetStoreForOrchestrator defines the store interface needed by cadet orchestrators.
type CadetStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (cadet.Cadet, error)
	Save(ctx context.Context, c cadet.Cadet) error
}

// --- Enroll Cadet ---

// EnrollCadetInput carries input for the enroll cadet orchestrator.
type EnrollCadetInput struct {
	SchoolID  string
	Name      string
	Rank      string
	LetLevel  int
	Flight    string
	AccountID string // optional linked login
}

// EnrollCadetDeps holds dependencies for EnrollCadet.
type EnrollCadetDeps struct {
	CadetStore CadetStoreForOrchestrator
	GenerateID func() string
}

// ExecuteEnrollCadet enrolls a new cadet into a school's program.
// PRE: Name and SchoolID non-empty; LetLevel between 1 and 4
// POST: Cadet created with active status
func ExecuteEnrollCadet(ctx context.Context, input EnrollCadetInput, deps EnrollCadetDeps) (cadet.Cadet, error) {
	c := cadet.Cadet{
		ID:        deps.GenerateID(),
		SchoolID:  input.SchoolID,
		AccountID: input.AccountID,
		Name:      input.Name,
		Rank:      input.Rank,
		LetLevel:  input.LetLevel,
		Flight:    input.Flight,
		Status:    cadet.StatusActive,
	}

	if err := c.Validate(); err != nil {
		return cadet.Cadet{}, err
	}

	if err := deps.CadetStore.Save(ctx, c); err != nil {
		return cadet.Cadet{}, err
	}

	slog.Info("cadet_event", "event", "cadet_enrolled", "cadet_id", c.ID, "school_id", c.SchoolID, "let_level", c.LetLevel)
	return c, nil
}

// --- Update Cadet ---

// UpdateCadetInput carries input for the update cadet orchestrator.
// Partial-update semantics: Name, Rank and Flight are only updated when
// non-empty; LetLevel only when non-zero; Status only when non-empty.
type UpdateCadetInput struct {
	CadetID  string
	SchoolID string // acting school, must match the cadet's
	Name     string
	Rank     string
	LetLevel int
	Flight   string
	Status   string
}

// UpdateCadetDeps holds dependencies for UpdateCadet.
type UpdateCadetDeps struct {
	CadetStore CadetStoreForOrchestrator
}

// ExecuteUpdateCadet updates fields on an existing cadet.
// PRE: CadetID non-empty; cadet exists and belongs to the acting school
// POST: Cadet fields updated
func ExecuteUpdateCadet(ctx context.Context, input UpdateCadetInput, deps UpdateCadetDeps) (cadet.Cadet, error) {
	if input.CadetID == "" {
		return cadet.Cadet{}, errors.New("cadet ID is required")
	}

	c, err := deps.CadetStore.GetByID(ctx, input.CadetID)
	if err != nil {
		return cadet.Cadet{}, err
	}
	if input.SchoolID != "" && c.SchoolID != input.SchoolID {
		return cadet.Cadet{}, errors.New("cadet belongs to a different school")
	}

	if input.Name != "" {
		c.Name = input.Name
	}
	if input.Rank != "" {
		c.Rank = input.Rank
	}
	if input.LetLevel != 0 {
		c.LetLevel = input.LetLevel
	}
	if input.Flight != "" {
		c.Flight = input.Flight
	}
	if input.Status != "" {
		c.Status = input.Status
	}

	if err := c.Validate(); err != nil {
		return cadet.Cadet{}, err
	}

	if err := deps.CadetStore.Save(ctx, c); err != nil {
		return cadet.Cadet{}, err
	}

	slog.Info("cadet_event", "event", "cadet_updated", "cadet_id", c.ID)
	return c, nil
}

// --- Archive Cadet ---

// ArchiveCadetInput carries input for the archive cadet orchestrator.
type ArchiveCadetInput struct {
	CadetID  string
	SchoolID string
}

// ArchiveCadetDeps holds dependencies for ArchiveCadet.
type ArchiveCadetDeps struct {
	CadetStore CadetStoreForOrchestrator
}

// ExecuteArchiveCadet archives a cadet who has left the program.
// Archiving is soft: the record and its history stay queryable.
// PRE: CadetID non-empty; cadet exists and belongs to the acting school
// POST: Cadet status is archived
func ExecuteArchiveCadet(ctx context.Context, input ArchiveCadetInput, deps ArchiveCadetDeps) error {
	if input.CadetID == "" {
		return errors.New("cadet ID is required")
	}

	c, err := deps.CadetStore.GetByID(ctx, input.CadetID)
	if err != nil {
		return err
	}
	if input.SchoolID != "" && c.SchoolID != input.SchoolID {
		return errors.New("cadet belongs to a different school")
	}
	if c.IsArchived() {
		return nil // Already archived, idempotent
	}

	c.Status = cadet.StatusArchived
	if err := deps.CadetStore.Save(ctx, c); err != nil {
		return err
	}

	slog.Info("cadet_event", "event", "cadet_archived", "cadet_id", c.ID)
	return nil
}
