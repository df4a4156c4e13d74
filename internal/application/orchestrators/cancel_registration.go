package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"cadethq/internal/domain/audit"
	"cadethq/internal/domain/registration"
)

// RegistrationStoreForCancel defines the persistence needed to cancel.
// DeleteForSchool must remove the registration, its event entries and
// its schedule slots in one transaction.
type RegistrationStoreForCancel interface {
	GetBySchool(ctx context.Context, competitionID, schoolID string) (registration.Registration, error)
	DeleteForSchool(ctx context.Context, competitionID, schoolID string) error
}

// CancelRegistrationInput carries input for the cancel orchestrator.
type CancelRegistrationInput struct {
	CompetitionID string
	SchoolID      string
	ActorID       string
	ActorEmail    string
	ActorRole     string
}

// CancelRegistrationDeps holds dependencies for CancelRegistration.
type CancelRegistrationDeps struct {
	RegistrationStore RegistrationStoreForCancel
	AuditStore        AuditStore
	Publisher         SchedulePublisher
}

// ExecuteCancelRegistration withdraws a school from a competition,
// freeing every slot it held.
// PRE: the school has a registration for the competition
// POST: registration, event entries and slots removed; subscribers signalled
func ExecuteCancelRegistration(ctx context.Context, input CancelRegistrationInput, deps CancelRegistrationDeps) error {
	if input.CompetitionID == "" || input.SchoolID == "" {
		return &ValidationError{Msg: "competition and school are required"}
	}

	reg, err := deps.RegistrationStore.GetBySchool(ctx, input.CompetitionID, input.SchoolID)
	if err != nil {
		return err
	}

	if err := deps.RegistrationStore.DeleteForSchool(ctx, input.CompetitionID, input.SchoolID); err != nil {
		slog.Error("portal_event", "event", "cancel_failed", "competition_id", input.CompetitionID, "school_id", input.SchoolID, "error", err)
		return err
	}

	evt := audit.NewEvent(input.ActorID, input.ActorEmail, input.ActorRole, audit.CategoryPortal, audit.ActionCancel).
		WithSchool(input.SchoolID).
		WithResource("registration", reg.ID).
		WithDescription(fmt.Sprintf("withdrew from competition %s", input.CompetitionID))
	if err := deps.AuditStore.Save(ctx, evt); err != nil {
		slog.Error("audit_event", "event", "audit_write_failed", "error", err)
	}

	slog.Info("portal_event", "event", "registration_cancelled",
		"competition_id", input.CompetitionID,
		"school_id", input.SchoolID,
		"registration_id", reg.ID,
	)

	if deps.Publisher != nil {
		deps.Publisher.Publish(input.CompetitionID)
	}
	return nil
}
