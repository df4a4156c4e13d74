package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadethq/internal/domain/incident"
)

// IncidentStore defines the interface for incident persistence.
type IncidentStore interface {
	Save(ctx context.Context, i incident.Incident) error
}

// ReportIncidentInput carries input for the orchestrator.
type ReportIncidentInput struct {
	SchoolID    string
	CadetID     string
	Category    string
	Severity    string
	Description string
	ReportedBy  string // account ID
}

// ReportIncidentDeps holds dependencies for ReportIncident.
type ReportIncidentDeps struct {
	CadetStore    CadetStoreForOrchestrator
	IncidentStore IncidentStore
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteReportIncident records a disciplinary or safety incident.
// PRE: Cadet exists and belongs to the school; category and severity set
// POST: Incident record created
func ExecuteReportIncident(ctx context.Context, input ReportIncidentInput, deps ReportIncidentDeps) (incident.Incident, error) {
	if input.CadetID == "" {
		return incident.Incident{}, errors.New("cadet ID is required")
	}

	c, err := deps.CadetStore.GetByID(ctx, input.CadetID)
	if err != nil {
		return incident.Incident{}, errors.New("cadet not found")
	}
	if input.SchoolID != "" && c.SchoolID != input.SchoolID {
		return incident.Incident{}, errors.New("cadet belongs to a different school")
	}

	inc := incident.Incident{
		ID:          deps.GenerateID(),
		SchoolID:    c.SchoolID,
		CadetID:     input.CadetID,
		Category:    input.Category,
		Severity:    input.Severity,
		Description: input.Description,
		ReportedBy:  input.ReportedBy,
		ReportedAt:  deps.Now(),
	}

	if err := inc.Validate(); err != nil {
		return incident.Incident{}, err
	}

	if err := deps.IncidentStore.Save(ctx, inc); err != nil {
		return incident.Incident{}, err
	}

	slog.Info("incident_event", "event", "incident_reported", "incident_id", inc.ID, "cadet_id", inc.CadetID, "severity", inc.Severity)
	return inc, nil
}
