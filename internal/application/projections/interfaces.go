package projections

import (
	"context"
	"time"

	cadetStore "cadethq/internal/adapters/storage/cadet"
	domainAnnouncement "cadethq/internal/domain/announcement"
	domainBudget "cadethq/internal/domain/budget"
	domainCadet "cadethq/internal/domain/cadet"
	domainCompetition "cadethq/internal/domain/competition"
	domainIncident "cadethq/internal/domain/incident"
	domainRegistration "cadethq/internal/domain/registration"
	domainSchool "cadethq/internal/domain/school"
	domainTask "cadethq/internal/domain/task"
)

// CadetStore interface for cadet queries.
type CadetStore interface {
	GetByID(ctx context.Context, id string) (domainCadet.Cadet, error)
	List(ctx context.Context, filter cadetStore.ListFilter) ([]domainCadet.Cadet, error)
	Count(ctx context.Context, filter cadetStore.ListFilter) (int, error)
}

// TaskStore interface for task queries.
type TaskStore interface {
	ListBySchool(ctx context.Context, schoolID, status string) ([]domainTask.Task, error)
}

// IncidentStore interface for incident queries.
type IncidentStore interface {
	ListBySchool(ctx context.Context, schoolID string, limit int) ([]domainIncident.Incident, error)
}

// AnnouncementStore interface for announcement queries.
type AnnouncementStore interface {
	ListBySchool(ctx context.Context, schoolID string, publishedOnly bool) ([]domainAnnouncement.Announcement, error)
}

// BudgetStore interface for budget ledger queries.
type BudgetStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]domainBudget.Entry, error)
}

// SchoolStore interface for school lookups.
type SchoolStore interface {
	GetByID(ctx context.Context, id string) (domainSchool.School, error)
}

// CompetitionStore interface for competition queries.
type CompetitionStore interface {
	GetByID(ctx context.Context, id string) (domainCompetition.Competition, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]domainCompetition.Competition, error)
	ListEvents(ctx context.Context, competitionID string) ([]domainCompetition.Event, error)
}

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	GetBySchool(ctx context.Context, competitionID, schoolID string) (domainRegistration.Registration, error)
	ListEventRegistrations(ctx context.Context, competitionID, schoolID string) ([]domainRegistration.EventRegistration, error)
	ListSlotsBySchool(ctx context.Context, competitionID, schoolID string) ([]domainRegistration.ScheduleSlot, error)
	ListOccupancy(ctx context.Context, competitionID string) ([]domainRegistration.OccupancyRow, error)
}
