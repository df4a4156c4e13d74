package projections

import (
	"context"
	"time"

	"cadethq/internal/domain/announcement"
	"cadethq/internal/domain/incident"
	"cadethq/internal/domain/task"

	cadetStore "cadethq/internal/adapters/storage/cadet"
	"cadethq/internal/domain/cadet"
)

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	SchoolID string
	Role     string // admin, instructor, cadet
	CadetID  string // set for cadet role: scopes tasks to the viewer
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	CadetStore        CadetStore
	TaskStore         TaskStore
	IncidentStore     IncidentStore
	AnnouncementStore AnnouncementStore
	CompetitionStore  CompetitionStore
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role string

	// Shared
	Announcements []announcement.Announcement

	// Staff
	ActiveCadets    int
	OpenTasks       int
	OverdueTasks    int
	RecentIncidents []incident.Incident
	UpcomingMeets   int

	// Cadet
	MyTasks []task.Task
}

// QueryGetDashboard aggregates dashboard data based on the user's role.
// Every read is scoped to the acting school.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	result := DashboardResult{Role: query.Role}

	// All roles: published announcements
	anns, err := deps.AnnouncementStore.ListBySchool(ctx, query.SchoolID, true)
	if err == nil {
		result.Announcements = anns
	}

	switch query.Role {
	case "admin", "instructor":
		count, err := deps.CadetStore.Count(ctx, cadetStore.ListFilter{
			SchoolID: query.SchoolID,
			Status:   cadet.StatusActive,
		})
		if err == nil {
			result.ActiveCadets = count
		}

		tasks, err := deps.TaskStore.ListBySchool(ctx, query.SchoolID, task.StatusOpen)
		if err == nil {
			result.OpenTasks = len(tasks)
			for _, t := range tasks {
				if t.IsOverdue(now) {
					result.OverdueTasks++
				}
			}
		}

		incidents, err := deps.IncidentStore.ListBySchool(ctx, query.SchoolID, 5)
		if err == nil {
			result.RecentIncidents = incidents
		}

		comps, err := deps.CompetitionStore.ListUpcoming(ctx, now)
		if err == nil {
			result.UpcomingMeets = len(comps)
		}

	case "cadet":
		if query.CadetID != "" {
			tasks, err := deps.TaskStore.ListBySchool(ctx, query.SchoolID, task.StatusOpen)
			if err == nil {
				for _, t := range tasks {
					if t.CadetID == query.CadetID {
						result.MyTasks = append(result.MyTasks, t)
					}
				}
			}
		}
	}

	return result, nil
}
