package registration

import "time"

// OccupancyRow is a schedule slot joined with its owning school's
// display name, as read by the portal's occupancy queries.
type OccupancyRow struct {
	EventID       string
	SchoolID      string
	SchoolName    string
	ScheduledTime time.Time
}
