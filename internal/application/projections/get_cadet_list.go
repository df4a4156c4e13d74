package projections

import (
	"context"
	"time"

	cadetStore "cadethq/internal/adapters/storage/cadet"
	"cadethq/internal/application/listutil"
	domainIncident "cadethq/internal/domain/incident"
)

// GetCadetListQuery carries query parameters.
type GetCadetListQuery struct {
	SchoolID string
	Params   listutil.ListParams
}

// CadetWithIncident represents a cadet row with a recent-incident flag.
type CadetWithIncident struct {
	ID               string
	Name             string
	Rank             string
	LetLevel         int
	Flight           string
	Status           string
	HasIncident      bool
	IncidentCategory string
}

// GetCadetListResult carries the query result.
type GetCadetListResult struct {
	Cadets   []CadetWithIncident
	PageInfo listutil.PageInfo
}

// GetCadetListDeps holds dependencies for GetCadetList.
type GetCadetListDeps struct {
	CadetStore    CadetStore
	IncidentStore IncidentStore
}

// QueryGetCadetList retrieves a page of cadets with incident flags.
// PRE: SchoolID is non-empty
// POST: Returns cadets scoped to the school with recent-incident indicators
// INVARIANT: Incidents are flagged if reported within the last 30 days
func QueryGetCadetList(ctx context.Context, query GetCadetListQuery, deps GetCadetListDeps) (GetCadetListResult, error) {
	filter := cadetStore.ListFilter{
		SchoolID: query.SchoolID,
		Status:   query.Params.Filters["status"],
		Flight:   query.Params.Filters["flight"],
		Search:   query.Params.Search,
		Sort:     query.Params.Sort,
		Dir:      query.Params.Dir,
	}

	total, err := deps.CadetStore.Count(ctx, filter)
	if err != nil {
		return GetCadetListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)

	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()
	cadets, err := deps.CadetStore.List(ctx, filter)
	if err != nil {
		return GetCadetListResult{}, err
	}

	// Recent incidents (last 30 days) for the flag column.
	thirtyDaysAgo := time.Now().Add(-30 * 24 * time.Hour)
	incidents, err := deps.IncidentStore.ListBySchool(ctx, query.SchoolID, 1000)
	if err != nil {
		return GetCadetListResult{}, err
	}
	incidentMap := make(map[string]domainIncident.Incident)
	for _, inc := range incidents {
		if inc.ReportedAt.After(thirtyDaysAgo) {
			incidentMap[inc.CadetID] = inc
		}
	}

	result := GetCadetListResult{PageInfo: pageInfo}
	for _, c := range cadets {
		row := CadetWithIncident{
			ID:       c.ID,
			Name:     c.Name,
			Rank:     c.Rank,
			LetLevel: c.LetLevel,
			Flight:   c.Flight,
			Status:   c.Status,
		}
		if inc, ok := incidentMap[c.ID]; ok {
			row.HasIncident = true
			row.IncidentCategory = inc.Category
		}
		result.Cadets = append(result.Cadets, row)
	}

	return result, nil
}
