package web

import (
	"net/http"
	"strconv"

	"cadethq/internal/application/orchestrators"
)

// handleIncidents handles the incident log.
// Routes: GET /api/incidents (list), POST /api/incidents (report)
// Incident records are staff-only in both directions.
func handleIncidents(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		if cadetID := r.URL.Query().Get("cadet_id"); cadetID != "" {
			incidents, err := stores.IncidentStore.ListByCadet(r.Context(), cadetID)
			if err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, incidents)
			return
		}
		limit := 100
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		incidents, err := stores.IncidentStore.ListBySchool(r.Context(), sess.SchoolID, limit)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, incidents)

	case http.MethodPost:
		var body struct {
			CadetID     string `json:"cadet_id"`
			Category    string `json:"category"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}

		inc, err := orchestrators.ExecuteReportIncident(r.Context(), orchestrators.ReportIncidentInput{
			SchoolID:    sess.SchoolID,
			CadetID:     body.CadetID,
			Category:    body.Category,
			Severity:    body.Severity,
			Description: body.Description,
			ReportedBy:  sess.AccountID,
		}, orchestrators.ReportIncidentDeps{
			CadetStore:    stores.CadetStore,
			IncidentStore: stores.IncidentStore,
			GenerateID:    generateID,
			Now:           timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, inc)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
