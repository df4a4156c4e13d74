package web

import (
	"net/http"
	"strings"

	"cadethq/internal/application/listutil"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/application/projections"
)

// cadetSortColumns are the sort keys the roster list accepts.
var cadetSortColumns = []string{"name", "rank", "let_level", "flight", "status"}

// handleCadets handles the cadet roster collection.
// Routes: GET /api/cadets (list), POST /api/cadets (enroll)
func handleCadets(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		params := listutil.ParseListParams(r.URL.Query(), cadetSortColumns, []string{"status", "flight"})
		result, err := projections.QueryGetCadetList(r.Context(), projections.GetCadetListQuery{
			SchoolID: sess.SchoolID,
			Params:   params,
		}, projections.GetCadetListDeps{
			CadetStore:    stores.CadetStore,
			IncidentStore: stores.IncidentStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case http.MethodPost:
		var body struct {
			Name      string `json:"name"`
			Rank      string `json:"rank"`
			LetLevel  int    `json:"let_level"`
			Flight    string `json:"flight"`
			AccountID string `json:"account_id"`
		}
		if isFormRequest(r) {
			body.Name = r.FormValue("name")
			body.Rank = r.FormValue("rank")
			body.LetLevel = atoiOrZero(r.FormValue("let_level"))
			body.Flight = r.FormValue("flight")
			body.AccountID = r.FormValue("account_id")
		} else {
			if err := strictDecode(r, &body); err != nil {
				errorJSON(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		input := orchestrators.EnrollCadetInput{
			SchoolID:  sess.SchoolID,
			Name:      body.Name,
			Rank:      body.Rank,
			LetLevel:  body.LetLevel,
			Flight:    body.Flight,
			AccountID: body.AccountID,
		}

		c, err := orchestrators.ExecuteEnrollCadet(r.Context(), input, orchestrators.EnrollCadetDeps{
			CadetStore: stores.CadetStore,
			GenerateID: generateID,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, c)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleCadetByID handles a single cadet.
// Routes: GET /api/cadets/:id, PUT /api/cadets/:id, POST /api/cadets/:id/archive
func handleCadetByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/cadets/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		errorJSON(w, http.StatusBadRequest, "cadet ID required")
		return
	}
	cadetID := parts[0]

	// POST /api/cadets/:id/archive
	if len(parts) == 2 && parts[1] == "archive" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		err := orchestrators.ExecuteArchiveCadet(r.Context(), orchestrators.ArchiveCadetInput{
			CadetID:  cadetID,
			SchoolID: sess.SchoolID,
		}, orchestrators.ArchiveCadetDeps{CadetStore: stores.CadetStore})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := stores.CadetStore.GetByID(r.Context(), cadetID)
		if err != nil {
			errorJSON(w, http.StatusNotFound, "cadet not found")
			return
		}
		if c.SchoolID != sess.SchoolID {
			errorJSON(w, http.StatusForbidden, "cadet belongs to a different school")
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodPut:
		var body struct {
			Name     string `json:"name"`
			Rank     string `json:"rank"`
			LetLevel int    `json:"let_level"`
			Flight   string `json:"flight"`
			Status   string `json:"status"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		input := orchestrators.UpdateCadetInput{
			CadetID:  cadetID,
			SchoolID: sess.SchoolID,
			Name:     body.Name,
			Rank:     body.Rank,
			LetLevel: body.LetLevel,
			Flight:   body.Flight,
			Status:   body.Status,
		}

		c, err := orchestrators.ExecuteUpdateCadet(r.Context(), input, orchestrators.UpdateCadetDeps{
			CadetStore: stores.CadetStore,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
