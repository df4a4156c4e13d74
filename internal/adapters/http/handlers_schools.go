package web

import "net/http"

// handleSchools lists every school in the district, admin only.
// Routes: GET /api/schools
func handleSchools(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	schools, err := stores.SchoolStore.ListAll(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schools)
}
