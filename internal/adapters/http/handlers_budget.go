package web

import (
	"net/http"

	"cadethq/internal/application/orchestrators"
	"cadethq/internal/application/projections"
)

// handleBudget handles the budget ledger.
// Routes: GET /api/budget (ledger), POST /api/budget (record entry)
func handleBudget(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		entries, err := stores.BudgetStore.ListBySchool(r.Context(), sess.SchoolID)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var body struct {
			Category    string `json:"category"`
			Description string `json:"description"`
			AmountCents int64  `json:"amount_cents"`
			Kind        string `json:"kind"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}

		e, err := orchestrators.ExecuteRecordBudgetEntry(r.Context(), orchestrators.RecordBudgetEntryInput{
			SchoolID:    sess.SchoolID,
			Category:    body.Category,
			Description: body.Description,
			AmountCents: body.AmountCents,
			Kind:        body.Kind,
			EnteredBy:   sess.AccountID,
		}, orchestrators.RecordBudgetEntryDeps{
			BudgetStore: stores.BudgetStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, e)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleBudgetSummary rolls the ledger up by category (GET /api/budget/summary).
func handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	result, err := projections.QueryGetBudgetSummary(r.Context(), sess.SchoolID, projections.GetBudgetSummaryDeps{
		BudgetStore: stores.BudgetStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
