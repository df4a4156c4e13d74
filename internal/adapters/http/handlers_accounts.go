package web

import (
	"errors"
	"net/http"

	accountStore "cadethq/internal/adapters/storage/account"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/domain/account"
)

// accountView is the wire shape for an account. The password hash
// never leaves the server.
type accountView struct {
	ID                     string `json:"id"`
	SchoolID               string `json:"school_id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	CreatedAt              string `json:"created_at"`
	PasswordChangeRequired bool   `json:"password_change_required"`
}

func toAccountView(a account.Account) accountView {
	return accountView{
		ID:                     a.ID,
		SchoolID:               a.SchoolID,
		Email:                  a.Email,
		Role:                   a.Role,
		CreatedAt:              a.CreatedAt.Format("2006-01-02"),
		PasswordChangeRequired: a.PasswordChangeRequired,
	}
}

// handleAccounts handles login account management, admin only.
// Routes: GET /api/accounts (list school's accounts), POST /api/accounts (create)
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		accounts, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{
			SchoolID: sess.SchoolID,
			Role:     r.URL.Query().Get("role"),
		})
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]accountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, toAccountView(a))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// New accounts always start with a forced password change.
		id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
			SchoolID:               sess.SchoolID,
			Email:                  body.Email,
			Password:               body.Password,
			Role:                   body.Role,
			PasswordChangeRequired: true,
		}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
				status = http.StatusConflict
			}
			errorJSON(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
