package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"cadethq/internal/adapters/http/middleware"
	cadetStore "cadethq/internal/adapters/storage/cadet"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/application/projections"
)

// timeNow is indirected so tests can pin the clock.
var timeNow = time.Now

// mdRenderer renders announcement Markdown to HTML. No raw HTML
// passthrough: author input stays escaped.
var mdRenderer = goldmark.New()

// generateID returns a new unique identifier.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and sends a generic 500. Internal
// details never reach the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("http_error", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeJSON sends v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("http_error", "error", err)
	}
}

// errorJSON sends a JSON error body with the given status.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// strictDecode decodes a JSON request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// isFormRequest reports whether the request carries an HTML form body
// rather than JSON.
func isFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// atoiOrZero parses an integer form value, returning 0 on garbage.
func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// renderMarkdown converts Markdown to an HTML string.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// requireSession extracts the session or sends 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "not authenticated")
		return middleware.Session{}, false
	}
	return sess, true
}

// requireStaff extracts the session and checks for an admin or
// instructor role.
func requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if !middleware.IsStaff(r.Context()) {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role)
		errorJSON(w, http.StatusForbidden, "staff access required")
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin extracts the session and checks for the admin role.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if !middleware.IsAdmin(r.Context()) {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role)
		errorJSON(w, http.StatusForbidden, "admin access required")
		return middleware.Session{}, false
	}
	return sess, true
}

// --- Auth ---

// handleLogin authenticates a user and starts a session (POST /api/login).
// Accepts JSON or form bodies. A form post redirects on success so the
// static login page works without script.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	form := isFormRequest(r)
	if form {
		input.Email = r.FormValue("email")
		input.Password = r.FormValue("password")
	} else {
		if err := strictDecode(r, &input); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusForbidden
		}
		errorJSON(w, status, err.Error())
		return
	}

	token, err := sessions.Create(result.AccountID, result.SchoolID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	if form {
		if result.PasswordChangeRequired {
			http.Redirect(w, r, "/change-password.html", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":               result.AccountID,
		"school_id":                result.SchoolID,
		"role":                     result.Role,
		"password_change_required": result.PasswordChangeRequired,
	})
}

// handleLogout ends the session (POST /api/logout).
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie("cadethq_session"); err == nil && cookie.Value != "" {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleSession reports the current session (GET /api/session).
func handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": sess.AccountID,
		"school_id":  sess.SchoolID,
		"email":      sess.Email,
		"role":       sess.Role,
	})
}

// handleChangePassword updates the caller's password (POST /api/change-password).
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if isFormRequest(r) {
		body.CurrentPassword = r.FormValue("current_password")
		body.NewPassword = r.FormValue("new_password")
		body.ConfirmPassword = r.FormValue("confirm_password")
	} else {
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if body.NewPassword != body.ConfirmPassword {
		errorJSON(w, http.StatusBadRequest, "new passwords do not match")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// findCadetByAccount resolves the cadet record linked to a login.
func findCadetByAccount(r *http.Request, schoolID, accountID string) (string, error) {
	cadets, err := stores.CadetStore.List(r.Context(), cadetStore.ListFilter{SchoolID: schoolID})
	if err != nil {
		return "", err
	}
	for _, c := range cadets {
		if c.AccountID == accountID {
			return c.ID, nil
		}
	}
	return "", errors.New("no cadet record for account")
}

// --- Dashboard ---

// handleDashboard returns the role-scoped dashboard (GET /api/dashboard).
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	query := projections.GetDashboardQuery{
		SchoolID: sess.SchoolID,
		Role:     sess.Role,
	}
	// A cadet sees their own open tasks; resolve the cadet record
	// linked to the account.
	if sess.Role == "cadet" {
		if id, err := findCadetByAccount(r, sess.SchoolID, sess.AccountID); err == nil {
			query.CadetID = id
		}
	}

	result, err := projections.QueryGetDashboard(r.Context(), query, projections.GetDashboardDeps{
		CadetStore:        stores.CadetStore,
		TaskStore:         stores.TaskStore,
		IncidentStore:     stores.IncidentStore,
		AnnouncementStore: stores.AnnouncementStore,
		CompetitionStore:  stores.CompetitionStore,
	}, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
