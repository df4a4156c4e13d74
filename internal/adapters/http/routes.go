package web

import (
	"net/http"

	"cadethq/internal/adapters/http/middleware"
	"cadethq/internal/domain/account"
)

// registerRoutes attaches every API route to the mux. Handlers do their
// own session and role checks; the admin subtree is additionally gated
// by middleware so no handler slip can expose it.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/session", handleSession)
	mux.HandleFunc("/api/change-password", handleChangePassword)

	// Dashboard
	mux.HandleFunc("/api/dashboard", handleDashboard)

	// Roster
	mux.HandleFunc("/api/cadets", handleCadets)
	mux.HandleFunc("/api/cadets/", handleCadetByID)

	// Tasks
	mux.HandleFunc("/api/tasks", handleTasks)
	mux.HandleFunc("/api/tasks/", handleTaskAction)

	// Incidents
	mux.HandleFunc("/api/incidents", handleIncidents)

	// Announcements
	mux.HandleFunc("/api/announcements", handleAnnouncements)
	mux.HandleFunc("/api/announcements/", handleAnnouncementByID)

	// Budget
	mux.HandleFunc("/api/budget", handleBudget)
	mux.HandleFunc("/api/budget/summary", handleBudgetSummary)

	// Competition portal
	mux.HandleFunc("/api/portal/competitions", handlePortalCompetitions)
	mux.HandleFunc("/api/portal/competitions/", handlePortalCompetition)

	// Admin
	adminOnly := middleware.RequireRole(account.RoleAdmin)
	mux.Handle("/api/accounts", adminOnly(http.HandlerFunc(handleAccounts)))
	mux.Handle("/api/schools", adminOnly(http.HandlerFunc(handleSchools)))
	mux.Handle("/api/admin/audit-trail", adminOnly(http.HandlerFunc(handleAdminAuditTrail)))
	mux.Handle("/api/admin/outbox", adminOnly(http.HandlerFunc(handleAdminOutbox)))
	mux.Handle("/api/admin/outbox/", adminOnly(http.HandlerFunc(handleAdminOutbox)))
	mux.Handle("/api/admin/perf", adminOnly(http.HandlerFunc(handleAdminPerf)))
}
