package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cadethq/internal/application/orchestrators"
	"cadethq/internal/domain/outbox"
)

// handleAdminOutbox handles admin endpoints for managing outbox entries.
// Routes: GET /api/admin/outbox (list failed entries),
// POST /api/admin/outbox/:id/retry, POST /api/admin/outbox/:id/abandon
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		status := r.URL.Query().Get("status")
		if status == "" {
			status = outbox.StatusFailed
		}

		var entries []outbox.Entry
		var err error
		if status == "all" {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		// Extract entry ID from path: /api/admin/outbox/:id/:action
		rest := strings.TrimPrefix(r.URL.Path, "/api/admin/outbox/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) != 2 || parts[0] == "" {
			errorJSON(w, http.StatusBadRequest, "invalid path")
			return
		}
		entryID, action := parts[0], parts[1]

		// Retries run through the same executors as the background
		// worker so a manual retry really sends the email.
		processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, outboxExecutors)

		switch action {
		case "retry":
			if err := processor.ProcessSingle(ctx, entryID); err != nil {
				errorJSON(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "retry triggered"})

		case "abandon":
			if err := processor.AbandonEntry(ctx, entryID); err != nil {
				errorJSON(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})

		default:
			errorJSON(w, http.StatusBadRequest, "unknown action")
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminPerf exposes request and query timing stats
// (GET /api/admin/perf).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	minutes := 15
	if s := r.URL.Query().Get("minutes"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1440 {
			minutes = n
		}
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 20)
	writeJSON(w, http.StatusOK, snap)
}
