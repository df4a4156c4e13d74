package web

import (
	"net/http"
	"strings"
	"time"

	"cadethq/internal/application/orchestrators"
)

// handleTasks handles the task collection.
// Routes: GET /api/tasks (list), POST /api/tasks (assign)
func handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sess, ok := requireSession(w, r)
		if !ok {
			return
		}
		status := r.URL.Query().Get("status")
		if cadetID := r.URL.Query().Get("cadet_id"); cadetID != "" {
			tasks, err := stores.TaskStore.ListByCadet(r.Context(), cadetID, status)
			if err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, tasks)
			return
		}
		tasks, err := stores.TaskStore.ListBySchool(r.Context(), sess.SchoolID, status)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)

	case http.MethodPost:
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		var body struct {
			CadetID string `json:"cadet_id"`
			Title   string `json:"title"`
			Details string `json:"details"`
			DueDate string `json:"due_date"` // RFC3339, optional
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var due time.Time
		if body.DueDate != "" {
			var err error
			due, err = time.Parse(time.RFC3339, body.DueDate)
			if err != nil {
				errorJSON(w, http.StatusBadRequest, "due_date must be RFC3339")
				return
			}
		}

		t, err := orchestrators.ExecuteAssignTask(r.Context(), orchestrators.AssignTaskInput{
			SchoolID:  sess.SchoolID,
			CadetID:   body.CadetID,
			Title:     body.Title,
			Details:   body.Details,
			DueDate:   due,
			CreatedBy: sess.AccountID,
		}, orchestrators.AssignTaskDeps{
			TaskStore:  stores.TaskStore,
			CadetStore: stores.CadetStore,
			GenerateID: generateID,
			Now:        timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, t)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleTaskAction handles state changes on a single task.
// Routes: POST /api/tasks/:id/complete, POST /api/tasks/:id/cancel
func handleTaskAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		errorJSON(w, http.StatusBadRequest, "invalid path")
		return
	}
	taskID, action := parts[0], parts[1]

	switch action {
	case "complete":
		sess, ok := requireSession(w, r)
		if !ok {
			return
		}
		t, err := orchestrators.ExecuteCompleteTask(r.Context(), orchestrators.CompleteTaskInput{
			TaskID:   taskID,
			SchoolID: sess.SchoolID,
		}, orchestrators.CompleteTaskDeps{
			TaskStore: stores.TaskStore,
			Now:       timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)

	case "cancel":
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		err := orchestrators.ExecuteCancelTask(r.Context(), orchestrators.CancelTaskInput{
			TaskID:   taskID,
			SchoolID: sess.SchoolID,
		}, orchestrators.CancelTaskDeps{TaskStore: stores.TaskStore})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})

	default:
		errorJSON(w, http.StatusBadRequest, "unknown action")
	}
}
