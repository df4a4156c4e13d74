package web

import (
	"net/http"
	"strings"

	"cadethq/internal/adapters/http/middleware"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/domain/announcement"
)

// announcementView is an announcement plus its rendered body.
type announcementView struct {
	announcement.Announcement
	ContentHTML string `json:"content_html"`
}

func toAnnouncementView(a announcement.Announcement) announcementView {
	return announcementView{Announcement: a, ContentHTML: renderMarkdown(a.Content)}
}

// handleAnnouncements handles the announcement collection.
// Routes: GET /api/announcements (list), POST /api/announcements (create)
// Cadets only see published announcements; staff also see drafts.
func handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sess, ok := requireSession(w, r)
		if !ok {
			return
		}
		publishedOnly := !middleware.IsStaff(r.Context())
		anns, err := stores.AnnouncementStore.ListBySchool(r.Context(), sess.SchoolID, publishedOnly)
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]announcementView, 0, len(anns))
		for _, a := range anns {
			views = append(views, toAnnouncementView(a))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Pinned  bool   `json:"pinned"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}

		a, err := orchestrators.ExecuteCreateAnnouncement(r.Context(), orchestrators.CreateAnnouncementInput{
			SchoolID:  sess.SchoolID,
			Title:     body.Title,
			Content:   body.Content,
			Pinned:    body.Pinned,
			CreatedBy: sess.AccountID,
		}, orchestrators.CreateAnnouncementDeps{
			AnnouncementStore: stores.AnnouncementStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, toAnnouncementView(a))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAnnouncementByID handles a single announcement.
// Routes: PUT /api/announcements/:id (edit), DELETE /api/announcements/:id,
// POST /api/announcements/:id/publish
func handleAnnouncementByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/announcements/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		errorJSON(w, http.StatusBadRequest, "announcement ID required")
		return
	}
	id := parts[0]

	// POST /api/announcements/:id/publish
	if len(parts) == 2 && parts[1] == "publish" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a, err := orchestrators.ExecutePublishAnnouncement(r.Context(), orchestrators.PublishAnnouncementInput{
			AnnouncementID: id,
			SchoolID:       sess.SchoolID,
		}, orchestrators.PublishAnnouncementDeps{
			AnnouncementStore: stores.AnnouncementStore,
			OutboxStore:       stores.OutboxStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAnnouncementView(a))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Pinned  bool   `json:"pinned"`
		}
		if err := strictDecode(r, &body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := orchestrators.ExecuteEditAnnouncement(r.Context(), orchestrators.EditAnnouncementInput{
			AnnouncementID: id,
			SchoolID:       sess.SchoolID,
			Title:          body.Title,
			Content:        body.Content,
			Pinned:         body.Pinned,
		}, orchestrators.EditAnnouncementDeps{AnnouncementStore: stores.AnnouncementStore})
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAnnouncementView(a))

	case http.MethodDelete:
		a, err := stores.AnnouncementStore.GetByID(r.Context(), id)
		if err != nil {
			errorJSON(w, http.StatusNotFound, "announcement not found")
			return
		}
		if a.SchoolID != sess.SchoolID {
			errorJSON(w, http.StatusForbidden, "announcement belongs to a different school")
			return
		}
		if err := stores.AnnouncementStore.Delete(r.Context(), id); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
