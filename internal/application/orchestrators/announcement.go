package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"cadethq/internal/domain/announcement"
	"cadethq/internal/domain/outbox"
)

// AnnouncementStoreForOrchestrator defines the store interface needed by announcement orchestrators.
type AnnouncementStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Save(ctx context.Context, a announcement.Announcement) error
}

// OutboxStoreForOrchestrator defines the outbox enqueue interface.
type OutboxStoreForOrchestrator interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// --- Create Announcement ---

// CreateAnnouncementInput carries input for the create announcement orchestrator.
type CreateAnnouncementInput struct {
	SchoolID  string
	Title     string
	Content   string // Markdown
	Pinned    bool
	CreatedBy string // account ID
}

// CreateAnnouncementDeps holds dependencies for CreateAnnouncement.
type CreateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateAnnouncement creates a new announcement in draft status.
// PRE: Title, Content and SchoolID non-empty
// POST: Announcement created in draft status with generated ID
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (announcement.Announcement, error) {
	a := announcement.Announcement{
		ID:        deps.GenerateID(),
		SchoolID:  input.SchoolID,
		Title:     input.Title,
		Content:   input.Content,
		Status:    announcement.StatusDraft,
		Pinned:    input.Pinned,
		CreatedBy: input.CreatedBy,
		CreatedAt: deps.Now(),
	}

	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	slog.Info("announcement_event", "event", "announcement_created", "announcement_id", a.ID, "school_id", a.SchoolID, "created_by", input.CreatedBy)
	return a, nil
}

// --- Edit Announcement ---

// EditAnnouncementInput carries input for the edit announcement orchestrator.
// Title and Content are only updated when non-empty; Pinned is always
// overwritten.
type EditAnnouncementInput struct {
	AnnouncementID string
	SchoolID       string
	Title          string
	Content        string
	Pinned         bool
}

// EditAnnouncementDeps holds dependencies for EditAnnouncement.
type EditAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteEditAnnouncement updates fields on an existing announcement.
// PRE: AnnouncementID non-empty; announcement exists and belongs to the school
// POST: Announcement fields updated
func ExecuteEditAnnouncement(ctx context.Context, input EditAnnouncementInput, deps EditAnnouncementDeps) (announcement.Announcement, error) {
	if input.AnnouncementID == "" {
		return announcement.Announcement{}, errors.New("announcement ID is required")
	}

	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return announcement.Announcement{}, err
	}
	if input.SchoolID != "" && a.SchoolID != input.SchoolID {
		return announcement.Announcement{}, errors.New("announcement belongs to a different school")
	}

	if input.Title != "" {
		a.Title = input.Title
	}
	if input.Content != "" {
		a.Content = input.Content
	}
	a.Pinned = input.Pinned

	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	slog.Info("announcement_event", "event", "announcement_edited", "announcement_id", a.ID)
	return a, nil
}

// --- Publish Announcement ---

// AnnouncementEmailPayload is the outbox payload for the digest email
// sent when an announcement is published.
type AnnouncementEmailPayload struct {
	AnnouncementID string `json:"announcement_id"`
	SchoolID       string `json:"school_id"`
	Title          string `json:"title"`
	Content        string `json:"content"` // Markdown, rendered by the executor
}

// PublishAnnouncementInput carries input for the publish announcement orchestrator.
type PublishAnnouncementInput struct {
	AnnouncementID string
	SchoolID       string
}

// PublishAnnouncementDeps holds dependencies for PublishAnnouncement.
type PublishAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	OutboxStore       OutboxStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecutePublishAnnouncement publishes a draft announcement and queues
// the notification email through the outbox. Email delivery is
// asynchronous: a provider outage never blocks publishing.
// PRE: AnnouncementID non-empty; announcement exists and is in draft status
// POST: Announcement published; outbox entry queued for email delivery
func ExecutePublishAnnouncement(ctx context.Context, input PublishAnnouncementInput, deps PublishAnnouncementDeps) (announcement.Announcement, error) {
	if input.AnnouncementID == "" {
		return announcement.Announcement{}, errors.New("announcement ID is required")
	}

	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return announcement.Announcement{}, err
	}
	if input.SchoolID != "" && a.SchoolID != input.SchoolID {
		return announcement.Announcement{}, errors.New("announcement belongs to a different school")
	}

	if err := a.Publish(deps.Now()); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	payload, err := json.Marshal(AnnouncementEmailPayload{
		AnnouncementID: a.ID,
		SchoolID:       a.SchoolID,
		Title:          a.Title,
		Content:        a.Content,
	})
	if err != nil {
		return announcement.Announcement{}, err
	}

	entry := outbox.Entry{
		ID:          deps.GenerateID(),
		ActionType:  outbox.ActionTypeAnnouncementEmail,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   deps.Now(),
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		// Publishing already succeeded; the missed email is logged, not fatal.
		slog.Error("announcement_event", "event", "announcement_email_enqueue_failed", "announcement_id", a.ID, "error", err)
	}

	slog.Info("announcement_event", "event", "announcement_published", "announcement_id", a.ID, "school_id", a.SchoolID)
	return a, nil
}
