package announcement

import (
	"context"

	domain "cadethq/internal/domain/announcement"
)

// Store persists Announcement state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Save(ctx context.Context, value domain.Announcement) error
	Delete(ctx context.Context, id string) error
	// ListBySchool returns a school's announcements, pinned first then
	// newest first. publishedOnly restricts to published ones, which is
	// what cadet-facing pages use.
	ListBySchool(ctx context.Context, schoolID string, publishedOnly bool) ([]domain.Announcement, error)
}
