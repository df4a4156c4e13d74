package announcement

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 5000
)

// Announcement statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ValidStatuses contains all valid announcement statuses.
var ValidStatuses = []string{StatusDraft, StatusPublished}

// Domain errors
var (
	ErrEmptyTitle       = errors.New("announcement title cannot be empty")
	ErrEmptyContent     = errors.New("announcement content cannot be empty")
	ErrEmptySchoolID    = errors.New("school ID cannot be empty")
	ErrInvalidStatus    = errors.New("announcement status must be one of: draft, published")
	ErrAlreadyPublished = errors.New("announcement is already published")
)

// Announcement is a bulletin posted to a school's program page.
// Content supports Markdown formatting and is rendered to HTML on read.
type Announcement struct {
	ID          string
	SchoolID    string
	Title       string
	Content     string // Markdown content
	Status      string // draft, published
	Pinned      bool
	CreatedBy   string // AccountID of creator
	CreatedAt   time.Time
	PublishedAt time.Time // zero while draft
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return errors.New("announcement title cannot exceed 200 characters")
	}
	if a.Content == "" {
		return ErrEmptyContent
	}
	if len(a.Content) > MaxContentLength {
		return errors.New("announcement content cannot exceed 5000 characters")
	}
	if a.SchoolID == "" {
		return ErrEmptySchoolID
	}
	if !isValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Publish transitions a draft announcement to published.
// PRE: Announcement is in draft status
// POST: Status is published, PublishedAt is set
func (a *Announcement) Publish(now time.Time) error {
	if a.Status == StatusPublished {
		return ErrAlreadyPublished
	}
	a.Status = StatusPublished
	a.PublishedAt = now
	return nil
}

// IsPublished returns true if the announcement is visible to cadets.
// INVARIANT: Announcement fields are not mutated
func (a *Announcement) IsPublished() bool {
	return a.Status == StatusPublished
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
