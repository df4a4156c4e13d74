package announcement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/announcement"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const announcementColumns = "id, school_id, title, content, status, pinned, created_by, created_at, published_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new AnnouncementStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Announcement by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+announcementColumns+" FROM announcement WHERE id = ?", id)

	entity, err := scanAnnouncement(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Announcement{}, fmt.Errorf("announcement not found: %w", err)
	}
	return entity, err
}

// Save persists an Announcement to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Announcement) error {
	var publishedAt interface{}
	if !entity.PublishedAt.IsZero() {
		publishedAt = entity.PublishedAt.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcement (id, school_id, title, content, status, pinned, created_by, created_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title,
		   content=excluded.content,
		   status=excluded.status,
		   pinned=excluded.pinned,
		   published_at=excluded.published_at`,
		entity.ID, entity.SchoolID, entity.Title, entity.Content, entity.Status,
		boolToInt(entity.Pinned), entity.CreatedBy,
		entity.CreatedAt.Format(dateLayout), publishedAt)
	return err
}

// Delete removes an Announcement from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM announcement WHERE id = ?", id)
	return err
}

// ListBySchool returns a school's announcements, pinned first then
// newest first.
// PRE: schoolID is non-empty
// POST: Returns matching announcements
func (s *SQLiteStore) ListBySchool(ctx context.Context, schoolID string, publishedOnly bool) ([]domain.Announcement, error) {
	query := "SELECT " + announcementColumns + " FROM announcement WHERE school_id = ?"
	args := []any{schoolID}
	if publishedOnly {
		query += " AND status = ?"
		args = append(args, domain.StatusPublished)
	}
	query += " ORDER BY pinned DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Announcement
	for rows.Next() {
		entity, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanAnnouncement extracts an Announcement from a row scanner function.
func scanAnnouncement(scan func(dest ...interface{}) error) (domain.Announcement, error) {
	var entity domain.Announcement
	var createdAt string
	var publishedAt sql.NullString
	var pinned int
	err := scan(
		&entity.ID,
		&entity.SchoolID,
		&entity.Title,
		&entity.Content,
		&entity.Status,
		&pinned,
		&entity.CreatedBy,
		&createdAt,
		&publishedAt,
	)
	if err != nil {
		return domain.Announcement{}, err
	}
	entity.Pinned = pinned != 0
	entity.CreatedAt, _ = parseTime(createdAt)
	if publishedAt.Valid && publishedAt.String != "" {
		entity.PublishedAt, _ = parseTime(publishedAt.String)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
