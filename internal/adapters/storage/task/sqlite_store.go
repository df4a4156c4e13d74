package task

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/task"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const taskColumns = "id, school_id, cadet_id, title, details, due_date, status, created_by, created_at, completed_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new TaskStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Task by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM task WHERE id = ?", id)

	entity, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Task{}, fmt.Errorf("task not found: %w", err)
	}
	return entity, err
}

// Save persists a Task to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Task) error {
	var dueDate, completedAt interface{}
	if !entity.DueDate.IsZero() {
		dueDate = entity.DueDate.Format(dateLayout)
	}
	if !entity.CompletedAt.IsZero() {
		completedAt = entity.CompletedAt.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task (id, school_id, cadet_id, title, details, due_date, status, created_by, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title,
		   details=excluded.details,
		   due_date=excluded.due_date,
		   status=excluded.status,
		   completed_at=excluded.completed_at`,
		entity.ID, entity.SchoolID, entity.CadetID, entity.Title, entity.Details,
		dueDate, entity.Status, entity.CreatedBy,
		entity.CreatedAt.Format(dateLayout), completedAt)
	return err
}

// ListBySchool returns a school's tasks, optionally filtered by status.
// PRE: schoolID is non-empty
// POST: Returns matching tasks ordered by creation time descending
func (s *SQLiteStore) ListBySchool(ctx context.Context, schoolID, status string) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM task WHERE school_id = ?"
	args := []any{schoolID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	return s.listTasks(ctx, query, args...)
}

// ListByCadet returns one cadet's tasks, optionally filtered by status.
// PRE: cadetID is non-empty
// POST: Returns matching tasks ordered by creation time descending
func (s *SQLiteStore) ListByCadet(ctx context.Context, cadetID, status string) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM task WHERE cadet_id = ?"
	args := []any{cadetID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	return s.listTasks(ctx, query, args...)
}

func (s *SQLiteStore) listTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Task
	for rows.Next() {
		entity, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanTask extracts a Task from a row scanner function.
func scanTask(scan func(dest ...interface{}) error) (domain.Task, error) {
	var entity domain.Task
	var createdAt string
	var dueDate, completedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.SchoolID,
		&entity.CadetID,
		&entity.Title,
		&entity.Details,
		&dueDate,
		&entity.Status,
		&entity.CreatedBy,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	if dueDate.Valid && dueDate.String != "" {
		entity.DueDate, _ = parseTime(dueDate.String)
	}
	if completedAt.Valid && completedAt.String != "" {
		entity.CompletedAt, _ = parseTime(completedAt.String)
	}
	return entity, nil
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
