package incident

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/incident"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const incidentColumns = "id, school_id, cadet_id, category, severity, description, reported_by, reported_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new IncidentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Incident by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Incident, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+incidentColumns+" FROM incident WHERE id = ?", id)

	entity, err := scanIncident(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Incident{}, fmt.Errorf("incident not found: %w", err)
	}
	return entity, err
}

// Save persists an Incident to the database. Incidents are append-only
// in practice, but the upsert keeps Save idempotent on retry.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Incident) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incident (id, school_id, cadet_id, category, severity, description, reported_by, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   category=excluded.category,
		   severity=excluded.severity,
		   description=excluded.description`,
		entity.ID, entity.SchoolID, entity.CadetID, entity.Category,
		entity.Severity, entity.Description, entity.ReportedBy,
		entity.ReportedAt.Format(dateLayout))
	return err
}

// ListBySchool returns a school's incidents, newest first.
// PRE: schoolID is non-empty
// POST: Returns up to limit incidents; all when limit <= 0
func (s *SQLiteStore) ListBySchool(ctx context.Context, schoolID string, limit int) ([]domain.Incident, error) {
	query := "SELECT " + incidentColumns + " FROM incident WHERE school_id = ? ORDER BY reported_at DESC"
	args := []any{schoolID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.listIncidents(ctx, query, args...)
}

// ListByCadet returns one cadet's incidents, newest first.
// PRE: cadetID is non-empty
// POST: Returns matching incidents
func (s *SQLiteStore) ListByCadet(ctx context.Context, cadetID string) ([]domain.Incident, error) {
	query := "SELECT " + incidentColumns + " FROM incident WHERE cadet_id = ? ORDER BY reported_at DESC"
	return s.listIncidents(ctx, query, cadetID)
}

func (s *SQLiteStore) listIncidents(ctx context.Context, query string, args ...any) ([]domain.Incident, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Incident
	for rows.Next() {
		entity, err := scanIncident(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanIncident extracts an Incident from a row scanner function.
func scanIncident(scan func(dest ...interface{}) error) (domain.Incident, error) {
	var entity domain.Incident
	var reportedAt string
	err := scan(
		&entity.ID,
		&entity.SchoolID,
		&entity.CadetID,
		&entity.Category,
		&entity.Severity,
		&entity.Description,
		&entity.ReportedBy,
		&reportedAt,
	)
	if err != nil {
		return domain.Incident{}, err
	}
	entity.ReportedAt, _ = parseTime(reportedAt)
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
