package budget

import (
	"context"
	"fmt"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/budget"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new BudgetStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends a ledger entry.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_entry (id, school_id, category, description, amount_cents, kind, entered_by, entered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.SchoolID, entity.Category, entity.Description,
		entity.AmountCents, entity.Kind, entity.EnteredBy,
		entity.EnteredAt.Format(dateLayout))
	return err
}

// ListBySchool returns a school's full ledger, newest first.
// PRE: schoolID is non-empty
// POST: Returns matching entries
func (s *SQLiteStore) ListBySchool(ctx context.Context, schoolID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, school_id, category, description, amount_cents, kind, entered_by, entered_at
		 FROM budget_entry WHERE school_id = ? ORDER BY entered_at DESC`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		var entity domain.Entry
		var enteredAt string
		if err := rows.Scan(
			&entity.ID,
			&entity.SchoolID,
			&entity.Category,
			&entity.Description,
			&entity.AmountCents,
			&entity.Kind,
			&entity.EnteredBy,
			&enteredAt,
		); err != nil {
			return nil, err
		}
		entity.EnteredAt, _ = parseTime(enteredAt)
		results = append(results, entity)
	}
	return results, rows.Err()
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
