package school

import (
	"context"
	"database/sql"
	"fmt"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/school"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SchoolStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a School by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.School, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, district, timezone FROM school WHERE id = ?", id)

	var entity domain.School
	err := row.Scan(&entity.ID, &entity.Name, &entity.District, &entity.Timezone)
	if err == sql.ErrNoRows {
		return domain.School{}, fmt.Errorf("school not found: %w", err)
	}
	return entity, err
}

// Save persists a School to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.School) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO school (id, name, district, timezone) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, district=excluded.district, timezone=excluded.timezone`,
		entity.ID, entity.Name, entity.District, entity.Timezone)
	return err
}

// ListAll returns every school ordered by name.
// PRE: none
// POST: Returns all schools
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.School, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, district, timezone FROM school ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.School
	for rows.Next() {
		var entity domain.School
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.District, &entity.Timezone); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
