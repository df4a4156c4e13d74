package cadet

import (
	"context"
	"database/sql"
	"fmt"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/cadet"
)

const cadetColumns = "id, school_id, account_id, name, rank, let_level, flight, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new CadetStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Cadet by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Cadet, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+cadetColumns+" FROM cadet WHERE id = ?", id)

	entity, err := scanCadet(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Cadet{}, fmt.Errorf("cadet not found: %w", err)
	}
	return entity, err
}

// Save persists a Cadet to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Cadet) error {
	var accountID interface{}
	if entity.AccountID != "" {
		accountID = entity.AccountID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cadet (id, school_id, account_id, name, rank, let_level, flight, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   school_id=excluded.school_id,
		   account_id=excluded.account_id,
		   name=excluded.name,
		   rank=excluded.rank,
		   let_level=excluded.let_level,
		   flight=excluded.flight,
		   status=excluded.status`,
		entity.ID, entity.SchoolID, accountID, entity.Name,
		entity.Rank, entity.LetLevel, entity.Flight, entity.Status)
	return err
}

// Delete removes a Cadet from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cadet WHERE id = ?", id)
	return err
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE school_id = ?"
	args := []any{filter.SchoolID}

	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Flight != "" {
		where += " AND flight = ?"
		args = append(args, filter.Flight)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR rank LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "rank": "rank",
		"let_level": "let_level", "flight": "flight", "status": "status",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY name ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of cadets matching the filter.
// PRE: filter.SchoolID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cadet"+where, args...).Scan(&count)
	return count, err
}

// List retrieves a list of Cadets based on the filter.
// PRE: filter.SchoolID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Cadet, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + cadetColumns + " FROM cadet" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Cadet
	for rows.Next() {
		entity, err := scanCadet(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanCadet extracts a Cadet from a row scanner function.
func scanCadet(scan func(dest ...interface{}) error) (domain.Cadet, error) {
	var entity domain.Cadet
	var accountID sql.NullString
	err := scan(
		&entity.ID,
		&entity.SchoolID,
		&accountID,
		&entity.Name,
		&entity.Rank,
		&entity.LetLevel,
		&entity.Flight,
		&entity.Status,
	)
	if err != nil {
		return domain.Cadet{}, err
	}
	if accountID.Valid {
		entity.AccountID = accountID.String
	}
	return entity, nil
}
