package competition

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/competition"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const competitionColumns = "id, name, location, fee_cents, start_date, end_date"
const eventColumns = "id, competition_id, name, description, fee_cents, start_time, end_time, lunch_start, lunch_end, interval_minutes, max_participants"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new CompetitionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Competition by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Competition, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+competitionColumns+" FROM competition WHERE id = ?", id)

	entity, err := scanCompetition(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Competition{}, fmt.Errorf("competition not found: %w", err)
	}
	return entity, err
}

// Save persists a Competition to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Competition) error {
	var endDate interface{}
	if !entity.EndDate.IsZero() {
		endDate = entity.EndDate.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competition (id, name, location, fee_cents, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name,
		   location=excluded.location,
		   fee_cents=excluded.fee_cents,
		   start_date=excluded.start_date,
		   end_date=excluded.end_date`,
		entity.ID, entity.Name, entity.Location, entity.FeeCents,
		entity.StartDate.Format(dateLayout), endDate)
	return err
}

// SaveEvent persists an Event to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveEvent(ctx context.Context, entity domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competition_event (id, competition_id, name, description, fee_cents, start_time, end_time, lunch_start, lunch_end, interval_minutes, max_participants)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name,
		   description=excluded.description,
		   fee_cents=excluded.fee_cents,
		   start_time=excluded.start_time,
		   end_time=excluded.end_time,
		   lunch_start=excluded.lunch_start,
		   lunch_end=excluded.lunch_end,
		   interval_minutes=excluded.interval_minutes,
		   max_participants=excluded.max_participants`,
		entity.ID, entity.CompetitionID, entity.Name, entity.Description, entity.FeeCents,
		nullableTime(entity.StartTime), nullableTime(entity.EndTime),
		nullableTime(entity.LunchStart), nullableTime(entity.LunchEnd),
		entity.IntervalMinutes, entity.MaxParticipants)
	return err
}

// ListAll returns every competition, soonest first.
// PRE: none
// POST: Returns all competitions
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Competition, error) {
	return s.listCompetitions(ctx,
		"SELECT "+competitionColumns+" FROM competition ORDER BY start_date ASC")
}

// ListUpcoming returns competitions starting on or after from.
// PRE: from is a valid time
// POST: Returns matching competitions, soonest first
func (s *SQLiteStore) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Competition, error) {
	return s.listCompetitions(ctx,
		"SELECT "+competitionColumns+" FROM competition WHERE start_date >= ? ORDER BY start_date ASC",
		from.Format(dateLayout))
}

// ListEvents returns a competition's events in schedule order.
// PRE: competitionID is non-empty
// POST: Returns timed events by start time, then untimed events by name
func (s *SQLiteStore) ListEvents(ctx context.Context, competitionID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM competition_event WHERE competition_id = ?
		 ORDER BY start_time IS NULL, start_time ASC, name ASC`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		entity, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) listCompetitions(ctx context.Context, query string, args ...any) ([]domain.Competition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Competition
	for rows.Next() {
		entity, err := scanCompetition(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanCompetition extracts a Competition from a row scanner function.
func scanCompetition(scan func(dest ...interface{}) error) (domain.Competition, error) {
	var entity domain.Competition
	var startDate string
	var endDate sql.NullString
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Location,
		&entity.FeeCents,
		&startDate,
		&endDate,
	)
	if err != nil {
		return domain.Competition{}, err
	}
	entity.StartDate, _ = parseTime(startDate)
	if endDate.Valid && endDate.String != "" {
		entity.EndDate, _ = parseTime(endDate.String)
	}
	return entity, nil
}

// scanEvent extracts an Event from a row scanner function.
func scanEvent(scan func(dest ...interface{}) error) (domain.Event, error) {
	var entity domain.Event
	var startTime, endTime, lunchStart, lunchEnd sql.NullString
	err := scan(
		&entity.ID,
		&entity.CompetitionID,
		&entity.Name,
		&entity.Description,
		&entity.FeeCents,
		&startTime,
		&endTime,
		&lunchStart,
		&lunchEnd,
		&entity.IntervalMinutes,
		&entity.MaxParticipants,
	)
	if err != nil {
		return domain.Event{}, err
	}
	entity.StartTime = parseNullableTime(startTime)
	entity.EndTime = parseNullableTime(endTime)
	entity.LunchStart = parseNullableTime(lunchStart)
	entity.LunchEnd = parseNullableTime(lunchEnd)
	return entity, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := parseTime(s.String)
	return t
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
