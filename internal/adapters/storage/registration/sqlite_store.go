package registration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cadethq/internal/adapters/storage"
	domain "cadethq/internal/domain/registration"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new RegistrationStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetBySchool returns the school's registration for a competition.
// PRE: competitionID and schoolID are non-empty
// POST: Returns the registration or an error if not found
func (s *SQLiteStore) GetBySchool(ctx context.Context, competitionID, schoolID string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, competition_id, school_id, total_fee_cents, status, paid, created_at
		 FROM registration WHERE competition_id = ? AND school_id = ?`,
		competitionID, schoolID)

	var entity domain.Registration
	var createdAt string
	var paid int
	err := row.Scan(
		&entity.ID,
		&entity.CompetitionID,
		&entity.SchoolID,
		&entity.TotalFeeCents,
		&entity.Status,
		&paid,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return domain.Registration{}, fmt.Errorf("registration not found: %w", err)
	}
	if err != nil {
		return domain.Registration{}, err
	}
	entity.Paid = paid != 0
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

// ListEventRegistrations returns the school's event entries for a
// competition.
// PRE: competitionID and schoolID are non-empty
// POST: Returns matching entries
func (s *SQLiteStore) ListEventRegistrations(ctx context.Context, competitionID, schoolID string) ([]domain.EventRegistration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competition_id, event_id, school_id FROM event_registration
		 WHERE competition_id = ? AND school_id = ?`,
		competitionID, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.EventRegistration
	for rows.Next() {
		var entity domain.EventRegistration
		if err := rows.Scan(&entity.ID, &entity.CompetitionID, &entity.EventID, &entity.SchoolID); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListSlotsBySchool returns the school's booked slots for a competition.
// PRE: competitionID and schoolID are non-empty
// POST: Returns matching slots ordered by time
func (s *SQLiteStore) ListSlotsBySchool(ctx context.Context, competitionID, schoolID string) ([]domain.ScheduleSlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competition_id, event_id, school_id, scheduled_time FROM schedule_slot
		 WHERE competition_id = ? AND school_id = ? ORDER BY scheduled_time ASC`,
		competitionID, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScheduleSlot
	for rows.Next() {
		var entity domain.ScheduleSlot
		var scheduledTime string
		if err := rows.Scan(&entity.ID, &entity.CompetitionID, &entity.EventID, &entity.SchoolID, &scheduledTime); err != nil {
			return nil, err
		}
		entity.ScheduledTime, _ = parseTime(scheduledTime)
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListOccupancy returns every booked slot in a competition joined with
// the owning school's name. One read serves the whole form render.
// PRE: competitionID is non-empty
// POST: Returns matching rows ordered by event then time
func (s *SQLiteStore) ListOccupancy(ctx context.Context, competitionID string) ([]domain.OccupancyRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ss.event_id, ss.school_id, sch.name, ss.scheduled_time
		 FROM schedule_slot ss
		 JOIN school sch ON sch.id = ss.school_id
		 WHERE ss.competition_id = ?
		 ORDER BY ss.event_id ASC, ss.scheduled_time ASC`,
		competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOccupancyRows(rows)
}

// ListSlotsByEvents returns booked slots for the named events only.
// Used by the committer's pre-write availability check and its
// post-conflict re-query.
// PRE: competitionID is non-empty
// POST: Returns matching rows; empty eventIDs yields no rows
func (s *SQLiteStore) ListSlotsByEvents(ctx context.Context, competitionID string, eventIDs []string) ([]domain.OccupancyRow, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(eventIDs)-1) + "?"
	args := make([]any, 0, len(eventIDs)+1)
	args = append(args, competitionID)
	for _, id := range eventIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ss.event_id, ss.school_id, sch.name, ss.scheduled_time
		 FROM schedule_slot ss
		 JOIN school sch ON sch.id = ss.school_id
		 WHERE ss.competition_id = ? AND ss.event_id IN (`+placeholders+`)
		 ORDER BY ss.event_id ASC, ss.scheduled_time ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOccupancyRows(rows)
}

// ReplaceForSchool atomically replaces the school's registration,
// entries and slots. Deletes and inserts run in one transaction, so a
// lost slot race leaves the prior registration untouched.
// PRE: reg, entries and slots have been validated and share the same
// competition and school
// POST: Prior rows replaced, or registration.ErrSlotTaken and no change
func (s *SQLiteStore) ReplaceForSchool(ctx context.Context, reg domain.Registration, entries []domain.EventRegistration, slots []domain.ScheduleSlot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteForSchoolTx(ctx, tx, reg.CompetitionID, reg.SchoolID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registration (id, competition_id, school_id, total_fee_cents, status, paid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.CompetitionID, reg.SchoolID, reg.TotalFeeCents,
		reg.Status, boolToInt(reg.Paid), reg.CreatedAt.Format(dateLayout))
	if err != nil {
		return err
	}

	for _, e := range entries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO event_registration (id, competition_id, event_id, school_id)
			 VALUES (?, ?, ?, ?)`,
			e.ID, e.CompetitionID, e.EventID, e.SchoolID)
		if err != nil {
			return err
		}
	}

	for _, slot := range slots {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedule_slot (id, competition_id, event_id, school_id, scheduled_time)
			 VALUES (?, ?, ?, ?, ?)`,
			slot.ID, slot.CompetitionID, slot.EventID, slot.SchoolID,
			slot.ScheduledTime.UTC().Format(time.RFC3339))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return domain.ErrSlotTaken
			}
			return err
		}
	}

	return tx.Commit()
}

// DeleteForSchool removes the school's registration, entries and slots
// for a competition.
// PRE: competitionID and schoolID are non-empty
// POST: All of the school's rows for the competition are removed
func (s *SQLiteStore) DeleteForSchool(ctx context.Context, competitionID, schoolID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteForSchoolTx(ctx, tx, competitionID, schoolID); err != nil {
		return err
	}

	return tx.Commit()
}

func deleteForSchoolTx(ctx context.Context, tx *sql.Tx, competitionID, schoolID string) error {
	for _, table := range []string{"schedule_slot", "event_registration", "registration"} {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE competition_id = ? AND school_id = ?",
			competitionID, schoolID)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanOccupancyRows(rows *sql.Rows) ([]domain.OccupancyRow, error) {
	var results []domain.OccupancyRow
	for rows.Next() {
		var r domain.OccupancyRow
		var scheduledTime string
		if err := rows.Scan(&r.EventID, &r.SchoolID, &r.SchoolName, &scheduledTime); err != nil {
			return nil, err
		}
		r.ScheduledTime, _ = parseTime(scheduledTime)
		results = append(results, r)
	}
	return results, rows.Err()
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
