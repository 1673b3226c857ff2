package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

const sessionIndexColumns = `id, timetable_id, entry_id, institute_id, department, class, day, start_minutes, end_minutes, faculty_id, room, created_at`

// SessionIndexRepository stores the flattened per-entry rows used for overlap lookups.
type SessionIndexRepository struct {
	db *sqlx.DB
}

// NewSessionIndexRepository constructs the repository.
func NewSessionIndexRepository(db *sqlx.DB) *SessionIndexRepository {
	return &SessionIndexRepository{db: db}
}

// Upsert writes a single row keyed by its id; replaying it leaves one row.
func (r *SessionIndexRepository) Upsert(ctx context.Context, row *models.SessionIndexEntry) error {
	if row == nil || row.ID == "" {
		return fmt.Errorf("session index row id is required")
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO session_index (id, timetable_id, entry_id, institute_id, department, class, day, start_minutes, end_minutes, faculty_id, room, created_at)
VALUES (:id, :timetable_id, :entry_id, :institute_id, :department, :class, :day, :start_minutes, :end_minutes, :faculty_id, :room, :created_at)
ON CONFLICT (id) DO UPDATE
SET institute_id = EXCLUDED.institute_id,
    department = EXCLUDED.department,
    class = EXCLUDED.class,
    day = EXCLUDED.day,
    start_minutes = EXCLUDED.start_minutes,
    end_minutes = EXCLUDED.end_minutes,
    faculty_id = EXCLUDED.faculty_id,
    room = EXCLUDED.room`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("upsert session index row: %w", err)
	}
	return nil
}

// DeleteByTimetable removes every row belonging to the timetable. Deleting nothing is not an error.
func (r *SessionIndexRepository) DeleteByTimetable(ctx context.Context, timetableID string) error {
	const query = `DELETE FROM session_index WHERE timetable_id = $1`
	if _, err := r.db.ExecContext(ctx, query, timetableID); err != nil {
		return fmt.Errorf("delete session index rows: %w", err)
	}
	return nil
}

// FindConflicting returns rows of other classes on the same institute and day that share the
// probe's faculty or room and overlap its half-open window.
func (r *SessionIndexRepository) FindConflicting(ctx context.Context, probe models.SessionProbe) ([]models.SessionIndexEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_index
WHERE institute_id = $1 AND day = $2 AND class <> $3
AND (($4 <> '' AND faculty_id = $4) OR ($5 <> '' AND room = $5))
AND start_minutes < $7 AND $6 < end_minutes
ORDER BY start_minutes ASC, id ASC`, sessionIndexColumns)

	var rows []models.SessionIndexEntry
	if err := r.db.SelectContext(ctx, &rows, query,
		probe.InstituteID, probe.Day, probe.Class, probe.FacultyID, probe.Room, probe.StartMinutes, probe.EndMinutes); err != nil {
		return nil, fmt.Errorf("find conflicting sessions: %w", err)
	}
	return rows, nil
}

// CountByTimetable reports how many rows mirror the timetable.
func (r *SessionIndexRepository) CountByTimetable(ctx context.Context, timetableID string) (int, error) {
	const query = `SELECT COUNT(*) FROM session_index WHERE timetable_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, timetableID); err != nil {
		return 0, fmt.Errorf("count session index rows: %w", err)
	}
	return total, nil
}
