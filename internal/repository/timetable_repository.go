package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

const timetableColumns = `id, institute_id, class, department, semester, academic_year, version, status, entries, conflicts, generated_at, created_at, updated_at`

// timetableRow carries the JSONB documents that hold a timetable's entries and conflicts.
type timetableRow struct {
	models.Timetable
	EntriesDoc   types.JSONText `db:"entries"`
	ConflictsDoc types.JSONText `db:"conflicts"`
}

func newTimetableRow(tt *models.Timetable) (*timetableRow, error) {
	entries := tt.Entries
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	conflicts := tt.Conflicts
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	entriesDoc, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode timetable entries: %w", err)
	}
	conflictsDoc, err := json.Marshal(conflicts)
	if err != nil {
		return nil, fmt.Errorf("encode timetable conflicts: %w", err)
	}
	return &timetableRow{Timetable: *tt, EntriesDoc: entriesDoc, ConflictsDoc: conflictsDoc}, nil
}

func (r timetableRow) toModel() (models.Timetable, error) {
	tt := r.Timetable
	tt.Entries = []models.TimetableEntry{}
	tt.Conflicts = []models.Conflict{}
	if len(r.EntriesDoc) > 0 {
		if err := r.EntriesDoc.Unmarshal(&tt.Entries); err != nil {
			return models.Timetable{}, fmt.Errorf("decode entries of timetable %s: %w", tt.ID, err)
		}
	}
	if len(r.ConflictsDoc) > 0 {
		if err := r.ConflictsDoc.Unmarshal(&tt.Conflicts); err != nil {
			return models.Timetable{}, fmt.Errorf("decode conflicts of timetable %s: %w", tt.ID, err)
		}
	}
	return tt, nil
}

// TimetableRepository persists accepted timetables as versioned documents.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts the timetable with the next version for its institute/class/semester.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error {
	if tt == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if tt.InstituteID == "" || tt.Class == "" || tt.Semester == "" {
		return fmt.Errorf("institute_id, class and semester are required")
	}
	if tt.ID == "" {
		tt.ID = uuid.NewString()
	}
	if tt.Status == "" {
		tt.Status = models.TimetableStatusActive
	}
	now := time.Now().UTC()
	if tt.GeneratedAt.IsZero() {
		tt.GeneratedAt = now
	}
	if tt.CreatedAt.IsZero() {
		tt.CreatedAt = now
	}
	tt.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE institute_id = $1 AND class = $2 AND semester = $3`
	if err := sqlx.GetContext(ctx, target, &tt.Version, nextVersionQuery, tt.InstituteID, tt.Class, tt.Semester); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	row, err := newTimetableRow(tt)
	if err != nil {
		return err
	}

	const insertQuery = `
INSERT INTO timetables (id, institute_id, class, department, semester, academic_year, version, status, entries, conflicts, generated_at, created_at, updated_at)
VALUES (:id, :institute_id, :class, :department, :semester, :academic_year, :version, :status, :entries, :conflicts, :generated_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, row); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// MarkSuperseded flips every other ACTIVE version of the institute/class/semester to SUPERSEDED and
// returns their identifiers.
func (r *TimetableRepository) MarkSuperseded(ctx context.Context, exec sqlx.ExtContext, instituteID, class, semester, keepID string) ([]string, error) {
	const query = `
UPDATE timetables SET status = $1, updated_at = $2
WHERE institute_id = $3 AND class = $4 AND semester = $5 AND status = $6 AND id <> $7
RETURNING id`
	var ids []string
	err := sqlx.SelectContext(ctx, r.exec(exec), &ids, query,
		models.TimetableStatusSuperseded, time.Now().UTC(), instituteID, class, semester, models.TimetableStatusActive, keepID)
	if err != nil {
		return nil, fmt.Errorf("supersede timetables: %w", err)
	}
	return ids, nil
}

// FindByID loads a timetable including its entries and conflicts.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE id = $1`, timetableColumns)
	var row timetableRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	tt, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// List returns timetables matching the filter, newest version first, along with the total count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	base := "FROM timetables WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.InstituteID != "" {
		conditions = append(conditions, fmt.Sprintf("institute_id = $%d", len(args)+1))
		args = append(args, filter.InstituteID)
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY class ASC, version DESC LIMIT %d OFFSET %d", timetableColumns, base, size, offset)
	var rows []timetableRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	timetables := make([]models.Timetable, 0, len(rows))
	for _, row := range rows {
		tt, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		timetables = append(timetables, tt)
	}
	return timetables, total, nil
}

// UpdateEntries replaces the entry and conflict documents of a timetable.
func (r *TimetableRepository) UpdateEntries(ctx context.Context, id string, entries []models.TimetableEntry, conflicts []models.Conflict) error {
	row, err := newTimetableRow(&models.Timetable{ID: id, Entries: entries, Conflicts: conflicts})
	if err != nil {
		return err
	}
	const query = `UPDATE timetables SET entries = $1, conflicts = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, row.EntriesDoc, row.ConflictsDoc, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListHistoricalEntries flattens the entries of every ACTIVE timetable of the institute. This is the
// full scan the session index exists to avoid.
func (r *TimetableRepository) ListHistoricalEntries(ctx context.Context, instituteID string) ([]models.TimetableEntry, error) {
	const query = `SELECT entries FROM timetables WHERE institute_id = $1 AND status = $2`
	var docs []types.JSONText
	if err := r.db.SelectContext(ctx, &docs, query, instituteID, models.TimetableStatusActive); err != nil {
		return nil, fmt.Errorf("list historical entries: %w", err)
	}

	entries := make([]models.TimetableEntry, 0)
	for _, doc := range docs {
		var batch []models.TimetableEntry
		if err := doc.Unmarshal(&batch); err != nil {
			return nil, fmt.Errorf("decode historical entries: %w", err)
		}
		entries = append(entries, batch...)
	}
	return entries, nil
}
