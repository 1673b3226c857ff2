package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
)

const defaultIndexWriteConcurrency = 8

type sessionIndexRepository interface {
	Upsert(ctx context.Context, row *models.SessionIndexEntry) error
	DeleteByTimetable(ctx context.Context, timetableID string) error
	FindConflicting(ctx context.Context, probe models.SessionProbe) ([]models.SessionIndexEntry, error)
	CountByTimetable(ctx context.Context, timetableID string) (int, error)
}

// SessionIndexService maintains the flattened per-entry mirror of accepted timetables. Rows are
// derived from the timetable record and can always be rebuilt from it.
type SessionIndexService struct {
	repo        sessionIndexRepository
	logger      *zap.Logger
	concurrency int
}

// NewSessionIndexService constructs the index service. concurrency bounds parallel row writes.
func NewSessionIndexService(repo sessionIndexRepository, logger *zap.Logger, concurrency int) *SessionIndexService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultIndexWriteConcurrency
	}
	return &SessionIndexService{repo: repo, logger: logger, concurrency: concurrency}
}

// Upsert writes one row per entry keyed by "{timetableID}-{entryID}". Writes are issued
// concurrently and independently: a failed row does not cancel its siblings, and the first failure
// is returned once all writes finish.
func (s *SessionIndexService) Upsert(ctx context.Context, timetableID string, entries []models.TimetableEntry, instituteID, department string) error {
	if timetableID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	rows, err := buildIndexRows(timetableID, entries, instituteID, department)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry")
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range rows {
		row := &rows[i]
		g.Go(func() error {
			if err := s.repo.Upsert(ctx, row); err != nil {
				return fmt.Errorf("upsert session index row %s: %w", row.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write session index")
	}

	s.logger.Debug("session index upserted", zap.String("timetable_id", timetableID), zap.Int("rows", len(rows)))
	return nil
}

// Rebuild drops every row of the timetable and writes the new entry set.
func (s *SessionIndexService) Rebuild(ctx context.Context, timetableID string, entries []models.TimetableEntry, instituteID, department string) error {
	if err := s.Remove(ctx, timetableID); err != nil {
		return err
	}
	return s.Upsert(ctx, timetableID, entries, instituteID, department)
}

// Remove deletes every row of the timetable.
func (s *SessionIndexService) Remove(ctx context.Context, timetableID string) error {
	if timetableID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	if err := s.repo.DeleteByTimetable(ctx, timetableID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session index")
	}
	return nil
}

// FindConflicting returns rows of other classes that book the probe's faculty or room in an
// overlapping window of the same day.
func (s *SessionIndexService) FindConflicting(ctx context.Context, probe models.SessionProbe) ([]models.SessionIndexEntry, error) {
	if probe.InstituteID == "" || probe.Day == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instituteId and day are required")
	}
	if probe.FacultyID == "" && probe.Room == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId or room is required")
	}
	if probe.StartMinutes >= probe.EndMinutes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start must be before end")
	}

	rows, err := s.repo.FindConflicting(ctx, probe)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query session index")
	}
	return rows, nil
}

// Count reports how many rows currently mirror the timetable.
func (s *SessionIndexService) Count(ctx context.Context, timetableID string) (int, error) {
	total, err := s.repo.CountByTimetable(ctx, timetableID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count session index rows")
	}
	return total, nil
}

func buildIndexRows(timetableID string, entries []models.TimetableEntry, instituteID, department string) ([]models.SessionIndexEntry, error) {
	rows := make([]models.SessionIndexEntry, 0, len(entries))
	for _, entry := range entries {
		start, end, err := entry.Interval()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		dept := department
		if dept == "" {
			dept = entry.Department
		}
		rows = append(rows, models.SessionIndexEntry{
			ID:           models.SessionIndexKey(timetableID, entry.ID),
			TimetableID:  timetableID,
			EntryID:      entry.ID,
			InstituteID:  instituteID,
			Department:   dept,
			Class:        entry.Class,
			Day:          entry.Day,
			StartMinutes: start,
			EndMinutes:   end,
			FacultyID:    entry.FacultyID,
			Room:         entry.Room,
		})
	}
	return rows, nil
}
