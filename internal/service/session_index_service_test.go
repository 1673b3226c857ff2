package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
)

type memorySessionIndexRepo struct {
	mu        sync.Mutex
	rows      map[string]models.SessionIndexEntry
	upserts   int
	upsertErr error
	deleteErr error
	failOn    string
}

func newMemorySessionIndexRepo() *memorySessionIndexRepo {
	return &memorySessionIndexRepo{rows: make(map[string]models.SessionIndexEntry)}
}

func (m *memorySessionIndexRepo) Upsert(ctx context.Context, row *models.SessionIndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.upsertErr != nil && (m.failOn == "" || m.failOn == row.EntryID) {
		return m.upsertErr
	}
	m.rows[row.ID] = *row
	return nil
}

func (m *memorySessionIndexRepo) DeleteByTimetable(_ context.Context, timetableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for id, row := range m.rows {
		if row.TimetableID == timetableID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *memorySessionIndexRepo) FindConflicting(_ context.Context, probe models.SessionProbe) ([]models.SessionIndexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionIndexEntry
	for _, row := range m.rows {
		if probe.Matches(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memorySessionIndexRepo) CountByTimetable(_ context.Context, timetableID string) (int, error) {
	return m.countFor(timetableID), nil
}

func (m *memorySessionIndexRepo) countFor(timetableID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, row := range m.rows {
		if row.TimetableID == timetableID {
			count++
		}
	}
	return count
}

func indexedEntries() []models.TimetableEntry {
	return []models.TimetableEntry{
		entryAt("e-1", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00"),
		entryAt("e-2", "X-A", "f-2", "R2", "MONDAY", "10:10", "11:10"),
		entryAt("e-3", "X-A", "f-1", "R1", "TUESDAY", "13:00", "14:00"),
	}
}

func probeFor(entry models.TimetableEntry, class string) models.SessionProbe {
	start, end, _ := entry.Interval()
	return models.SessionProbe{
		InstituteID:  "inst-1",
		FacultyID:    entry.FacultyID,
		Room:         entry.Room,
		Day:          entry.Day,
		StartMinutes: start,
		EndMinutes:   end,
		Class:        class,
	}
}

func TestSessionIndexUpsertIsIdempotent(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	svc := NewSessionIndexService(repo, nil, 2)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, "tt-1", indexedEntries(), "inst-1", "science"))
	require.NoError(t, svc.Upsert(ctx, "tt-1", indexedEntries(), "inst-1", "science"))

	assert.Equal(t, 3, repo.countFor("tt-1"))
	assert.Equal(t, 6, repo.upserts)
	row, ok := repo.rows["tt-1-e-1"]
	require.True(t, ok)
	assert.Equal(t, 540, row.StartMinutes)
	assert.Equal(t, 600, row.EndMinutes)
	assert.Equal(t, "science", row.Department)
}

func TestSessionIndexUpsertThenRemoveLeavesNoRows(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	svc := NewSessionIndexService(repo, nil, 0)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, "tt-1", indexedEntries(), "inst-1", "science"))
	require.NoError(t, svc.Upsert(ctx, "tt-2", indexedEntries()[:1], "inst-1", "science"))
	require.NoError(t, svc.Remove(ctx, "tt-1"))

	assert.Zero(t, repo.countFor("tt-1"))
	remaining, err := svc.Count(ctx, "tt-2")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestSessionIndexRebuildThenFindConflicting(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	svc := NewSessionIndexService(repo, nil, 4)
	ctx := context.Background()

	stale := []models.TimetableEntry{entryAt("old", "X-A", "f-9", "R9", "FRIDAY", "09:00", "10:00")}
	require.NoError(t, svc.Upsert(ctx, "tt-1", stale, "inst-1", "science"))

	entries := indexedEntries()
	require.NoError(t, svc.Rebuild(ctx, "tt-1", entries, "inst-1", "science"))
	assert.Equal(t, 3, repo.countFor("tt-1"))
	_, staleLeft := repo.rows["tt-1-old"]
	assert.False(t, staleLeft)

	for _, entry := range entries {
		rows, err := svc.FindConflicting(ctx, probeFor(entry, entry.Class))
		require.NoError(t, err)
		for _, row := range rows {
			assert.NotEqual(t, entry.Class, row.Class)
		}
		assert.Empty(t, rows)
	}

	probe := probeFor(entries[0], "X-B")
	probe.StartMinutes += 30
	probe.EndMinutes += 30
	rows, err := svc.FindConflicting(ctx, probe)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tt-1-e-1", rows[0].ID)

	// back-to-back windows share no minute
	probe = probeFor(entries[0], "X-B")
	probe.StartMinutes, probe.EndMinutes = 600, 610
	rows, err = svc.FindConflicting(ctx, probe)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSessionIndexFindConflictingMatchesRoomOnly(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	svc := NewSessionIndexService(repo, nil, 1)
	ctx := context.Background()
	require.NoError(t, svc.Upsert(ctx, "tt-1", indexedEntries(), "inst-1", "science"))

	rows, err := svc.FindConflicting(ctx, models.SessionProbe{
		InstituteID: "inst-1", Room: "R2", Day: "MONDAY", StartMinutes: 600, EndMinutes: 660, Class: "X-C",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "e-2", rows[0].EntryID)

	rows, err = svc.FindConflicting(ctx, models.SessionProbe{
		InstituteID: "inst-2", Room: "R2", Day: "MONDAY", StartMinutes: 600, EndMinutes: 660, Class: "X-C",
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSessionIndexFindConflictingValidatesProbe(t *testing.T) {
	svc := NewSessionIndexService(newMemorySessionIndexRepo(), nil, 1)
	cases := []models.SessionProbe{
		{Day: "MONDAY", FacultyID: "f-1", StartMinutes: 1, EndMinutes: 2},
		{InstituteID: "inst-1", FacultyID: "f-1", StartMinutes: 1, EndMinutes: 2},
		{InstituteID: "inst-1", Day: "MONDAY", StartMinutes: 1, EndMinutes: 2},
		{InstituteID: "inst-1", Day: "MONDAY", FacultyID: "f-1", StartMinutes: 5, EndMinutes: 5},
	}
	for _, probe := range cases {
		_, err := svc.FindConflicting(context.Background(), probe)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestSessionIndexUpsertReportsWriteFailure(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	repo.upsertErr = errors.New("connection reset")
	repo.failOn = "e-2"
	svc := NewSessionIndexService(repo, nil, 1)

	err := svc.Upsert(context.Background(), "tt-1", indexedEntries(), "inst-1", "science")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.ErrorIs(t, err, repo.upsertErr)

	// the rows around the failed one are still written
	assert.Equal(t, 3, repo.upserts)
	assert.Equal(t, 2, repo.countFor("tt-1"))
	_, ok := repo.rows["tt-1-e-3"]
	assert.True(t, ok)
}

func TestSessionIndexUpsertRejectsBadClock(t *testing.T) {
	svc := NewSessionIndexService(newMemorySessionIndexRepo(), nil, 1)
	entries := []models.TimetableEntry{entryAt("e-1", "X-A", "f-1", "R1", "MONDAY", "9am", "10:00")}

	err := svc.Upsert(context.Background(), "tt-1", entries, "inst-1", "science")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionIndexRemoveFailure(t *testing.T) {
	repo := newMemorySessionIndexRepo()
	repo.deleteErr = errors.New("db down")
	svc := NewSessionIndexService(repo, nil, 1)

	err := svc.Rebuild(context.Background(), "tt-1", indexedEntries(), "inst-1", "science")
	require.Error(t, err)
	assert.Zero(t, repo.upserts)
}
