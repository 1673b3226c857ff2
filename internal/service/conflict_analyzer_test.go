package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

func entryAt(id, class, faculty, room, day, start, end string) models.TimetableEntry {
	return models.TimetableEntry{
		ID:          id,
		SubjectID:   "subj-" + id,
		SubjectName: "Subject " + id,
		FacultyID:   faculty,
		Class:       class,
		Room:        room,
		Day:         day,
		StartTime:   start,
		EndTime:     end,
	}
}

func TestConflictAnalyzerCleanSet(t *testing.T) {
	entries := []models.TimetableEntry{
		entryAt("a", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00"),
		entryAt("b", "X-A", "f-2", "R2", "MONDAY", "09:00", "10:00"),
		entryAt("c", "X-A", "f-1", "R1", "MONDAY", "10:10", "11:10"),
	}
	assert.Empty(t, NewConflictAnalyzer().Analyze(entries, nil))
}

func TestConflictAnalyzerIntraSetReportsEveryPair(t *testing.T) {
	entries := []models.TimetableEntry{
		entryAt("a", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00"),
		entryAt("b", "X-A", "f-1", "R2", "MONDAY", "09:00", "10:00"),
		entryAt("c", "X-A", "f-1", "R2", "MONDAY", "09:00", "10:00"),
		entryAt("d", "X-A", "f-1", "R1", "TUESDAY", "09:00", "10:00"),
	}

	conflicts := NewConflictAnalyzer().Analyze(entries, nil)

	teacher := conflictsOf(conflicts, models.ConflictTypeTeacher)
	room := conflictsOf(conflicts, models.ConflictTypeRoom)
	assert.Len(t, teacher, 3)
	require.Len(t, room, 1)
	assert.Equal(t, "c", room[0].SessionID)
	for _, c := range conflicts {
		assert.Equal(t, models.SeverityHigh, c.Severity)
		assert.False(t, c.Resolved)
	}
}

func TestConflictAnalyzerHistoryUsesIntervalOverlap(t *testing.T) {
	entries := []models.TimetableEntry{
		entryAt("a", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00"),
	}
	history := []models.TimetableEntry{
		// different start label, overlapping interval
		entryAt("h1", "X-B", "f-1", "R9", "MONDAY", "09:30", "10:30"),
		// touching intervals do not overlap
		entryAt("h2", "X-B", "f-1", "R1", "MONDAY", "10:00", "11:00"),
		// same class is the timetable being replaced
		entryAt("h3", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00"),
		// other day
		entryAt("h4", "X-C", "f-1", "R1", "TUESDAY", "09:00", "10:00"),
		// room only
		entryAt("h5", "X-C", "f-7", "R1", "MONDAY", "08:30", "09:15"),
	}

	conflicts := NewConflictAnalyzer().Analyze(entries, history)

	teacher := conflictsOf(conflicts, models.ConflictTypeTeacher)
	room := conflictsOf(conflicts, models.ConflictTypeRoom)
	require.Len(t, teacher, 1)
	assert.Contains(t, teacher[0].Description, "X-B")
	assert.Equal(t, "a", teacher[0].SessionID)
	require.Len(t, room, 1)
	assert.Contains(t, room[0].Description, "X-C")
}

func TestConflictAnalyzerSkipsUnparsableHistory(t *testing.T) {
	entries := []models.TimetableEntry{entryAt("a", "X-A", "f-1", "R1", "MONDAY", "09:00", "10:00")}
	history := []models.TimetableEntry{entryAt("h1", "X-B", "f-1", "R1", "MONDAY", "nine", "ten")}
	assert.Empty(t, NewConflictAnalyzer().Analyze(entries, history))
}

func TestHistoryFromIndex(t *testing.T) {
	rows := []models.SessionIndexEntry{{
		ID: "tt-1-e-1", TimetableID: "tt-1", EntryID: "e-1", Class: "X-B", Day: "MONDAY",
		StartMinutes: 540, EndMinutes: 600, FacultyID: "f-1", Room: "R1",
	}}
	history := historyFromIndex(rows)
	require.Len(t, history, 1)
	assert.Equal(t, "09:00", history[0].StartTime)
	assert.Equal(t, "10:00", history[0].EndTime)
	assert.Equal(t, "e-1", history[0].ID)

	conflicts := NewConflictAnalyzer().Analyze([]models.TimetableEntry{entryAt("a", "X-A", "f-1", "", "MONDAY", "09:30", "10:30")}, history)
	assert.Len(t, conflicts, 1)
}
