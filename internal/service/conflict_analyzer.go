package service

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// ConflictAnalyzer classifies collisions within a candidate entry set and against history.
type ConflictAnalyzer struct{}

// NewConflictAnalyzer constructs the analyzer.
func NewConflictAnalyzer() *ConflictAnalyzer {
	return &ConflictAnalyzer{}
}

// Analyze returns one conflict per offending pair. The same physical collision may therefore be
// reported more than once; callers must not rely on ordering.
func (a *ConflictAnalyzer) Analyze(entries, history []models.TimetableEntry) []models.Conflict {
	conflicts := a.intraSet(entries)
	return append(conflicts, a.historical(entries, history)...)
}

func (a *ConflictAnalyzer) intraSet(entries []models.TimetableEntry) []models.Conflict {
	type startKey struct {
		day   string
		start string
	}
	groups := make(map[startKey][]models.TimetableEntry)
	order := make([]startKey, 0)
	for _, entry := range entries {
		key := startKey{day: entry.Day, start: entry.StartTime}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
	}

	conflicts := make([]models.Conflict, 0)
	for _, key := range order {
		group := groups[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				first, second := group[i], group[j]
				if first.FacultyID != "" && first.FacultyID == second.FacultyID {
					conflicts = append(conflicts, models.Conflict{
						Type:     models.ConflictTypeTeacher,
						Severity: models.SeverityHigh,
						Description: fmt.Sprintf("%s is booked for %s and %s on %s at %s",
							facultyLabel(second), first.SubjectName, second.SubjectName, key.day, key.start),
						SessionID: second.ID,
					})
				}
				if first.Room != "" && first.Room == second.Room {
					conflicts = append(conflicts, models.Conflict{
						Type:     models.ConflictTypeRoom,
						Severity: models.SeverityHigh,
						Description: fmt.Sprintf("room %s is booked for %s and %s on %s at %s",
							second.Room, first.SubjectName, second.SubjectName, key.day, key.start),
						SessionID: second.ID,
					})
				}
			}
		}
	}
	return conflicts
}

func (a *ConflictAnalyzer) historical(entries, history []models.TimetableEntry) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	if len(history) == 0 {
		return conflicts
	}

	for _, entry := range entries {
		start, end, err := entry.Interval()
		if err != nil {
			continue
		}
		for _, past := range history {
			if past.Day != entry.Day || past.Class == entry.Class {
				continue
			}
			pastStart, pastEnd, err := past.Interval()
			if err != nil || !models.Overlaps(start, end, pastStart, pastEnd) {
				continue
			}
			if entry.FacultyID != "" && entry.FacultyID == past.FacultyID {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictTypeTeacher,
					Severity: models.SeverityHigh,
					Description: fmt.Sprintf("%s already teaches class %s on %s %s-%s",
						facultyLabel(entry), past.Class, past.Day, past.StartTime, past.EndTime),
					SessionID: entry.ID,
				})
			}
			if entry.Room != "" && entry.Room == past.Room {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictTypeRoom,
					Severity: models.SeverityHigh,
					Description: fmt.Sprintf("room %s is used by class %s on %s %s-%s",
						entry.Room, past.Class, past.Day, past.StartTime, past.EndTime),
					SessionID: entry.ID,
				})
			}
		}
	}
	return conflicts
}

func facultyLabel(entry models.TimetableEntry) string {
	if entry.FacultyName != "" {
		return entry.FacultyName
	}
	return entry.FacultyID
}

// historyFromIndex turns session index rows into the entry shape the analyzer compares against.
func historyFromIndex(rows []models.SessionIndexEntry) []models.TimetableEntry {
	history := make([]models.TimetableEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, models.TimetableEntry{
			ID:         row.EntryID,
			FacultyID:  row.FacultyID,
			Class:      row.Class,
			Department: row.Department,
			Room:       row.Room,
			Day:        row.Day,
			StartTime:  models.FormatClock(row.StartMinutes),
			EndTime:    models.FormatClock(row.EndMinutes),
		})
	}
	return history
}
