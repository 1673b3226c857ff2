package models

import "time"

// SessionIndexEntry is the flattened, derived row mirroring one timetable entry.
type SessionIndexEntry struct {
	ID           string    `db:"id" json:"id"`
	TimetableID  string    `db:"timetable_id" json:"timetable_id"`
	EntryID      string    `db:"entry_id" json:"entry_id"`
	InstituteID  string    `db:"institute_id" json:"institute_id"`
	Department   string    `db:"department" json:"department"`
	Class        string    `db:"class" json:"class"`
	Day          string    `db:"day" json:"day"`
	StartMinutes int       `db:"start_minutes" json:"start_minutes"`
	EndMinutes   int       `db:"end_minutes" json:"end_minutes"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	Room         string    `db:"room" json:"room"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SessionIndexKey builds the idempotent row key for an entry of a timetable.
func SessionIndexKey(timetableID, entryID string) string {
	return timetableID + "-" + entryID
}

// SessionProbe asks whether a faculty member or room is busy in a window.
type SessionProbe struct {
	InstituteID  string
	FacultyID    string
	Room         string
	Day          string
	StartMinutes int
	EndMinutes   int
	Class        string
}

// Matches applies the conflict predicate of the session index to a row.
func (p SessionProbe) Matches(row SessionIndexEntry) bool {
	if row.InstituteID != p.InstituteID || row.Day != p.Day || row.Class == p.Class {
		return false
	}
	sameFaculty := p.FacultyID != "" && row.FacultyID == p.FacultyID
	sameRoom := p.Room != "" && row.Room == p.Room
	if !sameFaculty && !sameRoom {
		return false
	}
	return Overlaps(p.StartMinutes, p.EndMinutes, row.StartMinutes, row.EndMinutes)
}
