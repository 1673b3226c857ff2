package models

import "github.com/lib/pq"

// Faculty is a teaching staff member as read from the catalog.
type Faculty struct {
	ID          string         `db:"id" json:"id"`
	InstituteID string         `db:"institute_id" json:"institute_id"`
	Name        string         `db:"name" json:"name"`
	Department  string         `db:"department" json:"department"`
	Classes     pq.StringArray `db:"classes" json:"classes"`
	Subjects    pq.StringArray `db:"subjects" json:"subjects"`
}

// CanTeachClass reports whether the faculty member is authorized for the class section.
func (f Faculty) CanTeachClass(class string) bool {
	for _, c := range f.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Course is a catalog course; Credits drives the weekly session quota.
type Course struct {
	ID              string    `db:"id" json:"id"`
	InstituteID     string    `db:"institute_id" json:"institute_id"`
	Name            string    `db:"name" json:"name"`
	Code            string    `db:"code" json:"code"`
	Department      string    `db:"department" json:"department"`
	Credits         int       `db:"credits" json:"credits"`
	FacultyID       string    `db:"faculty_id" json:"faculty_id"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Type            EntryType `db:"session_type" json:"type"`
}

// WeeklyQuota is the number of sessions to place per week.
func (c Course) WeeklyQuota() int {
	if c.Credits < 1 {
		return 1
	}
	return c.Credits
}
