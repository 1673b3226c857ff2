package models

import "time"

// EntryType distinguishes regular lectures from lab sessions.
type EntryType string

const (
	EntryTypeLecture EntryType = "lecture"
	EntryTypeLab     EntryType = "lab"
)

// TimetableStatus represents lifecycle phases for accepted timetables.
type TimetableStatus string

const (
	TimetableStatusActive     TimetableStatus = "ACTIVE"
	TimetableStatusSuperseded TimetableStatus = "SUPERSEDED"
)

// SchoolDays is the fixed Monday to Friday scan order used by the generator.
var SchoolDays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

var dayOrder = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
	"SATURDAY":  6,
	"SUNDAY":    7,
}

// DayOrder returns the ISO weekday number for an upper-case day name, or 0 when unknown.
func DayOrder(day string) int {
	return dayOrder[day]
}

// TimeSlotConfig describes the shape of a teaching day.
type TimeSlotConfig struct {
	StartTime              string `json:"start_time"`
	EndTime                string `json:"end_time"`
	SessionDurationMinutes int    `json:"session_duration_minutes"`
	ShortBreakMinutes      int    `json:"short_break_minutes"`
	LunchBreakStart        string `json:"lunch_break_start"`
	LunchBreakMinutes      int    `json:"lunch_break_minutes"`
}

// TimeSlot is one bookable interval of the daily grid.
type TimeSlot struct {
	Index        int `json:"index"`
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

// StartTime renders the slot start as HH:MM.
func (s TimeSlot) StartTime() string { return FormatClock(s.StartMinutes) }

// EndTime renders the slot end as HH:MM.
func (s TimeSlot) EndTime() string { return FormatClock(s.EndMinutes) }

// Label renders the slot as "HH:MM-HH:MM".
func (s TimeSlot) Label() string { return s.StartTime() + "-" + s.EndTime() }

// TimetableEntry is one placed session of a course.
type TimetableEntry struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	FacultyID   string    `json:"faculty_id"`
	FacultyName string    `json:"faculty_name"`
	Class       string    `json:"class"`
	Department  string    `json:"department"`
	Room        string    `json:"room"`
	Day         string    `json:"day"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Type        EntryType `json:"type"`
}

// Interval parses the entry's clock values into minutes after midnight.
func (e TimetableEntry) Interval() (int, int, error) {
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ConflictType classifies detected collisions.
type ConflictType string

const (
	ConflictTypeTeacher    ConflictType = "teacher"
	ConflictTypeRoom       ConflictType = "room"
	ConflictTypePreference ConflictType = "preference"
)

// ConflictSeverity ranks conflicts for display.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
	SeverityLow    ConflictSeverity = "low"
)

// Conflict is an advisory record; it never blocks generation.
type Conflict struct {
	Type        ConflictType     `json:"type"`
	Severity    ConflictSeverity `json:"severity"`
	Description string           `json:"description"`
	Resolved    bool             `json:"resolved"`
	SessionID   string           `json:"session_id,omitempty"`
}

// Timetable is the aggregate root owning its entries and conflicts by value.
type Timetable struct {
	ID           string           `db:"id" json:"id"`
	InstituteID  string           `db:"institute_id" json:"institute_id"`
	Class        string           `db:"class" json:"class"`
	Department   string           `db:"department" json:"department"`
	Semester     string           `db:"semester" json:"semester"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Version      int              `db:"version" json:"version"`
	Status       TimetableStatus  `db:"status" json:"status"`
	Entries      []TimetableEntry `db:"-" json:"entries"`
	Conflicts    []Conflict       `db:"-" json:"conflicts"`
	GeneratedAt  time.Time        `db:"generated_at" json:"generated_at"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	InstituteID string
	Class       string
	Semester    string
	Status      TimetableStatus
	Page        int
	PageSize    int
}
