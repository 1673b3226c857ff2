package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// TimeSlotConfigRequest describes the teaching day. Range checks happen when the grid is built so
// that malformed shapes surface as configuration errors.
type TimeSlotConfigRequest struct {
	StartTime              string `json:"startTime" validate:"required"`
	EndTime                string `json:"endTime" validate:"required"`
	SessionDurationMinutes int    `json:"sessionDurationMinutes"`
	ShortBreakMinutes      int    `json:"shortBreakMinutes"`
	LunchBreakStart        string `json:"lunchBreakStart"`
	LunchBreakMinutes      int    `json:"lunchBreakMinutes"`
}

// ToModel converts the request into the engine's configuration type.
func (r TimeSlotConfigRequest) ToModel() models.TimeSlotConfig {
	return models.TimeSlotConfig{
		StartTime:              r.StartTime,
		EndTime:                r.EndTime,
		SessionDurationMinutes: r.SessionDurationMinutes,
		ShortBreakMinutes:      r.ShortBreakMinutes,
		LunchBreakStart:        r.LunchBreakStart,
		LunchBreakMinutes:      r.LunchBreakMinutes,
	}
}

// GenerateTimetableRequest asks for a timetable proposal for one class of a department.
type GenerateTimetableRequest struct {
	InstituteID         string                 `json:"instituteId" validate:"required"`
	Class               string                 `json:"class" validate:"required"`
	Department          string                 `json:"department" validate:"required"`
	Semester            string                 `json:"semester" validate:"required"`
	AcademicYear        string                 `json:"academicYear"`
	Rooms               []string               `json:"rooms" validate:"omitempty,max=64,dive,required"`
	Days                []string               `json:"days" validate:"omitempty,max=7,dive,required"`
	Config              *TimeSlotConfigRequest `json:"config"`
	Strategy            string                 `json:"strategy" validate:"omitempty,oneof=deterministic random"`
	Seed                *int64                 `json:"seed"`
	ExclusiveClassSlots bool                   `json:"exclusiveClassSlots"`
}

// ConflictSummary counts conflicts for display.
type ConflictSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"bySeverity"`
	ByType     map[string]int `json:"byType"`
}

// GenerateTimetableResponse is the reviewable result of a generation run.
type GenerateTimetableResponse struct {
	ProposalID string                  `json:"proposalId"`
	ExpiresAt  time.Time               `json:"expiresAt"`
	Strategy   string                  `json:"strategy"`
	Grid       []string                `json:"grid"`
	Entries    []models.TimetableEntry `json:"entries"`
	Conflicts  []models.Conflict       `json:"conflicts"`
	Summary    ConflictSummary         `json:"summary"`
}

// TimetableEntryRequest is one entry supplied by the caller on accept or update.
type TimetableEntryRequest struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subjectId" validate:"required"`
	SubjectName string `json:"subjectName"`
	FacultyID   string `json:"facultyId"`
	FacultyName string `json:"facultyName"`
	Class       string `json:"class"`
	Department  string `json:"department"`
	Room        string `json:"room"`
	Day         string `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=lecture lab"`
}

// ToModel converts the request into a timetable entry.
func (r TimetableEntryRequest) ToModel() models.TimetableEntry {
	entryType := models.EntryType(r.Type)
	if entryType == "" {
		entryType = models.EntryTypeLecture
	}
	return models.TimetableEntry{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		SubjectName: r.SubjectName,
		FacultyID:   r.FacultyID,
		FacultyName: r.FacultyName,
		Class:       r.Class,
		Department:  r.Department,
		Room:        r.Room,
		Day:         r.Day,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Type:        entryType,
	}
}

// AcceptTimetableRequest persists a reviewed timetable.
type AcceptTimetableRequest struct {
	InstituteID  string                  `json:"instituteId" validate:"required"`
	Class        string                  `json:"class" validate:"required"`
	Department   string                  `json:"department" validate:"required"`
	Semester     string                  `json:"semester" validate:"required"`
	AcademicYear string                  `json:"academicYear"`
	Entries      []TimetableEntryRequest `json:"entries" validate:"required,min=1,dive"`
	Conflicts    []models.Conflict       `json:"conflicts"`
	GeneratedAt  *time.Time              `json:"generatedAt"`
}

// AcceptTimetableResponse identifies the stored version.
type AcceptTimetableResponse struct {
	TimetableID string   `json:"timetableId"`
	Version     int      `json:"version"`
	Superseded  []string `json:"superseded"`
}

// UpdateTimetableEntriesRequest replaces the entries of a stored timetable.
type UpdateTimetableEntriesRequest struct {
	Entries []TimetableEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// TimetableQuery filters timetable listings.
type TimetableQuery struct {
	InstituteID string `form:"instituteId" json:"instituteId"`
	Class       string `form:"class" json:"class"`
	Semester    string `form:"semester" json:"semester"`
	Status      string `form:"status" json:"status" validate:"omitempty,oneof=ACTIVE SUPERSEDED"`
	Page        int    `form:"page" json:"page"`
	PageSize    int    `form:"pageSize" json:"pageSize"`
}

// ConflictProbeQuery asks the session index whether a faculty member or room is busy.
type ConflictProbeQuery struct {
	InstituteID string `form:"instituteId" json:"instituteId" validate:"required"`
	FacultyID   string `form:"facultyId" json:"facultyId"`
	Room        string `form:"room" json:"room"`
	Day         string `form:"day" json:"day" validate:"required"`
	Start       string `form:"start" json:"start" validate:"required"`
	End         string `form:"end" json:"end" validate:"required"`
	Class       string `form:"class" json:"class"`
}

// IndexStatusResponse compares a timetable with its session index rows.
type IndexStatusResponse struct {
	TimetableID string `json:"timetableId"`
	Entries     int    `json:"entries"`
	IndexedRows int    `json:"indexedRows"`
	InSync      bool   `json:"inSync"`
}

// ExportLinkResponse is a signed, unauthenticated download link for a timetable export.
type ExportLinkResponse struct {
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expiresAt"`
}
