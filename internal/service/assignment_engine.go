package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// Placement strategies understood by the assignment engine.
const (
	StrategyDeterministic = "deterministic"
	StrategyRandom        = "random"
)

// randomFillProbability is the chance the random filler books a given day/slot.
const randomFillProbability = 0.75

// AssignmentRequest carries everything one generation run needs; the engine performs no I/O.
type AssignmentRequest struct {
	InstituteID string
	Class       string
	Department  string
	Semester    string
	Courses     []models.Course
	Faculty     []models.Faculty
	Rooms       []string
	Grid        []models.TimeSlot
	Days        []string
	// ShortBreakMinutes is the largest gap between two grid slots that still counts as contiguous.
	ShortBreakMinutes int
	// ExclusiveClassSlots stops two courses of the class from sharing a day/slot.
	ExclusiveClassSlots bool
	Strategy            string
	Seed                int64
}

// AssignmentResult is the candidate entry set plus advisory conflicts.
type AssignmentResult struct {
	Entries   []models.TimetableEntry
	Conflicts []models.Conflict
}

// AssignmentEngine places course sessions onto the weekly grid.
type AssignmentEngine struct{}

// NewAssignmentEngine constructs the engine.
func NewAssignmentEngine() *AssignmentEngine {
	return &AssignmentEngine{}
}

// Generate places the request's courses. The deterministic quota strategy is used unless the
// request asks for the random filler, which is then seeded from req.Seed.
func (e *AssignmentEngine) Generate(req AssignmentRequest) AssignmentResult {
	if req.Strategy == StrategyRandom {
		return e.FillRandom(req, rand.New(rand.NewSource(req.Seed)))
	}

	run := newPlacementRun(req)
	for _, course := range run.courses {
		faculty, ok := run.resolveFaculty(course)
		if !ok {
			continue
		}

		quota := course.WeeklyQuota()
		span := run.span(course)
		placed := 0
		for _, day := range run.days {
			for i := 0; i+span <= len(req.Grid) && placed < quota; i++ {
				window := req.Grid[i : i+span]
				if !run.contiguous(window) {
					continue
				}
				if req.ExclusiveClassSlots && run.cells.classBusy(day, window) {
					continue
				}
				if run.cells.facultyBusy(day, window, faculty.ID) {
					run.conflict(models.ConflictTypeTeacher, models.SeverityMedium,
						fmt.Sprintf("%s is already teaching on %s at %s", faculty.Name, day, window[0].Label()))
					continue
				}
				room, ok := run.cells.freeRoom(day, window, req.Rooms)
				if !ok {
					run.conflict(models.ConflictTypeRoom, models.SeverityHigh,
						fmt.Sprintf("no free room for %s on %s at %s", course.Name, day, window[0].Label()))
					continue
				}
				run.place(course, faculty, room, day, window)
				placed++
			}
			if placed >= quota {
				break
			}
		}
		run.checkQuota(course, placed, quota)
	}
	return run.result()
}

// FillRandom is the randomized filler: every day/slot is booked with probability 0.75 by a course
// that still has quota left. A course longer than one slot takes the contiguous window starting
// there and the walk continues after it. When the course's own faculty cannot take the slot a random authorized
// member of the department is used instead. The caller owns rng, so a seeded source reproduces a run.
func (e *AssignmentEngine) FillRandom(req AssignmentRequest, rng *rand.Rand) AssignmentResult {
	run := newPlacementRun(req)
	remaining := make(map[string]int, len(run.courses))
	pending := make([]models.Course, 0, len(run.courses))
	for _, course := range run.courses {
		remaining[course.ID] = course.WeeklyQuota()
		pending = append(pending, course)
	}

	for _, day := range run.days {
		for i := 0; i < len(req.Grid); i++ {
			if len(pending) == 0 {
				break
			}
			if rng.Float64() >= randomFillProbability {
				continue
			}

			pick := rng.Intn(len(pending))
			course := pending[pick]
			span := run.span(course)
			if i+span > len(req.Grid) {
				continue
			}
			window := req.Grid[i : i+span]
			if !run.contiguous(window) {
				continue
			}
			if req.ExclusiveClassSlots && run.cells.classBusy(day, window) {
				continue
			}
			faculty, ok := run.randomFaculty(course, day, window, rng)
			if !ok {
				run.conflict(models.ConflictTypeTeacher, models.SeverityHigh,
					fmt.Sprintf("no available faculty for %s on %s at %s", course.Name, day, window[0].Label()))
				continue
			}
			room, ok := run.cells.freeRoom(day, window, req.Rooms)
			if !ok {
				run.conflict(models.ConflictTypeRoom, models.SeverityHigh,
					fmt.Sprintf("no free room for %s on %s at %s", course.Name, day, window[0].Label()))
				continue
			}
			run.place(course, faculty, room, day, window)
			i += span - 1

			remaining[course.ID]--
			if remaining[course.ID] <= 0 {
				pending = append(pending[:pick], pending[pick+1:]...)
			}
		}
	}

	for _, course := range run.courses {
		quota := course.WeeklyQuota()
		run.checkQuota(course, quota-remaining[course.ID], quota)
	}
	return run.result()
}

type placementRun struct {
	req       AssignmentRequest
	courses   []models.Course
	days      []string
	faculty   map[string]models.Faculty
	cells     *gridOccupancy
	entries   []models.TimetableEntry
	conflicts []models.Conflict
}

func newPlacementRun(req AssignmentRequest) *placementRun {
	courses := make([]models.Course, 0, len(req.Courses))
	for _, course := range req.Courses {
		if req.Department != "" && course.Department != "" && course.Department != req.Department {
			continue
		}
		courses = append(courses, course)
	}

	faculty := make(map[string]models.Faculty, len(req.Faculty))
	for _, member := range req.Faculty {
		faculty[member.ID] = member
	}

	return &placementRun{
		req:       req,
		courses:   courses,
		days:      normalizeWeekdays(req.Days),
		faculty:   faculty,
		cells:     newGridOccupancy(),
		entries:   make([]models.TimetableEntry, 0),
		conflicts: make([]models.Conflict, 0),
	}
}

func (r *placementRun) resolveFaculty(course models.Course) (models.Faculty, bool) {
	if course.FacultyID == "" {
		r.conflict(models.ConflictTypeTeacher, models.SeverityHigh,
			fmt.Sprintf("course %s has no assigned faculty", course.Name))
		return models.Faculty{}, false
	}
	faculty, ok := r.faculty[course.FacultyID]
	if !ok {
		r.conflict(models.ConflictTypeTeacher, models.SeverityHigh,
			fmt.Sprintf("faculty %s assigned to %s was not found", course.FacultyID, course.Name))
		return models.Faculty{}, false
	}
	if !faculty.CanTeachClass(r.req.Class) {
		r.conflict(models.ConflictTypeTeacher, models.SeverityHigh,
			fmt.Sprintf("%s is not authorized to teach class %s", faculty.Name, r.req.Class))
		return models.Faculty{}, false
	}
	return faculty, true
}

// randomFaculty prefers the course's own faculty and falls back to a random authorized member of
// the department who is free in the window.
func (r *placementRun) randomFaculty(course models.Course, day string, window []models.TimeSlot, rng *rand.Rand) (models.Faculty, bool) {
	if own, ok := r.faculty[course.FacultyID]; ok && own.CanTeachClass(r.req.Class) && !r.cells.facultyBusy(day, window, own.ID) {
		return own, true
	}

	candidates := make([]models.Faculty, 0)
	for _, member := range r.req.Faculty {
		if r.req.Department != "" && member.Department != r.req.Department {
			continue
		}
		if !member.CanTeachClass(r.req.Class) || r.cells.facultyBusy(day, window, member.ID) {
			continue
		}
		candidates = append(candidates, member)
	}
	if len(candidates) == 0 {
		return models.Faculty{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// span is the number of contiguous grid slots one session of the course occupies.
func (r *placementRun) span(course models.Course) int {
	if course.DurationMinutes <= 0 || len(r.req.Grid) == 0 {
		return 1
	}
	slotLength := r.req.Grid[0].EndMinutes - r.req.Grid[0].StartMinutes
	if slotLength <= 0 {
		return 1
	}
	span := (course.DurationMinutes + slotLength - 1) / slotLength
	if span < 1 {
		return 1
	}
	return span
}

func (r *placementRun) contiguous(window []models.TimeSlot) bool {
	for i := 1; i < len(window); i++ {
		if !slotsContiguous(window[i-1], window[i], r.req.ShortBreakMinutes) {
			return false
		}
	}
	return true
}

func (r *placementRun) place(course models.Course, faculty models.Faculty, room, day string, window []models.TimeSlot) {
	first := window[0]
	last := window[len(window)-1]

	entryType := course.Type
	if entryType == "" {
		entryType = models.EntryTypeLecture
	}
	department := course.Department
	if department == "" {
		department = r.req.Department
	}

	r.entries = append(r.entries, models.TimetableEntry{
		ID:          fmt.Sprintf("%s-%s-%d", course.ID, day, first.Index),
		SubjectID:   course.ID,
		SubjectName: course.Name,
		FacultyID:   faculty.ID,
		FacultyName: faculty.Name,
		Class:       r.req.Class,
		Department:  department,
		Room:        room,
		Day:         day,
		StartTime:   first.StartTime(),
		EndTime:     last.EndTime(),
		Type:        entryType,
	})
	r.cells.reserve(day, window, faculty.ID, room)
}

func (r *placementRun) checkQuota(course models.Course, placed, quota int) {
	if placed >= quota {
		return
	}
	r.conflict(models.ConflictTypePreference, models.SeverityMedium,
		fmt.Sprintf("%s placed %d/%d weekly sessions", course.Name, placed, quota))
}

func (r *placementRun) conflict(kind models.ConflictType, severity models.ConflictSeverity, description string) {
	r.conflicts = append(r.conflicts, models.Conflict{
		Type:        kind,
		Severity:    severity,
		Description: description,
	})
}

func (r *placementRun) result() AssignmentResult {
	return AssignmentResult{Entries: r.entries, Conflicts: r.conflicts}
}

type gridCell struct {
	day   string
	index int
}

// gridOccupancy tracks which faculty members and rooms are taken per day/slot during one run.
type gridOccupancy struct {
	faculty map[gridCell]map[string]bool
	rooms   map[gridCell]map[string]bool
	class   map[gridCell]bool
}

func newGridOccupancy() *gridOccupancy {
	return &gridOccupancy{
		faculty: make(map[gridCell]map[string]bool),
		rooms:   make(map[gridCell]map[string]bool),
		class:   make(map[gridCell]bool),
	}
}

func (g *gridOccupancy) facultyBusy(day string, window []models.TimeSlot, facultyID string) bool {
	for _, slot := range window {
		if g.faculty[gridCell{day, slot.Index}][facultyID] {
			return true
		}
	}
	return false
}

func (g *gridOccupancy) classBusy(day string, window []models.TimeSlot) bool {
	for _, slot := range window {
		if g.class[gridCell{day, slot.Index}] {
			return true
		}
	}
	return false
}

// freeRoom returns the first room free across the whole window. Without a room list rooms are not
// tracked and the session is placed unassigned.
func (g *gridOccupancy) freeRoom(day string, window []models.TimeSlot, rooms []string) (string, bool) {
	if len(rooms) == 0 {
		return "", true
	}
	for _, room := range rooms {
		taken := false
		for _, slot := range window {
			if g.rooms[gridCell{day, slot.Index}][room] {
				taken = true
				break
			}
		}
		if !taken {
			return room, true
		}
	}
	return "", false
}

func (g *gridOccupancy) reserve(day string, window []models.TimeSlot, facultyID, room string) {
	for _, slot := range window {
		cell := gridCell{day, slot.Index}
		if g.faculty[cell] == nil {
			g.faculty[cell] = make(map[string]bool)
		}
		g.faculty[cell][facultyID] = true
		if room != "" {
			if g.rooms[cell] == nil {
				g.rooms[cell] = make(map[string]bool)
			}
			g.rooms[cell][room] = true
		}
		g.class[cell] = true
	}
}

// normalizeWeekdays upper-cases, de-duplicates and orders the requested days, defaulting to Monday
// through Friday.
func normalizeWeekdays(days []string) []string {
	seen := make(map[string]bool, len(days))
	result := make([]string, 0, len(days))
	for _, day := range days {
		name := strings.ToUpper(strings.TrimSpace(day))
		if models.DayOrder(name) == 0 || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	if len(result) == 0 {
		return append([]string(nil), models.SchoolDays...)
	}
	sort.Slice(result, func(i, j int) bool {
		return models.DayOrder(result[i]) < models.DayOrder(result[j])
	})
	return result
}
