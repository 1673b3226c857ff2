package service

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// ConfigurationError reports a malformed day-shape configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid time slot config: %s %s", e.Field, e.Reason)
}

type dayShape struct {
	start      int
	end        int
	duration   int
	shortBreak int
	lunchStart int
	lunchEnd   int
}

func (d dayShape) inLunch(minute int) bool {
	return d.lunchEnd > d.lunchStart && minute >= d.lunchStart && minute < d.lunchEnd
}

func (d dayShape) hitsLunch(start, end int) bool {
	return d.lunchEnd > d.lunchStart && models.Overlaps(start, end, d.lunchStart, d.lunchEnd)
}

func (d dayShape) startsAtLunchEnd(minute int) bool {
	return d.lunchEnd > d.lunchStart && minute == d.lunchEnd
}

// BuildSlots turns a day-shape configuration into the ordered list of bookable slots.
//
// Sessions are never split or shrunk around lunch: one that would touch the lunch window is
// dropped and the walk resumes at the end of lunch. The short break is skipped next to lunch:
// when it would start or end inside lunch, and after the session that opens the afternoon.
func BuildSlots(cfg models.TimeSlotConfig) ([]models.TimeSlot, error) {
	shape, err := parseDayShape(cfg)
	if err != nil {
		return nil, err
	}

	slots := make([]models.TimeSlot, 0)
	current := shape.start
	for current+shape.duration <= shape.end {
		sessionEnd := current + shape.duration
		if shape.inLunch(current) || shape.hitsLunch(current, sessionEnd) {
			current = shape.lunchEnd
			continue
		}

		slots = append(slots, models.TimeSlot{
			Index:        len(slots),
			StartMinutes: current,
			EndMinutes:   sessionEnd,
		})
		opensAfternoon := shape.startsAtLunchEnd(current)
		current = sessionEnd

		if opensAfternoon || shape.inLunch(current) || shape.inLunch(current+shape.shortBreak) {
			continue
		}
		current += shape.shortBreak
	}
	return slots, nil
}

func parseDayShape(cfg models.TimeSlotConfig) (dayShape, error) {
	start, err := models.ParseClock(cfg.StartTime)
	if err != nil {
		return dayShape{}, &ConfigurationError{Field: "startTime", Reason: err.Error()}
	}
	end, err := models.ParseClock(cfg.EndTime)
	if err != nil {
		return dayShape{}, &ConfigurationError{Field: "endTime", Reason: err.Error()}
	}
	if start >= end {
		return dayShape{}, &ConfigurationError{Field: "startTime", Reason: "must be before endTime"}
	}
	if cfg.SessionDurationMinutes <= 0 {
		return dayShape{}, &ConfigurationError{Field: "sessionDurationMinutes", Reason: "must be greater than zero"}
	}
	if cfg.ShortBreakMinutes < 0 {
		return dayShape{}, &ConfigurationError{Field: "shortBreakMinutes", Reason: "must not be negative"}
	}
	if cfg.LunchBreakMinutes < 0 {
		return dayShape{}, &ConfigurationError{Field: "lunchBreakMinutes", Reason: "must not be negative"}
	}

	shape := dayShape{
		start:      start,
		end:        end,
		duration:   cfg.SessionDurationMinutes,
		shortBreak: cfg.ShortBreakMinutes,
	}
	if cfg.LunchBreakMinutes == 0 {
		return shape, nil
	}

	lunchStart, err := models.ParseClock(cfg.LunchBreakStart)
	if err != nil {
		return dayShape{}, &ConfigurationError{Field: "lunchBreakStart", Reason: err.Error()}
	}
	if lunchStart < start || lunchStart > end {
		return dayShape{}, &ConfigurationError{Field: "lunchBreakStart", Reason: "must fall within the day"}
	}
	shape.lunchStart = lunchStart
	shape.lunchEnd = lunchStart + cfg.LunchBreakMinutes
	return shape, nil
}

// slotsContiguous reports whether b directly follows a with at most a short break in between.
func slotsContiguous(a, b models.TimeSlot, shortBreak int) bool {
	return b.Index == a.Index+1 && b.StartMinutes-a.EndMinutes <= shortBreak
}
