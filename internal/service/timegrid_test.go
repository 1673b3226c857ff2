package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

func standardDay() models.TimeSlotConfig {
	return models.TimeSlotConfig{
		StartTime:              "09:00",
		EndTime:                "17:00",
		SessionDurationMinutes: 60,
		ShortBreakMinutes:      10,
		LunchBreakStart:        "12:00",
		LunchBreakMinutes:      60,
	}
}

func slotStarts(slots []models.TimeSlot) []string {
	starts := make([]string, 0, len(slots))
	for _, slot := range slots {
		starts = append(starts, slot.StartTime())
	}
	return starts
}

func TestBuildSlotsStandardDay(t *testing.T) {
	slots, err := BuildSlots(standardDay())
	require.NoError(t, err)

	// 11:20-12:20 would run into lunch and 16:20-17:20 past the end of the day.
	assert.Equal(t, []string{"09:00", "10:10", "13:00", "14:00", "15:10"}, slotStarts(slots))
	for i, slot := range slots {
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, 60, slot.EndMinutes-slot.StartMinutes)
	}
}

func TestBuildSlotsBreakSuppressedBeforeLunch(t *testing.T) {
	cfg := models.TimeSlotConfig{
		StartTime:              "08:00",
		EndTime:                "14:00",
		SessionDurationMinutes: 60,
		ShortBreakMinutes:      15,
		LunchBreakStart:        "11:30",
		LunchBreakMinutes:      30,
	}
	slots, err := BuildSlots(cfg)
	require.NoError(t, err)

	// 10:30-11:30 ends exactly at lunch, so no break is added and the next session starts at 12:00.
	// The 12:00 session opens the afternoon, so 13:00 follows without a break.
	assert.Equal(t, []string{"08:00", "09:15", "10:30", "12:00", "13:00"}, slotStarts(slots))
}

func TestBuildSlotsBreakSuppressedAfterLunch(t *testing.T) {
	slots, err := BuildSlots(standardDay())
	require.NoError(t, err)
	require.Len(t, slots, 5)

	// only the session that opens the afternoon runs straight into the next one
	assert.Equal(t, 10, slots[1].StartMinutes-slots[0].EndMinutes)
	assert.Equal(t, 0, slots[3].StartMinutes-slots[2].EndMinutes)
	assert.Equal(t, 10, slots[4].StartMinutes-slots[3].EndMinutes)

	cfg := standardDay()
	cfg.LunchBreakStart = "11:10"
	cfg.LunchBreakMinutes = 50
	slots, err = BuildSlots(cfg)
	require.NoError(t, err)
	// lunch 11:10-12:00 starts where 10:10-11:10 ends
	assert.Equal(t, []string{"09:00", "10:10", "12:00", "13:00", "14:10", "15:20"}, slotStarts(slots))
}

func TestBuildSlotsWithoutLunch(t *testing.T) {
	cfg := models.TimeSlotConfig{
		StartTime:              "07:00",
		EndTime:                "10:00",
		SessionDurationMinutes: 45,
		ShortBreakMinutes:      0,
	}
	slots, err := BuildSlots(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00", "07:45", "08:30", "09:15"}, slotStarts(slots))
	assert.Equal(t, 600, slots[len(slots)-1].EndMinutes)
}

func TestBuildSlotsSessionLongerThanDay(t *testing.T) {
	cfg := models.TimeSlotConfig{StartTime: "09:00", EndTime: "09:30", SessionDurationMinutes: 45}
	slots, err := BuildSlots(cfg)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBuildSlotsInvariants(t *testing.T) {
	configs := []models.TimeSlotConfig{
		standardDay(),
		{StartTime: "07:30", EndTime: "15:45", SessionDurationMinutes: 40, ShortBreakMinutes: 5, LunchBreakStart: "11:50", LunchBreakMinutes: 45},
		{StartTime: "08:00", EndTime: "18:00", SessionDurationMinutes: 90, ShortBreakMinutes: 15, LunchBreakStart: "12:30", LunchBreakMinutes: 60},
		{StartTime: "08:00", EndTime: "12:00", SessionDurationMinutes: 50, ShortBreakMinutes: 10, LunchBreakStart: "08:00", LunchBreakMinutes: 30},
		{StartTime: "08:00", EndTime: "12:00", SessionDurationMinutes: 50, ShortBreakMinutes: 10, LunchBreakStart: "12:00", LunchBreakMinutes: 30},
		{StartTime: "09:00", EndTime: "16:00", SessionDurationMinutes: 25, ShortBreakMinutes: 7, LunchBreakStart: "12:13", LunchBreakMinutes: 47},
	}

	for _, cfg := range configs {
		slots, err := BuildSlots(cfg)
		require.NoError(t, err)

		dayStart, _ := models.ParseClock(cfg.StartTime)
		dayEnd, _ := models.ParseClock(cfg.EndTime)
		lunchStart, _ := models.ParseClock(cfg.LunchBreakStart)
		lunchEnd := lunchStart + cfg.LunchBreakMinutes

		for i, slot := range slots {
			assert.GreaterOrEqual(t, slot.StartMinutes, dayStart)
			assert.LessOrEqual(t, slot.EndMinutes, dayEnd)
			if cfg.LunchBreakMinutes > 0 {
				assert.False(t, models.Overlaps(slot.StartMinutes, slot.EndMinutes, lunchStart, lunchEnd), "slot %s overlaps lunch", slot.Label())
			}
			if i > 0 {
				assert.GreaterOrEqual(t, slot.StartMinutes, slots[i-1].EndMinutes)
				assert.Greater(t, slot.StartMinutes, slots[i-1].StartMinutes)
			}
		}

		again, err := BuildSlots(cfg)
		require.NoError(t, err)
		assert.Equal(t, slots, again)
	}
}

func TestBuildSlotsRejectsMalformedConfig(t *testing.T) {
	cases := map[string]func(*models.TimeSlotConfig){
		"startTime":              func(c *models.TimeSlotConfig) { c.StartTime = "nine" },
		"endTime":                func(c *models.TimeSlotConfig) { c.EndTime = "" },
		"start after end":        func(c *models.TimeSlotConfig) { c.StartTime = "18:00" },
		"start equals end":       func(c *models.TimeSlotConfig) { c.EndTime = "09:00" },
		"zero duration":          func(c *models.TimeSlotConfig) { c.SessionDurationMinutes = 0 },
		"negative duration":      func(c *models.TimeSlotConfig) { c.SessionDurationMinutes = -30 },
		"negative break":         func(c *models.TimeSlotConfig) { c.ShortBreakMinutes = -1 },
		"negative lunch":         func(c *models.TimeSlotConfig) { c.LunchBreakMinutes = -5 },
		"lunch before day":       func(c *models.TimeSlotConfig) { c.LunchBreakStart = "08:00" },
		"lunch after day":        func(c *models.TimeSlotConfig) { c.LunchBreakStart = "17:30" },
		"lunch start unparsable": func(c *models.TimeSlotConfig) { c.LunchBreakStart = "noon" },
	}

	for name, mutate := range cases {
		cfg := standardDay()
		mutate(&cfg)
		slots, err := BuildSlots(cfg)
		require.Error(t, err, name)
		assert.Nil(t, slots, name)
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(err, &cfgErr), name)
	}
}

func TestBuildSlotsIgnoresLunchStartWhenNoLunch(t *testing.T) {
	cfg := standardDay()
	cfg.LunchBreakMinutes = 0
	cfg.LunchBreakStart = ""
	slots, err := BuildSlots(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:10", "11:20", "12:30", "13:40", "14:50"}, slotStarts(slots))
}
