package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-service/internal/domain"
)

func TestScheduleIsBusinessHour(t *testing.T) {
	schedule := NewSchedule(testHours(t), []domain.Holiday{
		holiday(2024, time.March, 5, false),
		holiday(2019, time.March, 6, true),
		holiday(2023, time.March, 7, false),
	})

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "monday opening", at: at(4, 10, 0), want: true},
		{name: "monday before opening", at: at(4, 9, 59), want: false},
		{name: "monday last minute", at: at(4, 21, 59), want: true},
		{name: "monday closing", at: at(4, 22, 0), want: false},
		{name: "saturday noon", at: at(2, 12, 0), want: false},
		{name: "sunday noon", at: at(3, 12, 0), want: false},
		{name: "exact holiday", at: at(5, 12, 0), want: false},
		{name: "recurring holiday ignores year", at: at(6, 12, 0), want: false},
		{name: "non-recurring holiday from another year", at: at(7, 12, 0), want: true},
		{name: "utc converted to business zone", at: time.Date(2024, time.March, 4, 1, 0, 0, 0, time.UTC), want: true},
		{name: "utc evening is next local morning", at: time.Date(2024, time.March, 3, 23, 30, 0, 0, time.UTC), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.IsBusinessHour(tt.at))
		})
	}
}

func TestScheduleIsHolidayUsesLocalDate(t *testing.T) {
	schedule := NewSchedule(testHours(t), []domain.Holiday{holiday(2024, time.March, 5, false)})

	// 2024-03-04 16:00 UTC is 2024-03-05 01:00 in KST.
	assert.True(t, schedule.IsHoliday(time.Date(2024, time.March, 4, 16, 0, 0, 0, time.UTC)))
	assert.False(t, schedule.IsHoliday(time.Date(2024, time.March, 4, 14, 0, 0, 0, time.UTC)))
	assert.True(t, schedule.IsHoliday(at(5, 23, 59)))
}

func TestAdvanceToNextBusinessHour(t *testing.T) {
	plain := NewSchedule(testHours(t), nil)
	mondayOff := NewSchedule(testHours(t), []domain.Holiday{holiday(2024, time.March, 4, false)})

	tests := []struct {
		name     string
		schedule *Schedule
		from     time.Time
		want     time.Time
	}{
		{name: "inside hours unchanged", schedule: plain, from: at(4, 13, 27), want: at(4, 13, 27)},
		{name: "before opening next day", schedule: plain, from: at(4, 8, 0), want: at(5, 10, 0)},
		{name: "friday before opening skips weekend", schedule: plain, from: at(1, 9, 59), want: at(4, 10, 0)},
		{name: "after closing next day", schedule: plain, from: at(4, 22, 30), want: at(5, 10, 0)},
		{name: "friday night skips weekend", schedule: plain, from: at(1, 22, 0), want: at(4, 10, 0)},
		{name: "saturday noon", schedule: plain, from: at(2, 12, 0), want: at(4, 10, 0)},
		{name: "sunday early", schedule: plain, from: at(3, 6, 0), want: at(4, 10, 0)},
		{name: "weekend then holiday", schedule: mondayOff, from: at(1, 22, 0), want: at(5, 10, 0)},
		{name: "holiday morning", schedule: mondayOff, from: at(4, 9, 0), want: at(5, 10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.schedule.AdvanceToNextBusinessHour(tt.from)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			assert.True(t, tt.schedule.IsBusinessHour(got))
		})
	}
}

func TestAdvanceToNextBusinessHourGivesUpWhenEveryDayIsOff(t *testing.T) {
	hours := testHours(t)
	var all []domain.Holiday
	for day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC); day.Year() == 2000; day = day.AddDate(0, 0, 1) {
		all = append(all, domain.Holiday{Date: day, IsRecurring: true})
	}
	schedule := NewSchedule(hours, all)

	got := schedule.AdvanceToNextBusinessHour(at(4, 12, 0))
	assert.False(t, schedule.IsBusinessHour(got))
}
