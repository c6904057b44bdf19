package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessHoursValidation(t *testing.T) {
	weekdays := []time.Weekday{time.Monday}

	tests := []struct {
		name     string
		loc      *time.Location
		start    int
		end      int
		weekdays []time.Weekday
	}{
		{name: "nil location", loc: nil, start: 10, end: 22, weekdays: weekdays},
		{name: "empty window", loc: kst, start: 10, end: 10, weekdays: weekdays},
		{name: "end past midnight", loc: kst, start: 10, end: 25, weekdays: weekdays},
		{name: "negative start", loc: kst, start: -1, end: 22, weekdays: weekdays},
		{name: "no weekdays", loc: kst, start: 10, end: 22, weekdays: nil},
		{name: "bad weekday", loc: kst, start: 10, end: 22, weekdays: []time.Weekday{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBusinessHours(tt.loc, tt.start, tt.end, tt.weekdays)
			assert.ErrorIs(t, err, ErrInvalidBusinessHours)
		})
	}
}

func TestBusinessHoursMinutesPerDay(t *testing.T) {
	hours := testHours(t)
	assert.Equal(t, 720, hours.MinutesPerDay())
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, hours.SortedWeekdays())
}

func TestNewBusinessHoursFullDay(t *testing.T) {
	hours, err := NewBusinessHours(time.UTC, 0, 24, []time.Weekday{time.Saturday})
	require.NoError(t, err)
	assert.Equal(t, 1440, hours.MinutesPerDay())
}
