package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
)

func TestBusinessMinutes(t *testing.T) {
	plain := NewSchedule(testHours(t), nil)
	tuesdayOff := NewSchedule(testHours(t), []domain.Holiday{holiday(2024, time.March, 5, false)})

	tests := []struct {
		name     string
		schedule *Schedule
		start    time.Time
		end      time.Time
		want     int
	}{
		{name: "empty", schedule: plain, start: at(4, 12, 0), end: at(4, 12, 0), want: 0},
		{name: "inside one day", schedule: plain, start: at(4, 10, 30), end: at(4, 12, 0), want: 90},
		{name: "spans closing", schedule: plain, start: at(4, 21, 0), end: at(4, 23, 0), want: 60},
		{name: "overnight", schedule: plain, start: at(4, 21, 0), end: at(5, 11, 0), want: 120},
		{name: "over weekend", schedule: plain, start: at(1, 20, 0), end: at(4, 11, 0), want: 180},
		{name: "two weeks", schedule: plain, start: at(4, 0, 0), end: at(18, 0, 0), want: 10 * 720},
		{name: "two weeks with holiday", schedule: tuesdayOff, start: at(4, 0, 0), end: at(18, 0, 0), want: 9 * 720},
		{name: "mid day to mid day", schedule: plain, start: at(4, 15, 0), end: at(7, 12, 0), want: 420 + 720*2 + 120},
		{name: "seconds truncated", schedule: plain, start: at(4, 10, 0).Add(30 * time.Second), end: at(4, 10, 2).Add(59 * time.Second), want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.schedule.BusinessMinutes(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBusinessMinutesRejectsInvertedRange(t *testing.T) {
	schedule := NewSchedule(testHours(t), nil)
	_, err := schedule.BusinessMinutes(at(4, 12, 0), at(4, 11, 59))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBusinessMinutesMonotonic(t *testing.T) {
	schedule := NewSchedule(testHours(t), []domain.Holiday{holiday(2024, time.March, 5, false)})
	start := at(1, 17, 23)

	prev := 0
	for end := start; end.Before(at(8, 0, 0)); end = end.Add(37 * time.Minute) {
		got, err := schedule.BusinessMinutes(start, end)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev, "end=%s", end)
		prev = got
	}
}

func TestBusinessMinutesBulkMatchesMinuteWalk(t *testing.T) {
	schedule := NewSchedule(testHours(t), []domain.Holiday{
		holiday(2024, time.March, 6, false),
		holiday(2010, time.March, 11, true),
	})

	spans := []struct{ start, end time.Time }{
		{at(1, 9, 17), at(4, 13, 41)},
		{at(2, 0, 0), at(12, 23, 59)},
		{at(4, 21, 59), at(9, 10, 1)},
		{time.Date(2024, time.March, 3, 20, 5, 0, 0, time.UTC), time.Date(2024, time.March, 14, 2, 0, 0, 0, time.UTC)},
	}
	for _, span := range spans {
		got, err := schedule.BusinessMinutes(span.start, span.end)
		require.NoError(t, err)
		want := schedule.countMinutes(span.start.In(kst), span.end.In(kst))
		assert.Equal(t, want, got, "span %s → %s", span.start, span.end)
	}
}
