package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// maxLookaheadDays bounds the search for the next business day.
const maxLookaheadDays = 366

type dateKey struct {
	year  int
	month time.Month
	day   int
}

type monthDay struct {
	month time.Month
	day   int
}

// Schedule is an immutable snapshot of business hours plus a holiday list.
// All of its methods are pure; obtain one from Calendar.Schedule or NewSchedule.
type Schedule struct {
	hours     BusinessHours
	exact     map[dateKey]struct{}
	recurring map[monthDay]struct{}
}

// NewSchedule indexes holidays for day-level lookups.
func NewSchedule(hours BusinessHours, holidays []domain.Holiday) *Schedule {
	s := &Schedule{
		hours:     hours,
		exact:     make(map[dateKey]struct{}),
		recurring: make(map[monthDay]struct{}),
	}
	for _, h := range holidays {
		// Holiday dates are calendar days; read the stored fields without zone conversion.
		y, m, d := h.Date.Date()
		if h.IsRecurring {
			s.recurring[monthDay{month: m, day: d}] = struct{}{}
			continue
		}
		s.exact[dateKey{year: y, month: m, day: d}] = struct{}{}
	}
	return s
}

// Hours returns the business hours this schedule was built with.
func (s *Schedule) Hours() BusinessHours {
	return s.hours
}

// IsHoliday reports whether the local calendar date of t is a holiday.
func (s *Schedule) IsHoliday(t time.Time) bool {
	y, m, d := t.In(s.hours.Location).Date()
	if _, ok := s.exact[dateKey{year: y, month: m, day: d}]; ok {
		return true
	}
	_, ok := s.recurring[monthDay{month: m, day: d}]
	return ok
}

// IsBusinessDay reports whether the local date of t is a business weekday and not a holiday.
func (s *Schedule) IsBusinessDay(t time.Time) bool {
	local := t.In(s.hours.Location)
	return s.hours.Weekdays[local.Weekday()] && !s.IsHoliday(local)
}

// IsBusinessHour reports whether t falls inside business hours.
func (s *Schedule) IsBusinessHour(t time.Time) bool {
	local := t.In(s.hours.Location)
	hour := local.Hour()
	if hour < s.hours.StartHour || hour >= s.hours.EndHour {
		return false
	}
	return s.IsBusinessDay(local)
}

// AdvanceToNextBusinessHour returns t unchanged when it is inside business hours.
// Any other instant moves to the opening hour of the next business day after t's
// local date, including instants before opening on a business day. The result is in
// the business location.
// If no business day exists within the lookahead window, the last candidate is returned
// and IsBusinessHour on it reports false.
func (s *Schedule) AdvanceToNextBusinessHour(t time.Time) time.Time {
	local := t.In(s.hours.Location)
	if s.IsBusinessHour(local) {
		return local
	}

	candidate := s.windowStart(startOfDay(local).AddDate(0, 0, 1))
	for i := 0; i < maxLookaheadDays && !s.IsBusinessDay(candidate); i++ {
		candidate = s.windowStart(candidate.AddDate(0, 0, 1))
	}
	return candidate
}

func (s *Schedule) windowStart(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.hours.StartHour, 0, 0, 0, s.hours.Location)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
