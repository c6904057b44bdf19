package sla

import (
	"fmt"
	"time"
)

// BusinessMinutes counts whole business minutes in [start, end). Both ends are truncated to the minute.
// An end before start is a caller bug and returns ErrInvalidRange.
//
// Spans longer than a day are split at local midnights: the partial first and last days are
// walked minute by minute and every whole day in between contributes MinutesPerDay when it is
// a business day.
func (s *Schedule) BusinessMinutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	current := start.In(s.hours.Location).Truncate(time.Minute)
	end = end.In(s.hours.Location).Truncate(time.Minute)

	if end.Sub(current) <= 24*time.Hour {
		return s.countMinutes(current, end), nil
	}

	nextMidnight := startOfDay(current).AddDate(0, 0, 1)
	minutes := s.countMinutes(current, nextMidnight)
	current = nextMidnight

	perDay := s.hours.MinutesPerDay()
	for {
		next := current.AddDate(0, 0, 1)
		if next.After(end) {
			break
		}
		if s.IsBusinessDay(current) {
			minutes += perDay
		}
		current = next
	}

	return minutes + s.countMinutes(current, end), nil
}

func (s *Schedule) countMinutes(from, to time.Time) int {
	count := 0
	for t := from; t.Before(to); t = t.Add(time.Minute) {
		if s.IsBusinessHour(t) {
			count++
		}
	}
	return count
}
