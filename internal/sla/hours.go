// Package sla implements business-hours arithmetic for service level agreements:
// deadlines that only advance during business hours, elapsed business minutes,
// urgency tiers and the holiday calendar those calculations are made against.
package sla

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidBusinessHours is returned when a business hours configuration cannot describe any business time.
	ErrInvalidBusinessHours = errors.New("sla: invalid business hours")
	// ErrInvalidRange is returned when an interval ends before it starts.
	ErrInvalidRange = errors.New("sla: end before start")
	// ErrNoBusinessTime is returned when no business instant exists within the lookahead window.
	ErrNoBusinessTime = errors.New("sla: no business time within lookahead")
)

// BusinessHours describes when SLA clocks run. The daily window is [StartHour, EndHour) in Location.
type BusinessHours struct {
	Location  *time.Location
	StartHour int
	EndHour   int
	Weekdays  map[time.Weekday]bool
}

// NewBusinessHours validates and builds a BusinessHours value.
func NewBusinessHours(loc *time.Location, startHour, endHour int, weekdays []time.Weekday) (BusinessHours, error) {
	if loc == nil {
		return BusinessHours{}, fmt.Errorf("%w: location required", ErrInvalidBusinessHours)
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return BusinessHours{}, fmt.Errorf("%w: hours [%d,%d)", ErrInvalidBusinessHours, startHour, endHour)
	}
	if len(weekdays) == 0 {
		return BusinessHours{}, fmt.Errorf("%w: no business weekdays", ErrInvalidBusinessHours)
	}
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, day := range weekdays {
		if day < time.Sunday || day > time.Saturday {
			return BusinessHours{}, fmt.Errorf("%w: weekday %d", ErrInvalidBusinessHours, day)
		}
		set[day] = true
	}
	return BusinessHours{Location: loc, StartHour: startHour, EndHour: endHour, Weekdays: set}, nil
}

// MinutesPerDay is the number of business minutes in one full business day.
func (h BusinessHours) MinutesPerDay() int {
	return (h.EndHour - h.StartHour) * 60
}

// SortedWeekdays returns the business weekdays in Sunday-first order.
func (h BusinessHours) SortedWeekdays() []time.Weekday {
	days := make([]time.Weekday, 0, len(h.Weekdays))
	for day, ok := range h.Weekdays {
		if ok {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
