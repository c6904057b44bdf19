package sla

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
)

var kst = time.FixedZone("KST", 9*60*60)

func testHours(t *testing.T) BusinessHours {
	t.Helper()
	hours, err := NewBusinessHours(kst, 10, 22, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	})
	require.NoError(t, err)
	return hours
}

// at builds a KST instant in March 2024. 2024-03-01 is a Friday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, kst)
}

func holiday(year int, month time.Month, day int, recurring bool) domain.Holiday {
	return domain.Holiday{
		Date:        time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Name:        "holiday",
		IsRecurring: recurring,
	}
}

type fakeHolidaySource struct {
	mu       sync.Mutex
	holidays []domain.Holiday
	err      error
	calls    int
}

func (f *fakeHolidaySource) ListHolidays(context.Context) ([]domain.Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Holiday(nil), f.holidays...), nil
}

func (f *fakeHolidaySource) set(holidays []domain.Holiday, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holidays = holidays
	f.err = err
}

func (f *fakeHolidaySource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func intPtr(v int) *int { return &v }
