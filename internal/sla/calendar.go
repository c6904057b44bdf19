package sla

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

const (
	DefaultHolidayTTL      = 24 * time.Hour
	DefaultRefreshRetry    = 5 * time.Minute
	DefaultMaxHolidayStale = 72 * time.Hour
)

// HolidaySource loads the full holiday list.
type HolidaySource interface {
	ListHolidays(ctx context.Context) ([]domain.Holiday, error)
}

// CalendarOptions tunes the holiday cache.
type CalendarOptions struct {
	TTL           time.Duration
	RetryInterval time.Duration
	MaxStaleness  time.Duration
	Now           func() time.Time
	Logger        *zap.Logger
	// OnRefreshError is invoked after a failed reload, e.g. to count it.
	OnRefreshError func(error)
}

type holidayCache struct {
	items     []domain.Holiday
	schedule  *Schedule
	loadedAt  time.Time
	expiresAt time.Time
}

// Calendar caches the holiday list and hands out Schedules built from it.
// Reloads happen lazily and synchronously once the cache expires; a failed reload
// keeps serving the previous contents.
type Calendar struct {
	hours  BusinessHours
	source HolidaySource
	opts   CalendarOptions

	mu    sync.RWMutex
	cache holidayCache
}

// NewCalendar builds a calendar with an empty, already expired cache.
func NewCalendar(hours BusinessHours, source HolidaySource, opts CalendarOptions) *Calendar {
	if opts.TTL <= 0 {
		opts.TTL = DefaultHolidayTTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRefreshRetry
	}
	if opts.MaxStaleness <= 0 {
		opts.MaxStaleness = DefaultMaxHolidayStale
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Calendar{
		hours:  hours,
		source: source,
		opts:   opts,
		cache:  holidayCache{schedule: NewSchedule(hours, nil)},
	}
}

// Hours returns the configured business hours.
func (c *Calendar) Hours() BusinessHours {
	return c.hours
}

// Holidays returns a copy of the cached holiday list, reloading it first when stale.
func (c *Calendar) Holidays(ctx context.Context) []domain.Holiday {
	return append([]domain.Holiday(nil), c.current(ctx).items...)
}

// Schedule returns a pure Schedule over the cached holiday list, reloading it first when stale.
func (c *Calendar) Schedule(ctx context.Context) *Schedule {
	return c.current(ctx).schedule
}

// Invalidate forces the next access to reload.
func (c *Calendar) Invalidate() {
	c.mu.Lock()
	c.cache.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Calendar) current(ctx context.Context) holidayCache {
	now := c.opts.Now()

	c.mu.RLock()
	cache := c.cache
	c.mu.RUnlock()
	if !now.After(cache.expiresAt) {
		return cache
	}

	// Concurrent callers may reload at the same time; the last write wins.
	items, err := c.source.ListHolidays(ctx)
	if err != nil {
		return c.refreshFailed(now, err)
	}

	fresh := holidayCache{
		items:     items,
		schedule:  NewSchedule(c.hours, items),
		loadedAt:  now,
		expiresAt: now.Add(c.opts.TTL),
	}
	c.mu.Lock()
	c.cache = fresh
	c.mu.Unlock()

	c.opts.Logger.Debug("holiday cache refreshed", zap.Int("count", len(items)), zap.Time("expires_at", fresh.expiresAt))
	return fresh
}

func (c *Calendar) refreshFailed(now time.Time, err error) holidayCache {
	if c.opts.OnRefreshError != nil {
		c.opts.OnRefreshError(err)
	}

	c.mu.Lock()
	c.cache.expiresAt = now.Add(c.opts.RetryInterval)
	cache := c.cache
	c.mu.Unlock()

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("cached", len(cache.items)),
		zap.Time("retry_at", cache.expiresAt),
	}
	if cache.loadedAt.IsZero() || now.Sub(cache.loadedAt) > c.opts.MaxStaleness {
		c.opts.Logger.Error("holiday cache refresh failed; serving stale calendar beyond staleness limit", fields...)
	} else {
		c.opts.Logger.Warn("holiday cache refresh failed; serving stale calendar", fields...)
	}
	return cache
}
