package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type slaFixture struct {
	service *SLAService
	tickets *memoryTickets
	history *memoryHistory
	clock   *testClock
}

func newSLAFixture(t *testing.T, tickets ...domain.Ticket) *slaFixture {
	t.Helper()
	repo := newMemoryTickets(tickets...)
	history := &memoryHistory{}
	clock := &testClock{now: utcAt(4, 10, 0)}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	NewHistoryService(dispatcher, history, zap.NewNop()).RegisterHandlers()
	svc := NewSLAService(SLADependencies{
		TicketRepo:  repo,
		HistoryRepo: history,
		Calendar:    newTestCalendar(t),
		Dispatcher:  dispatcher,
		Now:         clock.Now,
	})
	return &slaFixture{service: svc, tickets: repo, history: history, clock: clock}
}

func openTicket(id string, priority domain.TicketPriority, createdAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:               id,
		ExternalKey:      "TCK-" + id,
		Title:            "printer on fire",
		Status:           domain.TicketStatusOpen,
		Priority:         priority,
		CreatedAt:        createdAt,
		ResponseStatus:   domain.SLAStatusOnTrack,
		ResolutionStatus: domain.SLAStatusOnTrack,
	}
}

func TestGetSLAHours(t *testing.T) {
	f := newSLAFixture(t)
	require.NotNil(t, f.service.GetSLAHours(domain.TicketPriorityUrgent, domain.SLAKindResponse))
	assert.Equal(t, 1, *f.service.GetSLAHours(domain.TicketPriorityUrgent, domain.SLAKindResponse))
	assert.Equal(t, 2160, *f.service.GetSLAHours(domain.TicketPriorityLow, domain.SLAKindResolution))
	assert.Nil(t, f.service.GetSLAHours(domain.TicketPriorityFeature, domain.SLAKindResolution))
	assert.Equal(t, 8, *f.service.GetSLAHours("bogus", domain.SLAKindResponse))
}

func TestInitializeDeadlines(t *testing.T) {
	f := newSLAFixture(t,
		openTicket("t1", domain.TicketPriorityUrgent, utcAt(4, 10, 0)),
		openTicket("t2", domain.TicketPriorityFeature, utcAt(4, 10, 0)),
	)
	ctx := context.Background()

	ticket, err := f.service.InitializeDeadlines(ctx, "staff-1", "t1")
	require.NoError(t, err)
	require.NotNil(t, ticket.ResponseDeadline)
	require.NotNil(t, ticket.ResolutionDeadline)
	assert.True(t, utcAt(4, 11, 0).Equal(*ticket.ResponseDeadline))
	assert.True(t, utcAt(4, 14, 0).Equal(*ticket.ResolutionDeadline))

	feature, err := f.service.InitializeDeadlines(ctx, "staff-1", "t2")
	require.NoError(t, err)
	require.NotNil(t, feature.ResponseDeadline)
	assert.True(t, utcAt(7, 22, 0).Equal(*feature.ResponseDeadline))
	assert.Nil(t, feature.ResolutionDeadline)

	entries := f.history.all()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeTypeSLADeadlines, entries[0].ChangeType)
	assert.Equal(t, domain.ChangedByStaff, entries[0].ChangedByType)
	require.NotNil(t, entries[0].ChangedByID)
	assert.Equal(t, "staff-1", *entries[0].ChangedByID)
	assert.Equal(t, "2024-03-04T11:00:00Z", entries[0].NewValue["response_deadline"])

	_, err = f.service.InitializeDeadlines(ctx, "staff-1", "t1")
	require.NoError(t, err)
	assert.Len(t, f.history.all(), 2, "recomputing identical deadlines records nothing")
}

func TestInitializeDeadlinesUnknownTicket(t *testing.T) {
	f := newSLAFixture(t)
	_, err := f.service.InitializeDeadlines(context.Background(), "", "missing")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestPauseResumeShiftsDeadlinesByPausedBusinessTime(t *testing.T) {
	ticket := openTicket("t1", domain.TicketPriorityMedium, utcAt(4, 10, 0))
	ticket.ResponseDeadline = timePtr(utcAt(4, 18, 0))
	ticket.ResolutionDeadline = timePtr(utcAt(11, 22, 0))
	f := newSLAFixture(t, ticket)
	ctx := context.Background()

	f.clock.now = utcAt(4, 12, 0)
	paused, err := f.service.PauseSLA(ctx, "staff-1", "t1", "  waiting on customer ")
	require.NoError(t, err)
	require.True(t, paused.IsPaused())
	assert.Equal(t, "waiting on customer", *paused.PausedReason)

	f.clock.now = utcAt(4, 13, 30)
	resumed, err := f.service.ResumeSLA(ctx, "staff-1", "t1")
	require.NoError(t, err)
	assert.False(t, resumed.IsPaused())
	assert.Nil(t, resumed.PausedReason)
	assert.True(t, utcAt(4, 19, 30).Equal(*resumed.ResponseDeadline))
	assert.True(t, utcAt(11, 23, 30).Equal(*resumed.ResolutionDeadline))

	stored := f.tickets.get("t1")
	assert.Nil(t, stored.PausedAt)
	assert.True(t, utcAt(4, 19, 30).Equal(*stored.ResponseDeadline))

	entries := f.history.all()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeTypeSLAPaused, entries[0].ChangeType)
	assert.Equal(t, domain.ChangeTypeSLAResumed, entries[1].ChangeType)
	assert.Equal(t, 90, entries[1].NewValue["paused_minutes"])
}

func TestResumeAfterWeekendPauseCountsBusinessMinutesOnly(t *testing.T) {
	ticket := openTicket("t1", domain.TicketPriorityHigh, utcAt(1, 20, 0))
	ticket.ResponseDeadline = timePtr(utcAt(4, 12, 0))
	ticket.PausedAt = timePtr(utcAt(1, 21, 0))
	ticket.PausedReason = strPtr("weekend")
	f := newSLAFixture(t, ticket)

	f.clock.now = utcAt(4, 11, 0)
	resumed, err := f.service.ResumeSLA(context.Background(), "", "t1")
	require.NoError(t, err)
	assert.True(t, utcAt(4, 14, 0).Equal(*resumed.ResponseDeadline))
	assert.Nil(t, resumed.ResolutionDeadline)

	entries := f.history.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangedBySystem, entries[0].ChangedByType)
}

func TestResumeWhenNotPausedIsNoop(t *testing.T) {
	ticket := openTicket("t1", domain.TicketPriorityUrgent, utcAt(4, 10, 0))
	ticket.ResponseDeadline = timePtr(utcAt(4, 11, 0))
	f := newSLAFixture(t, ticket)

	resumed, err := f.service.ResumeSLA(context.Background(), "staff-1", "t1")
	require.NoError(t, err)
	assert.True(t, utcAt(4, 11, 0).Equal(*resumed.ResponseDeadline))
	assert.Zero(t, f.tickets.writes)
	assert.Empty(t, f.history.all())
}

func TestRepauseRestartsPause(t *testing.T) {
	ticket := openTicket("t1", domain.TicketPriorityUrgent, utcAt(4, 10, 0))
	ticket.ResponseDeadline = timePtr(utcAt(4, 11, 0))
	f := newSLAFixture(t, ticket)
	ctx := context.Background()

	f.clock.now = utcAt(4, 10, 10)
	_, err := f.service.PauseSLA(ctx, "staff-1", "t1", "first")
	require.NoError(t, err)
	f.clock.now = utcAt(4, 10, 40)
	_, err = f.service.PauseSLA(ctx, "staff-1", "t1", "second")
	require.NoError(t, err)

	f.clock.now = utcAt(4, 10, 50)
	resumed, err := f.service.ResumeSLA(ctx, "staff-1", "t1")
	require.NoError(t, err)
	assert.True(t, utcAt(4, 11, 10).Equal(*resumed.ResponseDeadline), "only the second pause is credited")
}

func TestEvaluate(t *testing.T) {
	ticket := openTicket("t1", domain.TicketPriorityUrgent, utcAt(4, 10, 0))
	ticket.ResponseDeadline = timePtr(utcAt(4, 11, 0))
	ticket.ResolutionDeadline = timePtr(utcAt(4, 14, 0))
	f := newSLAFixture(t, ticket)
	f.clock.now = utcAt(4, 10, 50)

	evaluation, err := f.service.Evaluate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusCritical, evaluation.Response.Status)
	assert.Equal(t, domain.SLAStatusOnTrack, evaluation.Response.StoredStatus)
	assert.Equal(t, "10 minutes remaining", evaluation.Response.Remaining)
	assert.Equal(t, domain.SLAStatusOnTrack, evaluation.Resolution.Status)
	assert.Zero(t, evaluation.PausedMinutes)
	assert.Zero(t, f.tickets.writes, "evaluation never persists")

	f.clock.now = utcAt(4, 12, 30)
	evaluation, err = f.service.Evaluate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusBreached, evaluation.Response.Status)
	assert.Contains(t, evaluation.Response.Remaining, "overdue")
	assert.Equal(t, domain.SLAStatusApproaching, evaluation.Resolution.Status)
}

func TestPreviewDeadlinesAndBusinessMinutes(t *testing.T) {
	f := newSLAFixture(t)
	ctx := context.Background()

	preview, err := f.service.PreviewDeadlines(ctx, utcAt(1, 21, 0), domain.TicketPriorityHigh)
	require.NoError(t, err)
	assert.True(t, utcAt(4, 13, 0).Equal(*preview.ResponseDeadline))

	minutes, err := f.service.BusinessMinutes(ctx, utcAt(1, 21, 0), utcAt(4, 11, 0))
	require.NoError(t, err)
	assert.Equal(t, 120, minutes)

	_, err = f.service.BusinessMinutes(ctx, utcAt(4, 11, 0), utcAt(4, 10, 0))
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.ErrorIs(t, err, sla.ErrInvalidRange)
}

func TestHistoryRequiresTicket(t *testing.T) {
	f := newSLAFixture(t, openTicket("t1", domain.TicketPriorityUrgent, utcAt(4, 10, 0)))
	ctx := context.Background()

	_, err := f.service.InitializeDeadlines(ctx, "staff-1", "t1")
	require.NoError(t, err)

	entries, err := f.service.History(ctx, "t1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = f.service.History(ctx, "missing", 10, 0)
	assert.Error(t, err)
}
