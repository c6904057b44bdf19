package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
)

// utcAt builds a UTC instant in March 2024. 2024-03-01 is a Friday.
func utcAt(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

type staticHolidays []domain.Holiday

func (s staticHolidays) ListHolidays(context.Context) ([]domain.Holiday, error) {
	return s, nil
}

func newTestCalendar(t *testing.T, holidays ...domain.Holiday) *sla.Calendar {
	t.Helper()
	hours, err := sla.NewBusinessHours(time.UTC, 10, 22, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	})
	require.NoError(t, err)
	return sla.NewCalendar(hours, staticHolidays(holidays), sla.CalendarOptions{})
}

// memoryTickets is an in-memory TicketRepository.
type memoryTickets struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	fail    map[string]error
	panics  map[string]bool
	writes  int
}

var _ repository.TicketRepository = (*memoryTickets)(nil)

func newMemoryTickets(tickets ...domain.Ticket) *memoryTickets {
	m := &memoryTickets{
		tickets: make(map[string]domain.Ticket),
		fail:    make(map[string]error),
		panics:  make(map[string]bool),
	}
	for _, ticket := range tickets {
		m.tickets[ticket.ID] = ticket
	}
	return m
}

func (m *memoryTickets) ListActive(context.Context) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		switch ticket.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusWaiting:
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (m *memoryTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (m *memoryTickets) UpdateSLA(_ context.Context, id string, mutate repository.SLAMutation) (*domain.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[id]; err != nil {
		return nil, false, err
	}
	if m.panics[id] {
		panic("corrupt row")
	}
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, false, pgx.ErrNoRows
	}
	changed, err := mutate(&ticket)
	if err != nil {
		return nil, false, err
	}
	if changed {
		m.tickets[id] = ticket
		m.writes++
	}
	return &ticket, changed, nil
}

func (m *memoryTickets) get(id string) domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[id]
}

// memoryHistory is an in-memory TicketHistoryRepository.
type memoryHistory struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func (m *memoryHistory) Create(_ context.Context, history *domain.TicketHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *history)
	return nil
}

func (m *memoryHistory) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.TicketHistory
	for _, entry := range m.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *memoryHistory) all() []domain.TicketHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TicketHistory(nil), m.entries...)
}

type mockNotifications struct {
	mock.Mock
}

func (m *mockNotifications) Create(ctx context.Context, notification *domain.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

type mockStaff struct {
	mock.Mock
}

func (m *mockStaff) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	args := m.Called(ctx, id)
	staff, _ := args.Get(0).(*domain.StaffMember)
	return staff, args.Error(1)
}

func (m *mockStaff) ListPlatformAdmins(ctx context.Context) ([]domain.StaffMember, error) {
	args := m.Called(ctx)
	staff, _ := args.Get(0).([]domain.StaffMember)
	return staff, args.Error(1)
}

// recordingNotifier counts alerts instead of delivering them.
type recordingNotifier struct {
	mu      sync.Mutex
	tickets []string
	sent    int
}

func (r *recordingNotifier) NotifySLAAlert(_ context.Context, ticket *domain.Ticket, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = append(r.tickets, ticket.ID)
	return r.sent, nil
}

func (r *recordingNotifier) notified() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tickets...)
}
