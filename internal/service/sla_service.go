package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// SLAService owns the per-ticket SLA lifecycle: deadlines, pause and resume, live evaluation.
type SLAService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	calendar   *sla.Calendar
	policy     *sla.Policy
	thresholds sla.Thresholds
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Calendar    *sla.Calendar
	Policy      *sla.Policy
	Thresholds  sla.Thresholds
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// SLAClockView is the live state of one SLA clock.
type SLAClockView struct {
	Kind           domain.SLAKind
	Deadline       *time.Time
	StoredStatus   domain.SLAStatus
	Status         domain.SLAStatus
	PercentElapsed float64
	Remaining      string
}

// SLAEvaluation is the read-only live view of a ticket's SLA.
type SLAEvaluation struct {
	Ticket        *domain.Ticket
	EvaluatedAt   time.Time
	PausedMinutes int
	Response      SLAClockView
	Resolution    SLAClockView
}

// DeadlinePreview holds the deadlines a ticket would get for a given start.
type DeadlinePreview struct {
	Priority           domain.TicketPriority
	Start              time.Time
	ResponseDeadline   *time.Time
	ResolutionDeadline *time.Time
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	thresholds := deps.Thresholds
	if thresholds == (sla.Thresholds{}) {
		thresholds = sla.DefaultThresholds
	}
	policy := deps.Policy
	if policy == nil {
		policy = sla.NewPolicy(nil, logger)
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		calendar:   deps.Calendar,
		policy:     policy,
		thresholds: thresholds,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// GetSLAHours returns the target hours for a priority and clock, or nil when no SLA applies.
func (s *SLAService) GetSLAHours(priority domain.TicketPriority, kind domain.SLAKind) *int {
	return s.policy.HoursFor(priority, kind)
}

// Targets returns both target hours for a priority.
func (s *SLAService) Targets(priority domain.TicketPriority) sla.Target {
	return s.policy.Target(priority)
}

// PreviewDeadlines computes both deadlines for a ticket of the given priority created at start.
func (s *SLAService) PreviewDeadlines(ctx context.Context, start time.Time, priority domain.TicketPriority) (*DeadlinePreview, error) {
	schedule := s.calendar.Schedule(ctx)
	response, resolution, err := s.deadlinesFor(schedule, start, priority)
	if err != nil {
		return nil, mapSLAError(err)
	}
	return &DeadlinePreview{
		Priority:           priority,
		Start:              start.UTC(),
		ResponseDeadline:   response,
		ResolutionDeadline: resolution,
	}, nil
}

// BusinessMinutes counts business minutes between two instants.
func (s *SLAService) BusinessMinutes(ctx context.Context, start, end time.Time) (int, error) {
	minutes, err := s.calendar.Schedule(ctx).BusinessMinutes(start, end)
	if err != nil {
		return 0, mapSLAError(err)
	}
	return minutes, nil
}

// InitializeDeadlines computes both deadlines from the ticket's creation time and priority
// and resets both statuses to on track.
func (s *SLAService) InitializeDeadlines(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	schedule := s.calendar.Schedule(ctx)
	var payload events.SLADeadlinesSetPayload
	ticket, changed, err := s.tickets.UpdateSLA(ctx, ticketID, func(ticket *domain.Ticket) (bool, error) {
		response, resolution, err := s.deadlinesFor(schedule, ticket.CreatedAt, ticket.Priority)
		if err != nil {
			return false, err
		}
		payload = events.SLADeadlinesSetPayload{
			Priority:              ticket.Priority,
			OldResponseDeadline:   ticket.ResponseDeadline,
			OldResolutionDeadline: ticket.ResolutionDeadline,
			ResponseDeadline:      response,
			ResolutionDeadline:    resolution,
		}
		changed := !sameInstant(ticket.ResponseDeadline, response) ||
			!sameInstant(ticket.ResolutionDeadline, resolution) ||
			ticket.ResponseStatus != domain.SLAStatusOnTrack ||
			ticket.ResolutionStatus != domain.SLAStatusOnTrack
		ticket.ResponseDeadline = response
		ticket.ResolutionDeadline = resolution
		ticket.ResponseStatus = domain.SLAStatusOnTrack
		ticket.ResolutionStatus = domain.SLAStatusOnTrack
		return changed, nil
	})
	if err != nil {
		return nil, s.ticketError(err, ticketID)
	}
	if changed {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventSLADeadlinesSet,
			TicketID: ticket.ID,
			Actor:    events.StaffActor(actorID),
			Payload:  payload,
		})
	}
	return ticket, nil
}

// PauseSLA freezes the ticket's SLA clocks. Pausing an already paused ticket restarts the pause at now.
func (s *SLAService) PauseSLA(ctx context.Context, actorID, ticketID, reason string) (*domain.Ticket, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)
	ticket, _, err := s.tickets.UpdateSLA(ctx, ticketID, func(ticket *domain.Ticket) (bool, error) {
		if ticket.IsPaused() {
			s.logger.Warn("ticket SLA already paused; restarting pause",
				zap.String("ticket_id", ticket.ID),
				zap.Time("previous_paused_at", *ticket.PausedAt))
		}
		pausedAt := now
		ticket.PausedAt = &pausedAt
		ticket.PausedReason = &reason
		return true, nil
	})
	if err != nil {
		return nil, s.ticketError(err, ticketID)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventSLAPaused,
		TicketID: ticket.ID,
		Actor:    events.StaffActor(actorID),
		Payload:  events.SLAPausedPayload{PausedAt: now.UTC(), Reason: reason},
	})
	return ticket, nil
}

// ResumeSLA unfreezes the ticket's SLA clocks, pushing each deadline out by the business minutes
// spent paused. Resuming a ticket that is not paused returns it unchanged.
func (s *SLAService) ResumeSLA(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	now := s.now()
	schedule := s.calendar.Schedule(ctx)
	var payload events.SLAResumedPayload
	ticket, changed, err := s.tickets.UpdateSLA(ctx, ticketID, func(ticket *domain.Ticket) (bool, error) {
		if !ticket.IsPaused() {
			return false, nil
		}
		paused := pausedMinutes(schedule, ticket, now)
		shift := time.Duration(paused) * time.Minute
		payload = events.SLAResumedPayload{
			PausedAt:              ticket.PausedAt.UTC(),
			ResumedAt:             now.UTC(),
			PausedMinutes:         paused,
			OldResponseDeadline:   ticket.ResponseDeadline,
			OldResolutionDeadline: ticket.ResolutionDeadline,
		}
		ticket.ResponseDeadline = shiftDeadline(ticket.ResponseDeadline, shift)
		ticket.ResolutionDeadline = shiftDeadline(ticket.ResolutionDeadline, shift)
		ticket.PausedAt = nil
		ticket.PausedReason = nil
		payload.ResponseDeadline = ticket.ResponseDeadline
		payload.ResolutionDeadline = ticket.ResolutionDeadline
		return true, nil
	})
	if err != nil {
		return nil, s.ticketError(err, ticketID)
	}
	if changed {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventSLAResumed,
			TicketID: ticket.ID,
			Actor:    events.StaffActor(actorID),
			Payload:  payload,
		})
	}
	return ticket, nil
}

// Evaluate computes the live SLA state of a ticket without persisting anything.
func (s *SLAService) Evaluate(ctx context.Context, ticketID string) (*SLAEvaluation, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.ticketError(err, ticketID)
	}
	now := s.now()
	schedule := s.calendar.Schedule(ctx)
	paused := pausedMinutes(schedule, ticket, now)

	response, err := s.clockView(schedule, ticket, domain.SLAKindResponse, paused, now)
	if err != nil {
		return nil, mapSLAError(err)
	}
	resolution, err := s.clockView(schedule, ticket, domain.SLAKindResolution, paused, now)
	if err != nil {
		return nil, mapSLAError(err)
	}
	return &SLAEvaluation{
		Ticket:        ticket,
		EvaluatedAt:   now.UTC(),
		PausedMinutes: paused,
		Response:      response,
		Resolution:    resolution,
	}, nil
}

// History lists the SLA audit entries of a ticket.
func (s *SLAService) History(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, s.ticketError(err, ticketID)
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, mapSLAError(err)
	}
	return entries, nil
}

func (s *SLAService) clockView(schedule *sla.Schedule, ticket *domain.Ticket, kind domain.SLAKind, paused int, now time.Time) (SLAClockView, error) {
	deadline := ticket.Deadline(kind)
	view := SLAClockView{
		Kind:         kind,
		Deadline:     deadline,
		StoredStatus: ticket.SLAStatusFor(kind),
		Status:       domain.SLAStatusOnTrack,
	}
	if deadline == nil {
		return view, nil
	}
	percent, err := schedule.PercentElapsed(ticket.CreatedAt, *deadline, paused, now)
	if err != nil {
		return view, fmt.Errorf("%s sla: %w", kind, err)
	}
	view.PercentElapsed = percent
	view.Status = s.thresholds.Classify(percent)
	view.Remaining = describeRemaining(*deadline, now)
	return view, nil
}

func (s *SLAService) deadlinesFor(schedule *sla.Schedule, start time.Time, priority domain.TicketPriority) (*time.Time, *time.Time, error) {
	target := s.policy.Target(priority)
	response, err := schedule.CalculateDeadline(start, target.ResponseHours)
	if err != nil {
		return nil, nil, fmt.Errorf("response deadline: %w", err)
	}
	resolution, err := schedule.CalculateDeadline(start, target.ResolutionHours)
	if err != nil {
		return nil, nil, fmt.Errorf("resolution deadline: %w", err)
	}
	return response, resolution, nil
}

func (s *SLAService) ticketError(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return mapSLAError(err)
}

func (s *SLAService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// pausedMinutes is the business time spent in the current pause. A pause stamped after now counts as zero.
func pausedMinutes(schedule *sla.Schedule, ticket *domain.Ticket, now time.Time) int {
	if ticket.PausedAt == nil || now.Before(*ticket.PausedAt) {
		return 0
	}
	minutes, err := schedule.BusinessMinutes(*ticket.PausedAt, now)
	if err != nil {
		return 0
	}
	return minutes
}

func newEventID() string {
	return uuid.NewString()
}

func shiftDeadline(deadline *time.Time, shift time.Duration) *time.Time {
	if deadline == nil {
		return nil
	}
	shifted := deadline.Add(shift).UTC()
	return &shifted
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// describeRemaining renders the distance to a deadline, e.g. "3 hours remaining" or "2 days overdue".
func describeRemaining(deadline, now time.Time) string {
	return humanize.RelTime(deadline, now, "overdue", "remaining")
}
