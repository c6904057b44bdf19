package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
)

const defaultSweepWorkers = 4

// Sweep outcomes reported to metrics.
const (
	SweepOutcomeCompleted   = "completed"
	SweepOutcomeFailed      = "failed"
	SweepOutcomeInterrupted = "interrupted"
	SweepOutcomeSkipped     = "skipped"
)

// SweepResult summarizes one sweep.
type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Updated   int `json:"updated"`
	Notified  int `json:"notified"`
	Failed    int `json:"failed"`
}

// SweepService re-evaluates the SLA status of every active ticket.
type SweepService struct {
	tickets    repository.TicketRepository
	calendar   *sla.Calendar
	thresholds sla.Thresholds
	notifier   SLAAlertNotifier
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	workers    int
}

// SweepDependencies bundles collaborators for the sweep.
type SweepDependencies struct {
	TicketRepo repository.TicketRepository
	Calendar   *sla.Calendar
	Thresholds sla.Thresholds
	Notifier   SLAAlertNotifier
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
	Workers    int
}

// NewSweepService constructs the service.
func NewSweepService(deps SweepDependencies) *SweepService {
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
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultSweepWorkers
	}
	return &SweepService{
		tickets:    deps.TicketRepo,
		calendar:   deps.Calendar,
		thresholds: thresholds,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
		workers:    workers,
	}
}

type ticketOutcome struct {
	updated  bool
	notified int
}

// RunSweep evaluates every active ticket against one schedule and one clock reading.
// A failing ticket is logged and counted without stopping the sweep.
func (s *SweepService) RunSweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	var result SweepResult

	active, err := s.tickets.ListActive(ctx)
	if err != nil {
		s.metrics.RecordSweep(SweepOutcomeFailed, time.Since(started), 0, 0, 0, 0)
		return result, fmt.Errorf("list active tickets: %w", err)
	}

	schedule := s.calendar.Schedule(ctx)
	now := s.now()

	var (
		mu    sync.Mutex
		group errgroup.Group
	)
	group.SetLimit(s.workers)
	for i := range active {
		ticket := active[i]
		group.Go(func() error {
			outcome, err := s.evaluateTicket(ctx, schedule, ticket.ID, now)
			mu.Lock()
			defer mu.Unlock()
			result.Evaluated++
			if err != nil {
				result.Failed++
				s.logger.Error("failed to evaluate ticket SLA",
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
				return nil
			}
			if outcome.updated {
				result.Updated++
			}
			result.Notified += outcome.notified
			return nil
		})
	}
	_ = group.Wait()

	outcome := SweepOutcomeCompleted
	if ctx.Err() != nil {
		outcome = SweepOutcomeInterrupted
	}
	duration := time.Since(started)
	s.metrics.RecordSweep(outcome, duration, result.Evaluated, result.Updated, result.Notified, result.Failed)
	s.logger.Info("SLA sweep finished",
		zap.String("outcome", outcome),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("updated", result.Updated),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", duration))
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sweep interrupted: %w", err)
	}
	return result, nil
}

func (s *SweepService) evaluateTicket(ctx context.Context, schedule *sla.Schedule, ticketID string, now time.Time) (outcome ticketOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while evaluating ticket: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	var payload events.SLAStatusChangedPayload
	ticket, changed, err := s.tickets.UpdateSLA(ctx, ticketID, func(ticket *domain.Ticket) (bool, error) {
		paused := pausedMinutes(schedule, ticket, now)
		response, err := schedule.Status(ticket.CreatedAt, ticket.ResponseDeadline, paused, now, s.thresholds)
		if err != nil {
			return false, fmt.Errorf("response status: %w", err)
		}
		resolution, err := schedule.Status(ticket.CreatedAt, ticket.ResolutionDeadline, paused, now, s.thresholds)
		if err != nil {
			return false, fmt.Errorf("resolution status: %w", err)
		}
		if response == ticket.ResponseStatus && resolution == ticket.ResolutionStatus {
			return false, nil
		}
		payload = events.SLAStatusChangedPayload{
			OldResponseStatus:   ticket.ResponseStatus,
			OldResolutionStatus: ticket.ResolutionStatus,
			ResponseStatus:      response,
			ResolutionStatus:    resolution,
		}
		ticket.ResponseStatus = response
		ticket.ResolutionStatus = resolution
		return true, nil
	})
	if err != nil {
		return outcome, err
	}
	if !changed {
		return outcome, nil
	}
	outcome.updated = true

	s.publishStatusChange(ctx, ticket.ID, payload, now)

	if !enteredAlert(payload.OldResponseStatus, payload.ResponseStatus) &&
		!enteredAlert(payload.OldResolutionStatus, payload.ResolutionStatus) {
		return outcome, nil
	}
	if s.notifier == nil {
		return outcome, nil
	}
	sent, err := s.notifier.NotifySLAAlert(ctx, ticket, now)
	if err != nil {
		s.logger.Error("failed to send SLA alert",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
	outcome.notified = sent
	return outcome, nil
}

func (s *SweepService) publishStatusChange(ctx context.Context, ticketID string, payload events.SLAStatusChangedPayload, now time.Time) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        newEventID(),
		Type:      events.EventSLAStatusChanged,
		TicketID:  ticketID,
		Actor:     events.SystemActor,
		Timestamp: now.UTC(),
		Payload:   payload,
	})
}

// enteredAlert reports a transition into critical or breached.
func enteredAlert(previous, current domain.SLAStatus) bool {
	return previous != current && current.IsAlert()
}
