package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
)

// HistoryService records SLA events in the ticket audit trail.
type HistoryService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	logger     *zap.Logger
}

// NewHistoryService creates the service.
func NewHistoryService(dispatcher events.Dispatcher, history repository.TicketHistoryRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (h *HistoryService) RegisterHandlers() {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.Subscribe(events.EventSLADeadlinesSet, h.handleDeadlinesSet)
	h.dispatcher.Subscribe(events.EventSLAPaused, h.handlePaused)
	h.dispatcher.Subscribe(events.EventSLAResumed, h.handleResumed)
	h.dispatcher.Subscribe(events.EventSLAStatusChanged, h.handleStatusChanged)
}

func (h *HistoryService) handleDeadlinesSet(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLADeadlinesSetPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	return h.record(ctx, event, domain.ChangeTypeSLADeadlines,
		map[string]any{
			"response_deadline":   formatDeadline(payload.OldResponseDeadline),
			"resolution_deadline": formatDeadline(payload.OldResolutionDeadline),
		},
		map[string]any{
			"priority":            string(payload.Priority),
			"response_deadline":   formatDeadline(payload.ResponseDeadline),
			"resolution_deadline": formatDeadline(payload.ResolutionDeadline),
		})
}

func (h *HistoryService) handlePaused(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAPausedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	return h.record(ctx, event, domain.ChangeTypeSLAPaused,
		map[string]any{},
		map[string]any{
			"paused_at": payload.PausedAt.UTC().Format(time.RFC3339),
			"reason":    payload.Reason,
		})
}

func (h *HistoryService) handleResumed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAResumedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	return h.record(ctx, event, domain.ChangeTypeSLAResumed,
		map[string]any{
			"paused_at":           payload.PausedAt.UTC().Format(time.RFC3339),
			"response_deadline":   formatDeadline(payload.OldResponseDeadline),
			"resolution_deadline": formatDeadline(payload.OldResolutionDeadline),
		},
		map[string]any{
			"resumed_at":          payload.ResumedAt.UTC().Format(time.RFC3339),
			"paused_minutes":      payload.PausedMinutes,
			"response_deadline":   formatDeadline(payload.ResponseDeadline),
			"resolution_deadline": formatDeadline(payload.ResolutionDeadline),
		})
}

func (h *HistoryService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAStatusChangedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	return h.record(ctx, event, domain.ChangeTypeSLAStatus,
		map[string]any{
			"response_status":   string(payload.OldResponseStatus),
			"resolution_status": string(payload.OldResolutionStatus),
		},
		map[string]any{
			"response_status":   string(payload.ResponseStatus),
			"resolution_status": string(payload.ResolutionStatus),
		})
}

func (h *HistoryService) record(ctx context.Context, event events.Event, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if h.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:      event.TicketID,
		ChangedByType: domain.ChangedBySystem,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	if event.Actor.Type == domain.SubjectTypeStaff && event.Actor.StaffID != nil {
		entry.ChangedByType = domain.ChangedByStaff
		entry.ChangedByID = event.Actor.StaffID
	}
	if err := h.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("record %s history: %w", changeType, err)
	}
	h.logger.Debug("recorded SLA history",
		zap.String("ticket_id", event.TicketID),
		zap.String("change_type", string(changeType)))
	return nil
}

func formatDeadline(deadline *time.Time) any {
	if deadline == nil {
		return nil
	}
	return deadline.UTC().Format(time.RFC3339)
}

func unexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
