package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/worker"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// SweepRunner runs an on-demand sweep.
type SweepRunner interface {
	RunOnce(ctx context.Context) (service.SweepResult, error)
}

// SLAHandler exposes the SLA engine to staff.
type SLAHandler struct {
	service *service.SLAService
	sweeps  SweepRunner
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService, sweeps SweepRunner) *SLAHandler {
	return &SLAHandler{service: slaService, sweeps: sweeps}
}

// GetTargets GET /sla/targets/:priority.
func (h *SLAHandler) GetTargets(c *fiber.Ctx) error {
	priority := domain.TicketPriority(strings.ToLower(strings.TrimSpace(c.Params("priority"))))
	return c.JSON(fiber.Map{"data": dto.SLATargetsResponse{
		Priority:        priority,
		ResponseHours:   h.service.GetSLAHours(priority, domain.SLAKindResponse),
		ResolutionHours: h.service.GetSLAHours(priority, domain.SLAKindResolution),
	}})
}

// PreviewDeadline GET /sla/deadline?start=&priority=.
func (h *SLAHandler) PreviewDeadline(c *fiber.Ctx) error {
	start, err := requiredTime(c, "start")
	if err != nil {
		return err
	}
	priority := domain.TicketPriority(strings.ToLower(strings.TrimSpace(c.Query("priority"))))
	if priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}
	preview, err := h.service.PreviewDeadlines(c.UserContext(), start, priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeadlinePreviewResponse{
		Priority:           preview.Priority,
		Start:              preview.Start,
		ResponseDeadline:   preview.ResponseDeadline,
		ResolutionDeadline: preview.ResolutionDeadline,
	}})
}

// BusinessMinutes GET /sla/business-minutes?start=&end=.
func (h *SLAHandler) BusinessMinutes(c *fiber.Ctx) error {
	start, err := requiredTime(c, "start")
	if err != nil {
		return err
	}
	end, err := requiredTime(c, "end")
	if err != nil {
		return err
	}
	minutes, err := h.service.BusinessMinutes(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BusinessMinutesResponse{
		Start:   start.UTC(),
		End:     end.UTC(),
		Minutes: minutes,
	}})
}

// GetTicketSLA GET /sla/tickets/:id.
func (h *SLAHandler) GetTicketSLA(c *fiber.Ctx) error {
	evaluation, err := h.service.Evaluate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": evaluationResponse(evaluation)})
}

// ListTicketHistory GET /sla/tickets/:id/history.
func (h *SLAHandler) ListTicketHistory(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.History(c.UserContext(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// InitializeDeadlines POST /sla/tickets/:id/deadlines.
func (h *SLAHandler) InitializeDeadlines(c *fiber.Ctx) error {
	ticket, err := h.service.InitializeDeadlines(c.UserContext(), auth.StaffID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSLA(ticket)})
}

// PauseSLA POST /sla/tickets/:id/pause.
func (h *SLAHandler) PauseSLA(c *fiber.Ctx) error {
	var req dto.PauseSLARequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.PauseSLA(c.UserContext(), auth.StaffID(c), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSLA(ticket)})
}

// ResumeSLA POST /sla/tickets/:id/resume.
func (h *SLAHandler) ResumeSLA(c *fiber.Ctx) error {
	ticket, err := h.service.ResumeSLA(c.UserContext(), auth.StaffID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSLA(ticket)})
}

// RunSweep POST /sla/sweep. The sweep is detached from the request deadline and
// bounded by the sweep timeout instead.
func (h *SLAHandler) RunSweep(c *fiber.Ctx) error {
	if h.sweeps == nil {
		return apperrors.NewDomainError("SWEEP_UNAVAILABLE", "sweep runner not configured", fiber.StatusServiceUnavailable, nil)
	}
	result, err := h.sweeps.RunOnce(context.WithoutCancel(c.UserContext()))
	if err != nil {
		if errors.Is(err, worker.ErrSweepSkipped) {
			return apperrors.NewConflict("sweep already running", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		Evaluated: result.Evaluated,
		Updated:   result.Updated,
		Notified:  result.Notified,
		Failed:    result.Failed,
	}})
}

func requiredTime(c *fiber.Ctx, key string) (time.Time, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return time.Time{}, apperrors.NewValidationError(key+" required", nil)
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(key+" must be RFC3339", map[string]any{key: val})
	}
	return t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSLA(ticket *domain.Ticket) dto.TicketSLAResponse {
	return dto.TicketSLAResponse{
		ID:                 ticket.ID,
		ExternalKey:        ticket.ExternalKey,
		Title:              ticket.Title,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		AssigneeID:         ticket.AssigneeID,
		CreatedAt:          ticket.CreatedAt,
		ResponseDeadline:   ticket.ResponseDeadline,
		ResolutionDeadline: ticket.ResolutionDeadline,
		ResponseStatus:     ticket.ResponseStatus,
		ResolutionStatus:   ticket.ResolutionStatus,
		PausedAt:           ticket.PausedAt,
		PausedReason:       ticket.PausedReason,
	}
}

func evaluationResponse(evaluation *service.SLAEvaluation) dto.SLAEvaluationResponse {
	return dto.SLAEvaluationResponse{
		Ticket:        ticketSLA(evaluation.Ticket),
		EvaluatedAt:   evaluation.EvaluatedAt,
		Paused:        evaluation.Ticket.IsPaused(),
		PausedMinutes: evaluation.PausedMinutes,
		Response:      clockResponse(evaluation.Response),
		Resolution:    clockResponse(evaluation.Resolution),
	}
}

func clockResponse(view service.SLAClockView) dto.SLAClockResponse {
	return dto.SLAClockResponse{
		Deadline:       view.Deadline,
		StoredStatus:   view.StoredStatus,
		Status:         view.Status,
		PercentElapsed: view.PercentElapsed,
		Remaining:      view.Remaining,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return resp
}
