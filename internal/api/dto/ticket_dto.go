package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// TicketSLAResponse is the stored SLA state of a ticket.
type TicketSLAResponse struct {
	ID                 string                `json:"id"`
	ExternalKey        string                `json:"external_key"`
	Title              string                `json:"title"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	AssigneeID         *string               `json:"assignee_staff_id"`
	CreatedAt          time.Time             `json:"created_at"`
	ResponseDeadline   *time.Time            `json:"response_deadline"`
	ResolutionDeadline *time.Time            `json:"resolution_deadline"`
	ResponseStatus     domain.SLAStatus      `json:"response_sla_status"`
	ResolutionStatus   domain.SLAStatus      `json:"resolution_sla_status"`
	PausedAt           *time.Time            `json:"sla_paused_at"`
	PausedReason       *string               `json:"sla_paused_reason"`
}

// TicketHistoryResponse represents an SLA audit entry.
type TicketHistoryResponse struct {
	ID            string                  `json:"id"`
	ChangeType    domain.TicketChangeType `json:"change_type"`
	ChangedByType domain.ChangedByType    `json:"changed_by_type"`
	ChangedByID   *string                 `json:"changed_by_id"`
	OldValue      map[string]any          `json:"old_value"`
	NewValue      map[string]any          `json:"new_value"`
	CreatedAt     time.Time               `json:"created_at"`
}

// PauseSLARequest payload.
type PauseSLARequest struct {
	Reason string `json:"reason"`
}
