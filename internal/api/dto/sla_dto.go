package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// SLATargetsResponse lists target hours for a priority. Null hours mean no SLA of that kind.
type SLATargetsResponse struct {
	Priority        domain.TicketPriority `json:"priority"`
	ResponseHours   *int                  `json:"response_hours"`
	ResolutionHours *int                  `json:"resolution_hours"`
}

// DeadlinePreviewResponse shows the deadlines a ticket created at Start would get.
type DeadlinePreviewResponse struct {
	Priority           domain.TicketPriority `json:"priority"`
	Start              time.Time             `json:"start"`
	ResponseDeadline   *time.Time            `json:"response_deadline"`
	ResolutionDeadline *time.Time            `json:"resolution_deadline"`
}

// BusinessMinutesResponse reports business minutes in a range.
type BusinessMinutesResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// SLAClockResponse is the live state of one SLA clock.
type SLAClockResponse struct {
	Deadline       *time.Time       `json:"deadline"`
	StoredStatus   domain.SLAStatus `json:"stored_status"`
	Status         domain.SLAStatus `json:"status"`
	PercentElapsed float64          `json:"percent_elapsed"`
	Remaining      string           `json:"remaining,omitempty"`
}

// SLAEvaluationResponse is the live SLA view of a ticket.
type SLAEvaluationResponse struct {
	Ticket        TicketSLAResponse `json:"ticket"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
	Paused        bool              `json:"paused"`
	PausedMinutes int               `json:"paused_minutes"`
	Response      SLAClockResponse  `json:"response"`
	Resolution    SLAClockResponse  `json:"resolution"`
}

// SweepResponse summarizes an on-demand sweep.
type SweepResponse struct {
	Evaluated int `json:"evaluated"`
	Updated   int `json:"updated"`
	Notified  int `json:"notified"`
	Failed    int `json:"failed"`
}
