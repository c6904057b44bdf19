package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ActiveTicketStatuses are the lifecycle states whose SLA clocks are still evaluated.
var ActiveTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaiting,
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityUrgent  TicketPriority = "urgent"
	TicketPriorityHigh    TicketPriority = "high"
	TicketPriorityMedium  TicketPriority = "medium"
	TicketPriorityLow     TicketPriority = "low"
	TicketPriorityFeature TicketPriority = "feature"
)

// SLAStatus is the urgency tier of a single SLA clock.
type SLAStatus string

const (
	SLAStatusOnTrack     SLAStatus = "on_track"
	SLAStatusApproaching SLAStatus = "approaching"
	SLAStatusCritical    SLAStatus = "critical"
	SLAStatusBreached    SLAStatus = "breached"
)

// Rank orders tiers from least to most urgent.
func (s SLAStatus) Rank() int {
	switch s {
	case SLAStatusApproaching:
		return 1
	case SLAStatusCritical:
		return 2
	case SLAStatusBreached:
		return 3
	default:
		return 0
	}
}

// IsAlert reports whether the tier warrants a notification.
func (s SLAStatus) IsAlert() bool {
	return s == SLAStatusCritical || s == SLAStatusBreached
}

// SLAKind distinguishes the two clocks tracked per ticket.
type SLAKind string

const (
	SLAKindResponse   SLAKind = "response"
	SLAKindResolution SLAKind = "resolution"
)

// Ticket is the SLA view of a support ticket. Only the SLA fields are owned here.
type Ticket struct {
	ID                 string
	ExternalKey        string
	Title              string
	Status             TicketStatus
	Priority           TicketPriority
	AssigneeID         *string
	CreatedAt          time.Time
	ResponseDeadline   *time.Time
	ResolutionDeadline *time.Time
	ResponseStatus     SLAStatus
	ResolutionStatus   SLAStatus
	PausedAt           *time.Time
	PausedReason       *string
}

// IsPaused reports whether the SLA clock is currently frozen.
func (t *Ticket) IsPaused() bool {
	return t.PausedAt != nil
}

// Deadline returns the deadline for the given clock.
func (t *Ticket) Deadline(kind SLAKind) *time.Time {
	if kind == SLAKindResponse {
		return t.ResponseDeadline
	}
	return t.ResolutionDeadline
}

// SLAStatusFor returns the stored tier for the given clock.
func (t *Ticket) SLAStatusFor(kind SLAKind) SLAStatus {
	if kind == SLAKindResponse {
		return t.ResponseStatus
	}
	return t.ResolutionStatus
}
