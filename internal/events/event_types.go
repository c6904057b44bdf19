package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLADeadlinesSet  EventType = "sla_deadlines_set"
	EventSLAPaused        EventType = "sla_paused"
	EventSLAResumed       EventType = "sla_resumed"
	EventSLAStatusChanged EventType = "sla_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// SystemActor is the actor for scheduler-driven changes.
var SystemActor = Actor{Type: domain.SubjectTypeSystem}

// StaffActor builds an actor for a staff-initiated change.
func StaffActor(staffID string) Actor {
	if staffID == "" {
		return SystemActor
	}
	return Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SLADeadlinesSetPayload payload.
type SLADeadlinesSetPayload struct {
	Priority              domain.TicketPriority `json:"priority"`
	OldResponseDeadline   *time.Time            `json:"old_response_deadline,omitempty"`
	OldResolutionDeadline *time.Time            `json:"old_resolution_deadline,omitempty"`
	ResponseDeadline      *time.Time            `json:"response_deadline,omitempty"`
	ResolutionDeadline    *time.Time            `json:"resolution_deadline,omitempty"`
}

// SLAPausedPayload payload.
type SLAPausedPayload struct {
	PausedAt time.Time `json:"paused_at"`
	Reason   string    `json:"reason"`
}

// SLAResumedPayload payload.
type SLAResumedPayload struct {
	PausedAt              time.Time  `json:"paused_at"`
	ResumedAt             time.Time  `json:"resumed_at"`
	PausedMinutes         int        `json:"paused_minutes"`
	OldResponseDeadline   *time.Time `json:"old_response_deadline,omitempty"`
	OldResolutionDeadline *time.Time `json:"old_resolution_deadline,omitempty"`
	ResponseDeadline      *time.Time `json:"response_deadline,omitempty"`
	ResolutionDeadline    *time.Time `json:"resolution_deadline,omitempty"`
}

// SLAStatusChangedPayload payload.
type SLAStatusChangedPayload struct {
	OldResponseStatus   domain.SLAStatus `json:"old_response_status"`
	OldResolutionStatus domain.SLAStatus `json:"old_resolution_status"`
	ResponseStatus      domain.SLAStatus `json:"response_status"`
	ResolutionStatus    domain.SLAStatus `json:"resolution_status"`
}
