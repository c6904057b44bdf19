package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeSLADeadlines TicketChangeType = "SLA_DEADLINES"
	ChangeTypeSLAPaused    TicketChangeType = "SLA_PAUSED"
	ChangeTypeSLAResumed   TicketChangeType = "SLA_RESUMED"
	ChangeTypeSLAStatus    TicketChangeType = "SLA_STATUS"
)

// ChangedByType identifies who caused a history entry.
type ChangedByType string

const (
	ChangedByStaff  ChangedByType = "STAFF"
	ChangedBySystem ChangedByType = "SYSTEM"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByType ChangedByType
	ChangedByID   *string
	ChangeType    TicketChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
