package domain

import "time"

// NotificationCategorySLA tags alerts produced by the SLA sweep.
const NotificationCategorySLA = "sla_alert"

// Notification is an in-app notification addressed to a single recipient.
type Notification struct {
	ID          string
	RecipientID string
	Category    string
	Title       string
	Message     string
	LinkTo      string
	CreatedAt   time.Time
}
