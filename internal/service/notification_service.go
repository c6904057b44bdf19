package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
)

// SLAAlertNotifier delivers alerts for tickets that just entered an alerting tier.
type SLAAlertNotifier interface {
	NotifySLAAlert(ctx context.Context, ticket *domain.Ticket, now time.Time) (int, error)
}

// NotificationService emits in-app SLA alerts.
type NotificationService struct {
	notifications repository.NotificationRepository
	staff         repository.StaffRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, staff repository.StaffRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		staff:         staff,
		logger:        logger,
	}
}

// alertClock is the SLA clock an alert is about.
type alertClock struct {
	kind     domain.SLAKind
	status   domain.SLAStatus
	deadline *time.Time
}

// NotifySLAAlert notifies the assignee, or every active admin when the ticket is unassigned,
// about the most urgent alerting SLA clock. It returns the number of notifications created.
// Failures for individual recipients are logged and skipped.
func (n *NotificationService) NotifySLAAlert(ctx context.Context, ticket *domain.Ticket, now time.Time) (int, error) {
	clock, ok := mostUrgentClock(ticket)
	if !ok {
		return 0, nil
	}
	recipients, err := n.recipients(ctx, ticket)
	if err != nil {
		return 0, fmt.Errorf("resolve alert recipients: %w", err)
	}
	if len(recipients) == 0 {
		n.logger.Warn("no recipients for SLA alert", zap.String("ticket_id", ticket.ID))
		return 0, nil
	}

	title, message := alertText(ticket, clock, now)
	sent := 0
	for _, recipientID := range recipients {
		notification := &domain.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipientID,
			Category:    domain.NotificationCategorySLA,
			Title:       title,
			Message:     message,
			LinkTo:      "/tickets/" + ticket.ID,
		}
		if err := n.notifications.Create(ctx, notification); err != nil {
			n.logger.Error("failed to create SLA notification",
				zap.String("ticket_id", ticket.ID),
				zap.String("recipient_id", recipientID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *NotificationService) recipients(ctx context.Context, ticket *domain.Ticket) ([]string, error) {
	if ticket.AssigneeID != nil && strings.TrimSpace(*ticket.AssigneeID) != "" {
		return []string{*ticket.AssigneeID}, nil
	}
	admins, err := n.staff.ListPlatformAdmins(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.ID)
	}
	return ids, nil
}

// mostUrgentClock picks the alerting clock with the highest tier; ties go to the earlier deadline.
func mostUrgentClock(ticket *domain.Ticket) (alertClock, bool) {
	var (
		best  alertClock
		found bool
	)
	for _, kind := range []domain.SLAKind{domain.SLAKindResponse, domain.SLAKindResolution} {
		candidate := alertClock{kind: kind, status: ticket.SLAStatusFor(kind), deadline: ticket.Deadline(kind)}
		if !candidate.status.IsAlert() {
			continue
		}
		if !found || moreUrgent(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

func moreUrgent(a, b alertClock) bool {
	if a.status.Rank() != b.status.Rank() {
		return a.status.Rank() > b.status.Rank()
	}
	if a.deadline == nil {
		return false
	}
	if b.deadline == nil {
		return true
	}
	return a.deadline.Before(*b.deadline)
}

func alertText(ticket *domain.Ticket, clock alertClock, now time.Time) (string, string) {
	label := "Response"
	if clock.kind == domain.SLAKindResolution {
		label = "Resolution"
	}
	ref := ticket.ExternalKey
	if ref == "" {
		ref = ticket.ID
	}
	var title string
	if clock.status == domain.SLAStatusBreached {
		title = fmt.Sprintf("%s SLA breached: %s", label, ref)
	} else {
		title = fmt.Sprintf("%s SLA critical: %s", label, ref)
	}
	message := fmt.Sprintf("%s SLA for %q is %s", label, ticket.Title, clock.status)
	if clock.deadline != nil {
		message = fmt.Sprintf("%s (%s)", message, describeRemaining(*clock.deadline, now))
	}
	return title, message
}
