package sla

import (
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Target holds the response and resolution hours for a priority. Nil means no SLA.
type Target struct {
	ResponseHours   *int
	ResolutionHours *int
}

func hours(h int) *int { return &h }

// DefaultTargets is the fixed priority lookup table.
var DefaultTargets = map[domain.TicketPriority]Target{
	domain.TicketPriorityUrgent:  {ResponseHours: hours(1), ResolutionHours: hours(4)},
	domain.TicketPriorityHigh:    {ResponseHours: hours(4), ResolutionHours: hours(24)},
	domain.TicketPriorityMedium:  {ResponseHours: hours(8), ResolutionHours: hours(72)},
	domain.TicketPriorityLow:     {ResponseHours: hours(24), ResolutionHours: hours(2160)},
	domain.TicketPriorityFeature: {ResponseHours: hours(48), ResolutionHours: nil},
}

// Policy resolves priorities to target hours.
type Policy struct {
	targets map[domain.TicketPriority]Target
	logger  *zap.Logger
}

// NewPolicy wraps a target table. A nil table uses DefaultTargets.
func NewPolicy(targets map[domain.TicketPriority]Target, logger *zap.Logger) *Policy {
	if targets == nil {
		targets = DefaultTargets
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{targets: targets, logger: logger}
}

// Target returns both target hours for a priority. Unknown priorities fall back to medium.
func (p *Policy) Target(priority domain.TicketPriority) Target {
	if target, ok := p.targets[priority]; ok {
		return target
	}
	p.logger.Warn("unknown ticket priority; using medium SLA targets", zap.String("priority", string(priority)))
	return p.targets[domain.TicketPriorityMedium]
}

// HoursFor returns the target hours of one kind for a priority, or nil when no SLA applies.
func (p *Policy) HoursFor(priority domain.TicketPriority, kind domain.SLAKind) *int {
	target := p.Target(priority)
	if kind == domain.SLAKindResponse {
		return target.ResponseHours
	}
	return target.ResolutionHours
}
