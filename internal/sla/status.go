package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Thresholds are the percent-of-target-elapsed boundaries for each tier.
type Thresholds struct {
	Approaching float64
	Critical    float64
	Breached    float64
}

// DefaultThresholds are 60/80/100.
var DefaultThresholds = Thresholds{Approaching: 60, Critical: 80, Breached: 100}

// Validate ensures thresholds are ascending and positive.
func (t Thresholds) Validate() error {
	if t.Approaching <= 0 || t.Approaching > t.Critical || t.Critical > t.Breached {
		return fmt.Errorf("sla: thresholds must satisfy 0 < approaching <= critical <= breached, got %v/%v/%v",
			t.Approaching, t.Critical, t.Breached)
	}
	return nil
}

// Classify maps a percent of elapsed target time to a tier. Boundaries are inclusive.
func (t Thresholds) Classify(percentElapsed float64) domain.SLAStatus {
	switch {
	case percentElapsed >= t.Breached:
		return domain.SLAStatusBreached
	case percentElapsed >= t.Critical:
		return domain.SLAStatusCritical
	case percentElapsed >= t.Approaching:
		return domain.SLAStatusApproaching
	default:
		return domain.SLAStatusOnTrack
	}
}

// PercentElapsed reports how much of the createdAt→deadline business time has been used at now,
// after crediting pausedMinutes. A zero-length target counts as fully elapsed.
func (s *Schedule) PercentElapsed(createdAt, deadline time.Time, pausedMinutes int, now time.Time) (float64, error) {
	total, err := s.BusinessMinutes(createdAt, deadline)
	if err != nil {
		return 0, fmt.Errorf("target minutes: %w", err)
	}
	if total == 0 {
		return 100, nil
	}
	elapsed, err := s.BusinessMinutes(createdAt, now)
	if err != nil {
		return 0, fmt.Errorf("elapsed minutes: %w", err)
	}
	return float64(elapsed-pausedMinutes) * 100 / float64(total), nil
}

// Status classifies one SLA clock. A nil deadline is always on track.
func (s *Schedule) Status(createdAt time.Time, deadline *time.Time, pausedMinutes int, now time.Time, thresholds Thresholds) (domain.SLAStatus, error) {
	if deadline == nil {
		return domain.SLAStatusOnTrack, nil
	}
	percent, err := s.PercentElapsed(createdAt, *deadline, pausedMinutes, now)
	if err != nil {
		return "", err
	}
	return thresholds.Classify(percent), nil
}
