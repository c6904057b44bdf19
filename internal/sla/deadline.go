package sla

import "time"

// CalculateDeadline projects start forward by targetHours business hours.
// A nil target means no SLA of that kind is enforced and yields a nil deadline.
// Hours are counted one at a time; a partially elapsed first hour counts as a full hour.
func (s *Schedule) CalculateDeadline(start time.Time, targetHours *int) (*time.Time, error) {
	if targetHours == nil {
		return nil, nil
	}

	current := s.AdvanceToNextBusinessHour(start)
	if !s.IsBusinessHour(current) {
		return nil, ErrNoBusinessTime
	}

	added := 0
	for added < *targetHours {
		if s.IsBusinessHour(current) {
			added++
			current = current.Add(time.Hour)
			continue
		}
		current = s.AdvanceToNextBusinessHour(current)
		if !s.IsBusinessHour(current) {
			return nil, ErrNoBusinessTime
		}
	}

	deadline := current.UTC()
	return &deadline, nil
}
