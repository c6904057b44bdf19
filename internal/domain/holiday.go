package domain

import "time"

// Holiday is a non-business calendar day. For recurring holidays only month and day matter.
type Holiday struct {
	ID          string
	Date        time.Time
	Name        string
	IsRecurring bool
}
