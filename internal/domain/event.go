package domain

import "time"

// Event represents a ticketed event owned by an organiser.
type Event struct {
	ID       string
	Name     string
	StartsAt time.Time
}
