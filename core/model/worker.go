package model

import "fmt"

// Worker is a member of staff able to inspect the rides listed in Rides.
type Worker struct {
	ID    string   `json:"id" yaml:"id"`
	Rides []string `json:"rides" yaml:"rides"` // qualified ride identifiers
}

// CanCheck returns true if the worker is qualified for the ride.
func (w Worker) CanCheck(rideID string) bool {
	for _, r := range w.Rides {
		if r == rideID {
			return true
		}
	}
	return false
}

// Ride is a facility that must be inspected before opening.
type Ride struct {
	ID              string `json:"id" yaml:"id"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
}

// Validate checks that the ride is usable by the scheduler.
// In particular DurationMinutes must be positive.
func (r Ride) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("ride id is required")
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("ride %s: duration must be positive, got %d", r.ID, r.DurationMinutes)
	}
	return nil
}
