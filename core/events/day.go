package events

import (
	"time"

	"github.com/kilianp07/ridecheck/core/model"
)

// DayEvent is published once per weekday when its schedule is ready.
// Status mirrors the scheduler day status.
type DayEvent struct {
	RunID   string
	Day     model.Weekday
	Status  string
	Elapsed time.Duration
	Err     error
}
