package scheduler

import (
	"errors"
	"time"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/timeline"
)

// Status tells the renderer how much to trust a day.
type Status string

const (
	// StatusScheduled means every open ride fits in the window.
	StatusScheduled Status = "scheduled"
	// StatusParkClosed means the day has no inspection window.
	StatusParkClosed Status = "park_closed"
	// StatusIncomplete means a best-effort schedule with overloaded workers.
	StatusIncomplete Status = "incomplete"
	// StatusInfeasible means at least one ride has nobody able to check it.
	StatusInfeasible Status = "infeasible"
)

// DaySchedule is the result for one weekday.
type DaySchedule struct {
	Day      model.Weekday `json:"day"`
	Status   Status        `json:"status"`
	Capacity int           `json:"capacity"`
	Timeline timeline.Day  `json:"timeline"`
	// ClosedRides are closed for the day and need no check.
	ClosedRides []string `json:"closed_rides,omitempty"`
	// Unassigned rides have no qualified, available worker.
	Unassigned []string    `json:"unassigned,omitempty"`
	Errors     []*DayError `json:"errors,omitempty"`
	Iterations int         `json:"iterations"`
	Conflicts  int         `json:"conflicts"`
	// Moves counts the balancing transfers applied after solving.
	Moves int `json:"moves"`
}

// Complete reports whether the day can be used as is.
func (d DaySchedule) Complete() bool {
	return d.Status == StatusScheduled || d.Status == StatusParkClosed
}

// WeeklySchedule holds the seven day results of one generation run.
type WeeklySchedule struct {
	RunID       string                         `json:"run_id"`
	GeneratedAt time.Time                      `json:"generated_at"`
	Days        [model.DaysPerWeek]DaySchedule `json:"days"`
	Stats       Stats                          `json:"stats"`
}

// Day returns the schedule of d.
func (w WeeklySchedule) Day(d model.Weekday) DaySchedule { return w.Days[d] }

// Complete reports whether every day is fully scheduled or closed.
func (w WeeklySchedule) Complete() bool {
	for _, d := range w.Days {
		if !d.Complete() {
			return false
		}
	}
	return true
}

// Errors lists every per-day error in day order.
func (w WeeklySchedule) Errors() []*DayError {
	var out []*DayError
	for _, d := range w.Days {
		out = append(out, d.Errors...)
	}
	return out
}

// Err joins all per-day errors, or returns nil when the week is complete.
func (w WeeklySchedule) Err() error {
	errs := w.Errors()
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}
