package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/timeline"
)

// ErrorKind classifies a recoverable per-day problem.
type ErrorKind string

const (
	KindInfeasibleDomain ErrorKind = "infeasible_domain"
	KindSolveIncomplete  ErrorKind = "solve_incomplete"
	KindCapacityOverflow ErrorKind = "capacity_overflow"
)

// DayError reports a problem limited to one day. Ride is set for infeasible
// domains and Worker for capacity overflows.
type DayError struct {
	Day    model.Weekday
	Kind   ErrorKind
	Ride   string
	Worker string
	Err    error
}

func (e *DayError) Error() string {
	switch {
	case e.Ride != "":
		return fmt.Sprintf("%s: %s: ride %s: %v", e.Day, e.Kind, e.Ride, e.Err)
	case e.Worker != "":
		return fmt.Sprintf("%s: %s: worker %s: %v", e.Day, e.Kind, e.Worker, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Day, e.Kind, e.Err)
	}
}

func (e *DayError) Unwrap() error { return e.Err }

// dayErrorJSON is the wire form of a DayError. Minutes is set for capacity
// overflows.
type dayErrorJSON struct {
	Day     model.Weekday `json:"day"`
	Kind    ErrorKind     `json:"kind"`
	Ride    string        `json:"ride,omitempty"`
	Worker  string        `json:"worker,omitempty"`
	Minutes int           `json:"minutes,omitempty"`
	Message string        `json:"message"`
}

func (e *DayError) MarshalJSON() ([]byte, error) {
	out := dayErrorJSON{Day: e.Day, Kind: e.Kind, Ride: e.Ride, Worker: e.Worker}
	if e.Err != nil {
		out.Message = e.Err.Error()
	}
	var oe *timeline.OverflowError
	if errors.As(e.Err, &oe) {
		out.Minutes = oe.Minutes
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the fields; the cause becomes a plain error carrying
// the message, except for overflows which keep their minutes.
func (e *DayError) UnmarshalJSON(b []byte) error {
	var in dayErrorJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = DayError{Day: in.Day, Kind: in.Kind, Ride: in.Ride, Worker: in.Worker, Err: errors.New(in.Message)}
	if in.Kind == KindCapacityOverflow && in.Minutes > 0 {
		e.Err = &timeline.OverflowError{Worker: in.Worker, Minutes: in.Minutes}
	}
	return nil
}
