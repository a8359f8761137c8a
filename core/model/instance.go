package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInstance is returned when an Instance cannot be scheduled at all.
var ErrInvalidInstance = errors.New("invalid instance")

// Instance is an immutable snapshot of everything needed to build a week.
// The scheduler never keeps a reference to it after a generation call.
type Instance struct {
	Workers []Worker
	Rides   []Ride
	Week    [DaysPerWeek]DayState
}

// Day returns the state for d.
func (in Instance) Day(d Weekday) DayState { return in.Week[d] }

// Validate reports malformed input. All problems are joined so a single call
// lists everything that needs fixing in the editor.
func (in Instance) Validate() error {
	var errs []error
	rides := make(map[string]struct{}, len(in.Rides))
	for _, r := range in.Rides {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := rides[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate ride %s", r.ID))
			continue
		}
		rides[r.ID] = struct{}{}
	}
	workers := make(map[string]struct{}, len(in.Workers))
	for _, w := range in.Workers {
		if w.ID == "" {
			errs = append(errs, fmt.Errorf("worker id is required"))
			continue
		}
		if _, dup := workers[w.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate worker %s", w.ID))
			continue
		}
		workers[w.ID] = struct{}{}
		for _, r := range w.Rides {
			if _, ok := rides[r]; !ok {
				errs = append(errs, fmt.Errorf("worker %s qualified for unknown ride %s", w.ID, r))
			}
		}
	}
	for _, d := range Weekdays {
		st := in.Week[d]
		if st.TimeTillOpening < 0 {
			errs = append(errs, fmt.Errorf("%s: time till opening must not be negative, got %d", d, st.TimeTillOpening))
		}
		for _, id := range st.Absent {
			if _, ok := workers[id]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown absent worker %s", d, id))
			}
		}
		for _, id := range st.Closed {
			if _, ok := rides[id]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown closed ride %s", d, id))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInstance, errors.Join(errs...))
}
