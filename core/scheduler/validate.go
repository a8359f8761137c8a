package scheduler

import (
	"errors"
	"fmt"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/problem"
)

// ErrInvalidSchedule is returned by the validators.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ValidateDay checks a scheduled day against its problem: every open ride
// with a non-empty domain is checked exactly once, by a worker of its
// domain, and nobody works past the window. Days that are not complete are
// only checked for qualification and coverage.
func ValidateDay(p problem.Problem, ds DaySchedule) error {
	var errs []error
	seen := make(map[string]int)
	for _, wt := range ds.Timeline.Workers {
		end := 0
		for _, e := range wt.Entries {
			seen[e.Ride]++
			if !p.Allows(e.Ride, wt.Worker) {
				errs = append(errs, fmt.Errorf("ride %s: worker %s not eligible", e.Ride, wt.Worker))
			}
			if e.Start != end {
				errs = append(errs, fmt.Errorf("worker %s: ride %s starts at %d, expected %d", wt.Worker, e.Ride, e.Start, end))
			}
			end = e.End
		}
		if ds.Complete() && end > p.Capacity {
			errs = append(errs, fmt.Errorf("worker %s: ends at %d after %d", wt.Worker, end, p.Capacity))
		}
	}
	unassigned := make(map[string]bool, len(ds.Unassigned))
	for _, r := range ds.Unassigned {
		unassigned[r] = true
	}
	for _, v := range p.Variables {
		n := seen[v.Ride]
		switch {
		case len(v.Domain) == 0 && !unassigned[v.Ride]:
			errs = append(errs, fmt.Errorf("ride %s: no eligible worker but not reported", v.Ride))
		case len(v.Domain) > 0 && n != 1:
			errs = append(errs, fmt.Errorf("ride %s: checked %d times", v.Ride, n))
		}
		delete(seen, v.Ride)
	}
	for r := range seen {
		errs = append(errs, fmt.Errorf("ride %s: not open on %s", r, p.Day))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, p.Day, errors.Join(errs...))
	}
	return nil
}

// Validate checks every day of ws against inst.
func Validate(inst model.Instance, ws WeeklySchedule) error {
	cat, err := problem.NewCatalog(inst.Workers, inst.Rides)
	if err != nil {
		return err
	}
	var errs []error
	for _, d := range model.Weekdays {
		p := cat.Build(d, inst.Day(d))
		ds := ws.Day(d)
		if p.Capacity == 0 {
			if !ds.Timeline.Empty() {
				errs = append(errs, fmt.Errorf("%w: %s: park closed but checks scheduled", ErrInvalidSchedule, d))
			}
			continue
		}
		if err := ValidateDay(p, ds); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
