package solver

import (
	"errors"
	"fmt"

	"github.com/kilianp07/ridecheck/core/model"
)

// ErrInfeasibleDomain indicates a ride has no qualified, available worker.
var ErrInfeasibleDomain = errors.New("no eligible worker")

// ErrSolveIncomplete indicates the iteration bound was reached before all
// capacity conflicts were repaired. The accompanying Result holds the best
// assignment observed.
var ErrSolveIncomplete = errors.New("solve incomplete")

// InfeasibleDomainError names the ride that cannot be checked on a day.
type InfeasibleDomainError struct {
	Day  model.Weekday
	Ride string
}

func (e *InfeasibleDomainError) Error() string {
	return fmt.Sprintf("%s: ride %s: %v", e.Day, e.Ride, ErrInfeasibleDomain)
}

func (e *InfeasibleDomainError) Unwrap() error { return ErrInfeasibleDomain }
