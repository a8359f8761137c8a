// Package problem encodes one day of ride checks as a constraint satisfaction
// problem. Qualifications and absences are folded into variable domains so the
// solver only has to deal with the capacity constraint.
package problem

import (
	"slices"

	"github.com/kilianp07/ridecheck/core/duration"
	"github.com/kilianp07/ridecheck/core/model"
)

// Variable is one open ride that needs exactly one worker.
type Variable struct {
	Ride     string
	Duration int
	// Domain lists the qualified, available workers sorted by ID.
	Domain []string
}

// Problem is the CSP instance for a single day.
type Problem struct {
	Day       model.Weekday
	Capacity  int // minutes till opening, shared by every worker
	Variables []Variable
	// Closed lists the rides closed that day. They get no variable.
	Closed    []string
	Durations duration.Table
}

// Empty reports whether there is nothing to schedule.
func (p Problem) Empty() bool { return len(p.Variables) == 0 }

// Rides returns the ride of every variable in order.
func (p Problem) Rides() []string {
	out := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		out[i] = v.Ride
	}
	return out
}

// Workers returns the union of all domains, sorted.
func (p Problem) Workers() []string {
	var out []string
	for _, v := range p.Variables {
		for _, w := range v.Domain {
			if !slices.Contains(out, w) {
				out = append(out, w)
			}
		}
	}
	slices.Sort(out)
	return out
}

// EmptyDomains lists rides nobody can check that day.
func (p Problem) EmptyDomains() []string {
	var out []string
	for _, v := range p.Variables {
		if len(v.Domain) == 0 {
			out = append(out, v.Ride)
		}
	}
	return out
}

// Without returns a copy of p that no longer contains the given rides.
func (p Problem) Without(rides ...string) Problem {
	cp := p
	cp.Variables = make([]Variable, 0, len(p.Variables))
	for _, v := range p.Variables {
		if slices.Contains(rides, v.Ride) {
			continue
		}
		cp.Variables = append(cp.Variables, v)
	}
	return cp
}

// Allows reports whether worker is in the domain of ride.
func (p Problem) Allows(ride, worker string) bool {
	for _, v := range p.Variables {
		if v.Ride == ride {
			return slices.Contains(v.Domain, worker)
		}
	}
	return false
}
