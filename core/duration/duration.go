// Package duration maps rides to their inspection time. The solver calls Of
// for every candidate evaluation so lookups are a single map access.
package duration

import (
	"fmt"

	"github.com/kilianp07/ridecheck/core/model"
)

// Table is an immutable ride -> minutes lookup.
type Table struct {
	minutes map[string]int
}

// New builds a Table from the ride catalog. Rides with a non-positive
// duration or a duplicate identifier are rejected.
func New(rides []model.Ride) (Table, error) {
	t := Table{minutes: make(map[string]int, len(rides))}
	for _, r := range rides {
		if err := r.Validate(); err != nil {
			return Table{}, err
		}
		if _, dup := t.minutes[r.ID]; dup {
			return Table{}, fmt.Errorf("duplicate ride %s", r.ID)
		}
		t.minutes[r.ID] = r.DurationMinutes
	}
	return t, nil
}

// FromMap builds a Table from plain minutes, mostly useful in tests.
func FromMap(m map[string]int) (Table, error) {
	rides := make([]model.Ride, 0, len(m))
	for id, d := range m {
		rides = append(rides, model.Ride{ID: id, DurationMinutes: d})
	}
	return New(rides)
}

// Of returns the inspection duration of the ride.
func (t Table) Of(rideID string) (int, bool) {
	d, ok := t.minutes[rideID]
	return d, ok
}

// MustOf returns the duration of a ride known to be in the table.
func (t Table) MustOf(rideID string) int {
	d, ok := t.minutes[rideID]
	if !ok {
		panic(fmt.Sprintf("duration: unknown ride %s", rideID))
	}
	return d
}

// Total sums the durations of the given rides. Unknown rides count as zero.
func (t Table) Total(rideIDs []string) int {
	total := 0
	for _, id := range rideIDs {
		total += t.minutes[id]
	}
	return total
}

// Len returns the number of rides in the table.
func (t Table) Len() int { return len(t.minutes) }
