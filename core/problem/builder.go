package problem

import (
	"cmp"
	"slices"

	"github.com/kilianp07/ridecheck/core/duration"
	"github.com/kilianp07/ridecheck/core/model"
)

// Catalog holds the worker and ride catalogs in a form ready for building
// daily problems. It is derived from a single instance snapshot.
type Catalog struct {
	workers   []model.Worker
	rides     []model.Ride
	durations duration.Table
}

// NewCatalog sorts the catalogs by ID and builds the duration table.
func NewCatalog(workers []model.Worker, rides []model.Ride) (Catalog, error) {
	tab, err := duration.New(rides)
	if err != nil {
		return Catalog{}, err
	}
	c := Catalog{
		workers:   slices.Clone(workers),
		rides:     slices.Clone(rides),
		durations: tab,
	}
	slices.SortFunc(c.workers, func(a, b model.Worker) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(c.rides, func(a, b model.Ride) int { return cmp.Compare(a.ID, b.ID) })
	return c, nil
}

// Durations exposes the ride duration table.
func (c Catalog) Durations() duration.Table { return c.durations }

// Build produces the problem for one day. A closed park yields an empty
// problem. Rides without any eligible worker keep an empty domain; callers
// detect them with EmptyDomains.
func (c Catalog) Build(day model.Weekday, st model.DayState) Problem {
	p := Problem{Day: day, Capacity: st.TimeTillOpening, Durations: c.durations}
	if st.ParkClosed() {
		return p
	}
	for _, r := range c.rides {
		if st.IsClosed(r.ID) {
			p.Closed = append(p.Closed, r.ID)
			continue
		}
		v := Variable{Ride: r.ID, Duration: r.DurationMinutes}
		for _, w := range c.workers {
			if w.CanCheck(r.ID) && !st.IsAbsent(w.ID) {
				v.Domain = append(v.Domain, w.ID)
			}
		}
		p.Variables = append(p.Variables, v)
	}
	return p
}
