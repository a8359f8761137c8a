package timeline

import (
	"cmp"
	"slices"

	"github.com/kilianp07/ridecheck/core/duration"
	"github.com/kilianp07/ridecheck/core/problem"
)

// Pack lays each worker's rides back to back from offset 0, ordered by ride
// ID. It never fails: a worker whose last check ends after capacity gets a
// non-zero Overflow so partial schedules can still be shown.
func Pack(capacity int, a problem.Assignment, durations duration.Table) Day {
	day := Day{Capacity: capacity}
	for worker, rides := range a.ByWorker() {
		wt := WorkerTimeline{Worker: worker, Entries: make([]Entry, 0, len(rides))}
		offset := 0
		for _, ride := range rides {
			d, _ := durations.Of(ride)
			wt.Entries = append(wt.Entries, Entry{Ride: ride, Start: offset, End: offset + d})
			offset += d
		}
		if offset > capacity {
			wt.Overflow = offset - capacity
		}
		day.Workers = append(day.Workers, wt)
	}
	slices.SortFunc(day.Workers, func(x, y WorkerTimeline) int { return cmp.Compare(x.Worker, y.Worker) })
	return day
}
