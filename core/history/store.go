// Package history keeps the checks of past runs so repeated worker/ride
// pairings can be reviewed. Two backends exist: a rotating JSONL file and a
// SQLite database.
package history

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/kilianp07/ridecheck/core/scheduler"
)

// Record is one scheduled check.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Day       string    `json:"day"`
	Ride      string    `json:"ride"`
	Worker    string    `json:"worker"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
}

// Query filters records. Zero fields match everything.
type Query struct {
	RunID  string
	Worker string
	Ride   string
	Since  time.Time
}

func (q Query) match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Worker != "" && r.Worker != q.Worker {
		return false
	}
	if q.Ride != "" && r.Ride != q.Ride {
		return false
	}
	if !q.Since.IsZero() && r.Timestamp.Before(q.Since) {
		return false
	}
	return true
}

// PairCount tells how often a worker checked a ride.
type PairCount struct {
	Worker string `json:"worker"`
	Ride   string `json:"ride"`
	Count  int    `json:"count"`
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, recs ...Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	// PairCounts aggregates matching records per worker and ride, most
	// frequent first.
	PairCounts(ctx context.Context, q Query) ([]PairCount, error)
	Close() error
}

// FromSchedule turns every check of ws into a record. Overflowing checks are
// kept since they were assigned.
func FromSchedule(ws scheduler.WeeklySchedule) []Record {
	var out []Record
	for _, ds := range ws.Days {
		for _, wt := range ds.Timeline.Workers {
			for _, e := range wt.Entries {
				out = append(out, Record{
					RunID:     ws.RunID,
					Timestamp: ws.GeneratedAt,
					Day:       ds.Day.String(),
					Ride:      e.Ride,
					Worker:    wt.Worker,
					Start:     e.Start,
					End:       e.End,
				})
			}
		}
	}
	return out
}

func countPairs(recs []Record) []PairCount {
	type key struct{ worker, ride string }
	counts := make(map[key]int)
	for _, r := range recs {
		counts[key{r.Worker, r.Ride}]++
	}
	out := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PairCount{Worker: k.worker, Ride: k.ride, Count: n})
	}
	sortPairs(out)
	return out
}

func sortPairs(pcs []PairCount) {
	slices.SortFunc(pcs, func(a, b PairCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Worker, b.Worker); c != 0 {
			return c
		}
		return cmp.Compare(a.Ride, b.Ride)
	})
}
