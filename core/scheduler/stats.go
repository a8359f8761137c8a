package scheduler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats describes how evenly the inspection minutes are spread.
type Stats struct {
	Checks int `json:"checks"`
	// Minutes is the weekly inspection load per worker, including workers
	// left idle for the whole week.
	Minutes map[string]int `json:"minutes"`
	Mean    float64        `json:"mean"`
	StdDev  float64        `json:"std_dev"`
	// CV is the coefficient of variation, 0 when nobody works.
	CV float64 `json:"cv"`
}

// ComputeStats derives workload statistics for the given workers.
func ComputeStats(days []DaySchedule, workers []string) Stats {
	s := Stats{Minutes: make(map[string]int, len(workers))}
	for _, w := range workers {
		s.Minutes[w] = 0
	}
	for _, d := range days {
		for _, wt := range d.Timeline.Workers {
			for _, e := range wt.Entries {
				s.Minutes[wt.Worker] += e.Minutes()
				s.Checks++
			}
		}
	}
	if len(s.Minutes) == 0 {
		return s
	}
	ids := make([]string, 0, len(s.Minutes))
	for id := range s.Minutes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	xs := make([]float64, len(ids))
	for i, id := range ids {
		xs[i] = float64(s.Minutes[id])
	}
	if len(xs) == 1 {
		s.Mean = xs[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	}
	if s.Mean > 0 && !math.IsNaN(s.StdDev) {
		s.CV = s.StdDev / s.Mean
	}
	return s
}
