package solver

import (
	"math/rand/v2"
	"slices"

	"github.com/kilianp07/ridecheck/core/problem"
)

// Balance evens out the loads of a zero-conflict assignment in place. It
// repeatedly moves one ride from a worker to a qualified worker with more
// time left whenever that shrinks the gap between the two, i.e. when
// |(A-d)-(T+d)| < |A-T| with A and T the remaining minutes of the accepting
// and transferring worker. Workers and rides are visited in random order so
// different runs reach different local optima. A move never pushes the
// accepting worker past capacity. It returns the number of moves made.
func Balance(p problem.Problem, a problem.Assignment, rng *rand.Rand) int {
	if len(a) == 0 {
		return 0
	}
	if rng == nil {
		rng = EntropySource(p.Day)
	}
	domains := make(map[string][]string, len(p.Variables))
	dur := make(map[string]int, len(p.Variables))
	for _, v := range p.Variables {
		domains[v.Ride] = v.Domain
		dur[v.Ride] = v.Duration
	}
	load := a.Loads(p)
	workers := p.Workers()

	moves := 0
	for transfer(a, workers, domains, dur, load, p.Capacity, rng) {
		moves++
	}
	return moves
}

// transfer performs the first improving move found and reports whether one
// was made.
func transfer(a problem.Assignment, workers []string, domains map[string][]string, dur, load map[string]int, capacity int, rng *rand.Rand) bool {
	order := slices.Clone(workers)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	for _, from := range order {
		var rides []string
		for ride, w := range a {
			if w == from {
				rides = append(rides, ride)
			}
		}
		slices.Sort(rides)
		rng.Shuffle(len(rides), func(i, j int) { rides[i], rides[j] = rides[j], rides[i] })
		for _, ride := range rides {
			d := dur[ride]
			for _, to := range domains[ride] {
				if to == from || !improves(load[to], load[from], d, capacity) {
					continue
				}
				a[ride] = to
				load[from] -= d
				load[to] += d
				return true
			}
		}
	}
	return false
}

// improves applies the transfer rule on remaining minutes. The accepting
// worker must have strictly more time left than the transferring one.
func improves(toLoad, fromLoad, d, capacity int) bool {
	accept, give := capacity-toLoad, capacity-fromLoad
	if accept <= give || toLoad+d > capacity {
		return false
	}
	return abs(accept-give-2*d) < accept-give
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
