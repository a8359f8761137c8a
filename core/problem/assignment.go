package problem

import "slices"

// Assignment maps a ride to the worker chosen to check it.
type Assignment map[string]string

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	cp := make(Assignment, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// Complete reports whether every variable of p has a value.
func (a Assignment) Complete(p Problem) bool {
	for _, v := range p.Variables {
		if _, ok := a[v.Ride]; !ok {
			return false
		}
	}
	return true
}

// ByWorker groups rides per worker. Ride lists are sorted by ID.
func (a Assignment) ByWorker() map[string][]string {
	out := make(map[string][]string)
	for ride, w := range a {
		out[w] = append(out[w], ride)
	}
	for w := range out {
		slices.Sort(out[w])
	}
	return out
}

// Loads returns the total inspection minutes per worker.
func (a Assignment) Loads(p Problem) map[string]int {
	out := make(map[string]int)
	for ride, w := range a {
		d, _ := p.Durations.Of(ride)
		out[w] += d
	}
	return out
}
