package solver

import "fmt"

// Metric scores how badly one worker's load violates the capacity. A Metric
// must return zero if and only if load <= capacity, so a zero total always
// means every worker fits in the window.
type Metric interface {
	Penalty(load, capacity int) int
	Name() string
}

// OverflowMinutes weighs a violation by the number of minutes over capacity.
// It gives the search a gradient when several workers are overloaded.
type OverflowMinutes struct{}

func (OverflowMinutes) Penalty(load, capacity int) int {
	if load <= capacity {
		return 0
	}
	return load - capacity
}

func (OverflowMinutes) Name() string { return MetricMinutes }

// OverloadedWorkers counts each overloaded worker once.
type OverloadedWorkers struct{}

func (OverloadedWorkers) Penalty(load, capacity int) int {
	if load <= capacity {
		return 0
	}
	return 1
}

func (OverloadedWorkers) Name() string { return MetricWorkers }

const (
	MetricMinutes = "minutes"
	MetricWorkers = "workers"
)

// MetricByName resolves a configured metric name.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", MetricMinutes:
		return OverflowMinutes{}, nil
	case MetricWorkers:
		return OverloadedWorkers{}, nil
	default:
		return nil, fmt.Errorf("unknown conflict metric %s", name)
	}
}
