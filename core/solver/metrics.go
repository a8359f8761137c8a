package solver

import (
	"github.com/kilianp07/ridecheck/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSolved     = "solved"
	outcomeIncomplete = "incomplete"
	outcomeInfeasible = "infeasible"
)

var (
	solveRuns       *prometheus.CounterVec
	solveIterations *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridecheck_solver_runs_total",
			Help: "Number of min-conflicts solves by outcome",
		},
		[]string{"day", "outcome"},
	)
	iters := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ridecheck_solver_iterations",
			Help:    "Repair iterations used per solve",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"day"},
	)
	return runs, iters
}

func init() {
	solveRuns, solveIterations = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers solver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveRuns, solveIterations)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveRuns, solveIterations = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func recordRun(day model.Weekday, outcome string, iterations int) {
	solveRuns.WithLabelValues(dayLabel(day), outcome).Inc()
	if outcome != outcomeInfeasible {
		solveIterations.WithLabelValues(dayLabel(day)).Observe(float64(iterations))
	}
}

func dayLabel(d model.Weekday) string { return d.String() }
