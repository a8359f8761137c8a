package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ridecheck/core/metrics"
)

// PromRecorder exposes schedule generation outcomes as Prometheus metrics.
type PromRecorder struct {
	days        *prometheus.CounterVec
	iterations  *prometheus.HistogramVec
	conflicts   *prometheus.GaugeVec
	closedRides *prometheus.CounterVec
	unassigned  *prometheus.CounterVec
	weeks       *prometheus.CounterVec
	loadStdDev  prometheus.Gauge
}

// NewPromRecorder registers the metrics on the default registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers the metrics on reg. Collectors that
// are already registered are reused. A nil registerer defaults to the global
// Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecheck_days_total",
			Help: "Scheduled days by outcome",
		}, []string{"day", "status"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ridecheck_day_iterations",
			Help:    "Min-conflicts iterations spent per day",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"day"}),
		conflicts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ridecheck_day_conflicts",
			Help: "Residual conflicts of the last schedule per day",
		}, []string{"day"}),
		closedRides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecheck_closed_rides_total",
			Help: "Rides closed on a scheduled day",
		}, []string{"day"}),
		unassigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecheck_unassigned_rides_total",
			Help: "Rides left without an eligible worker",
		}, []string{"day"}),
		weeks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridecheck_weeks_total",
			Help: "Generated weeks by completeness",
		}, []string{"complete"}),
		loadStdDev: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ridecheck_week_load_stddev_minutes",
			Help: "Standard deviation of weekly inspection minutes per worker",
		}),
	}

	var err error
	if r.days, err = register(reg, r.days); err != nil {
		return nil, err
	}
	if r.iterations, err = register(reg, r.iterations); err != nil {
		return nil, err
	}
	if r.conflicts, err = register(reg, r.conflicts); err != nil {
		return nil, err
	}
	if r.closedRides, err = register(reg, r.closedRides); err != nil {
		return nil, err
	}
	if r.unassigned, err = register(reg, r.unassigned); err != nil {
		return nil, err
	}
	if r.weeks, err = register(reg, r.weeks); err != nil {
		return nil, err
	}
	if r.loadStdDev, err = register(reg, r.loadStdDev); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDay updates the per-day series.
func (r *PromRecorder) RecordDay(ev coremetrics.DayOutcome) error {
	r.days.WithLabelValues(ev.Day, ev.Status).Inc()
	r.iterations.WithLabelValues(ev.Day).Observe(float64(ev.Iterations))
	r.conflicts.WithLabelValues(ev.Day).Set(float64(ev.Conflicts))
	r.closedRides.WithLabelValues(ev.Day).Add(float64(ev.ClosedRides))
	r.unassigned.WithLabelValues(ev.Day).Add(float64(ev.Unassigned))
	return nil
}

// RecordWeek updates the run series.
func (r *PromRecorder) RecordWeek(ev coremetrics.WeekSummary) error {
	complete := true
	for status, n := range ev.Statuses {
		if n > 0 && status != "scheduled" && status != "park_closed" {
			complete = false
		}
	}
	r.weeks.WithLabelValues(strconv.FormatBool(complete)).Inc()
	r.loadStdDev.Set(ev.LoadStdDev)
	return nil
}
