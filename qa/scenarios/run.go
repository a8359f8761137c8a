package scenarios

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ridecheck/core/events"
	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/core/solver"
	"github.com/kilianp07/ridecheck/infra/logger"
	"github.com/kilianp07/ridecheck/infra/metrics"
	"github.com/kilianp07/ridecheck/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	inst, err := sc.ToModel()
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorderWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom recorder: %v", err)
	}
	slv, err := solver.New(sc.Solver)
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	bus := eventbus.New[events.Event](2 * model.DaysPerWeek)
	defer bus.Close()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	s := scheduler.New(scheduler.Config{Parallel: sc.Parallel}, slv,
		scheduler.WithLogger(logger.NopLogger{}),
		scheduler.WithRecorder(rec),
		scheduler.WithEvents(bus),
	)

	for run := 0; run < sc.Runs; run++ {
		ws, err := s.Generate(context.Background(), inst)
		if err != nil {
			t.Fatalf("run %d: generate: %v", run, err)
		}
		if err := scheduler.Validate(inst, ws); err != nil {
			t.Errorf("run %d: invalid schedule: %v", run, err)
		}
		checkExpected(t, run, sc.Expected, ws)
		if n := drain(sub); n != model.DaysPerWeek+1 {
			t.Errorf("run %d: expected %d events, got %d", run, model.DaysPerWeek+1, n)
		}
	}

	if got := counterSum(t, reg, "ridecheck_weeks_total"); got != float64(sc.Runs) {
		t.Errorf("scenario %s expected %d weeks recorded, got %v", sc.Name, sc.Runs, got)
	}
	if got := counterSum(t, reg, "ridecheck_days_total"); got != float64(sc.Runs*model.DaysPerWeek) {
		t.Errorf("scenario %s expected %d days recorded, got %v", sc.Name, sc.Runs*model.DaysPerWeek, got)
	}
}

func checkExpected(t *testing.T, run int, exp Expected, ws scheduler.WeeklySchedule) {
	t.Helper()
	if exp.Complete != nil && ws.Complete() != *exp.Complete {
		t.Errorf("run %d: complete = %v, want %v", run, ws.Complete(), *exp.Complete)
	}
	if exp.Checks != nil && ws.Stats.Checks != *exp.Checks {
		t.Errorf("run %d: checks = %d, want %d", run, ws.Stats.Checks, *exp.Checks)
	}
	for name, want := range exp.Statuses {
		ds := day(t, ws, name)
		if string(ds.Status) != want {
			t.Errorf("run %d: %s status = %s, want %s", run, name, ds.Status, want)
		}
	}
	for name, want := range exp.Unassigned {
		if got := day(t, ws, name).Unassigned; !slices.Equal(got, want) {
			t.Errorf("run %d: %s unassigned = %v, want %v", run, name, got, want)
		}
	}
	for name, want := range exp.Closed {
		if got := day(t, ws, name).ClosedRides; !slices.Equal(got, want) {
			t.Errorf("run %d: %s closed = %v, want %v", run, name, got, want)
		}
	}
}

func day(t *testing.T, ws scheduler.WeeklySchedule, name string) scheduler.DaySchedule {
	t.Helper()
	d, err := model.ParseWeekday(name)
	if err != nil {
		t.Fatalf("expected: %v", err)
	}
	return ws.Day(d)
}

// drain counts the events already buffered on ch.
func drain(ch <-chan events.Event) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	sum := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
