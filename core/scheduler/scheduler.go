package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/ridecheck/core/events"
	"github.com/kilianp07/ridecheck/core/logger"
	"github.com/kilianp07/ridecheck/core/metrics"
	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/problem"
	"github.com/kilianp07/ridecheck/core/solver"
	"github.com/kilianp07/ridecheck/core/timeline"
	"github.com/kilianp07/ridecheck/internal/eventbus"
)

// Scheduler generates weekly schedules from instance snapshots.
type Scheduler struct {
	cfg      Config
	solver   solver.Solver
	logger   logger.Logger
	recorder metrics.Recorder
	bus      *eventbus.Bus[events.Event]
	now      func() time.Time
	newID    func() string
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for per-day outcomes.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithEvents publishes progress on bus. The scheduler never closes it.
func WithEvents(bus *eventbus.Bus[events.Event]) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRunID overrides the run ID generator.
func WithRunID(f func() string) Option {
	return func(s *Scheduler) { s.newID = f }
}

// New creates a Scheduler solving each day with slv.
func New(cfg Config, slv solver.Solver, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		solver:   slv,
		logger:   nopLogger{},
		recorder: metrics.NopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate schedules the whole week. The returned error is non-nil only when
// the instance is malformed or ctx is cancelled; per-day problems are kept in
// the schedule (see WeeklySchedule.Err).
func (s *Scheduler) Generate(ctx context.Context, inst model.Instance) (WeeklySchedule, error) {
	if err := inst.Validate(); err != nil {
		return WeeklySchedule{}, err
	}
	cat, err := problem.NewCatalog(inst.Workers, inst.Rides)
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("%w: %w", model.ErrInvalidInstance, err)
	}

	start := s.now()
	ws := WeeklySchedule{RunID: s.newID(), GeneratedAt: start}
	s.logger.Infow("generating week", map[string]any{
		"run_id":  ws.RunID,
		"workers": len(inst.Workers),
		"rides":   len(inst.Rides),
	})

	if s.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, d := range model.Weekdays {
			g.Go(func() error {
				ds, err := s.scheduleDay(gctx, ws.RunID, cat, d, inst.Day(d))
				ws.Days[d] = ds
				return err
			})
		}
		err = g.Wait()
	} else {
		for _, d := range model.Weekdays {
			var ds DaySchedule
			ds, err = s.scheduleDay(ctx, ws.RunID, cat, d, inst.Day(d))
			ws.Days[d] = ds
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		return ws, err
	}

	ids := make([]string, len(inst.Workers))
	for i, w := range inst.Workers {
		ids[i] = w.ID
	}
	ws.Stats = ComputeStats(ws.Days[:], ids)
	elapsed := s.now().Sub(start)
	s.recordWeek(ws, elapsed)
	s.publish(events.WeekEvent{RunID: ws.RunID, Complete: ws.Complete(), Elapsed: elapsed})
	s.logger.Infow("week generated", map[string]any{
		"run_id":   ws.RunID,
		"complete": ws.Complete(),
		"checks":   ws.Stats.Checks,
		"elapsed":  elapsed.String(),
	})
	return ws, nil
}

// ScheduleDay schedules a single day outside of a weekly run.
func (s *Scheduler) ScheduleDay(ctx context.Context, inst model.Instance, d model.Weekday) (DaySchedule, error) {
	if !d.Valid() {
		return DaySchedule{}, fmt.Errorf("invalid weekday %d", int(d))
	}
	if err := inst.Validate(); err != nil {
		return DaySchedule{}, err
	}
	cat, err := problem.NewCatalog(inst.Workers, inst.Rides)
	if err != nil {
		return DaySchedule{}, fmt.Errorf("%w: %w", model.ErrInvalidInstance, err)
	}
	return s.scheduleDay(ctx, s.newID(), cat, d, inst.Day(d))
}

// scheduleDay returns an error only when the solve was interrupted or the
// solver failed in an unexpected way.
func (s *Scheduler) scheduleDay(ctx context.Context, runID string, cat problem.Catalog, d model.Weekday, st model.DayState) (DaySchedule, error) {
	start := s.now()
	ds := DaySchedule{Day: d, Capacity: st.TimeTillOpening}
	if st.ParkClosed() {
		ds.Status = StatusParkClosed
		s.finishDay(runID, ds, 0, start)
		return ds, nil
	}

	p := cat.Build(d, st)
	ds.ClosedRides = p.Closed
	if empty := p.EmptyDomains(); len(empty) > 0 {
		for _, ride := range empty {
			ds.Errors = append(ds.Errors, &DayError{
				Day:  d,
				Kind: KindInfeasibleDomain,
				Ride: ride,
				Err:  &solver.InfeasibleDomainError{Day: d, Ride: ride},
			})
		}
		ds.Unassigned = empty
		p = p.Without(empty...)
	}

	res, err := s.solver.Solve(ctx, p)
	switch {
	case err == nil:
	case errors.Is(err, solver.ErrSolveIncomplete):
		ds.Errors = append(ds.Errors, &DayError{Day: d, Kind: KindSolveIncomplete, Err: err})
	default:
		return ds, fmt.Errorf("%s: %w", d, err)
	}

	ds.Timeline = timeline.Pack(p.Capacity, res.Assignment, p.Durations)
	ds.Iterations = res.Iterations
	ds.Conflicts = res.Conflicts
	ds.Moves = res.Moves
	overflow := 0
	for _, o := range ds.Timeline.Overflows() {
		overflow += o.Minutes
		ds.Errors = append(ds.Errors, &DayError{Day: d, Kind: KindCapacityOverflow, Worker: o.Worker, Err: o})
	}

	switch {
	case len(ds.Unassigned) > 0:
		ds.Status = StatusInfeasible
	case !res.Complete:
		ds.Status = StatusIncomplete
	default:
		ds.Status = StatusScheduled
	}
	s.finishDay(runID, ds, overflow, start)
	return ds, nil
}

func (s *Scheduler) finishDay(runID string, ds DaySchedule, overflow int, start time.Time) {
	elapsed := s.now().Sub(start)
	fields := map[string]any{
		"run_id":     runID,
		"day":        ds.Day.String(),
		"status":     string(ds.Status),
		"iterations": ds.Iterations,
		"conflicts":  ds.Conflicts,
		"moves":      ds.Moves,
	}
	if len(ds.Errors) > 0 {
		s.logger.Warnf("%s: %d scheduling problems: %v", ds.Day, len(ds.Errors), ds.Errors[0])
	}
	s.logger.Infow("day scheduled", fields)

	workers := 0
	for _, wt := range ds.Timeline.Workers {
		if len(wt.Entries) > 0 {
			workers++
		}
	}
	err := s.recorder.RecordDay(metrics.DayOutcome{
		RunID:           runID,
		Day:             ds.Day.String(),
		Status:          string(ds.Status),
		Rides:           len(ds.Timeline.Rides()),
		ClosedRides:     len(ds.ClosedRides),
		Unassigned:      len(ds.Unassigned),
		Workers:         workers,
		Iterations:      ds.Iterations,
		Conflicts:       ds.Conflicts,
		OverflowMinutes: overflow,
		Elapsed:         elapsed,
		Time:            start,
	})
	if err != nil {
		s.logger.Errorf("record day %s: %v", ds.Day, err)
	}

	var dayErr error
	if len(ds.Errors) > 0 {
		errs := make([]error, len(ds.Errors))
		for i, e := range ds.Errors {
			errs[i] = e
		}
		dayErr = errors.Join(errs...)
	}
	s.publish(events.DayEvent{RunID: runID, Day: ds.Day, Status: string(ds.Status), Elapsed: elapsed, Err: dayErr})
}

func (s *Scheduler) recordWeek(ws WeeklySchedule, elapsed time.Duration) {
	wr, ok := s.recorder.(metrics.WeekRecorder)
	if !ok {
		return
	}
	statuses := make(map[string]int)
	for _, d := range ws.Days {
		statuses[string(d.Status)]++
	}
	err := wr.RecordWeek(metrics.WeekSummary{
		RunID:      ws.RunID,
		Statuses:   statuses,
		Checks:     ws.Stats.Checks,
		LoadMean:   ws.Stats.Mean,
		LoadStdDev: ws.Stats.StdDev,
		Elapsed:    elapsed,
		Time:       ws.GeneratedAt,
	})
	if err != nil {
		s.logger.Errorf("record week: %v", err)
	}
}

func (s *Scheduler) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
