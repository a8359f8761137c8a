package solver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/problem"
)

func buildProblem(t *testing.T, workers []model.Worker, rides []model.Ride, st model.DayState) problem.Problem {
	t.Helper()
	c, err := problem.NewCatalog(workers, rides)
	require.NoError(t, err)
	return c.Build(model.Monday, st)
}

// crew returns n workers qualified for every ride.
func crew(n int, rides []model.Ride) []model.Worker {
	ids := make([]string, len(rides))
	for i, r := range rides {
		ids[i] = r.ID
	}
	ws := make([]model.Worker, n)
	for i := range ws {
		ws[i] = model.Worker{ID: fmt.Sprintf("w%d", i+1), Rides: ids}
	}
	return ws
}

func newSolver(t *testing.T, cfg Config) *MinConflicts {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestSolveFeasibleRespectsCapacity(t *testing.T) {
	var rides []model.Ride
	for i := 0; i < 8; i++ {
		rides = append(rides, model.Ride{ID: fmt.Sprintf("r%d", i), DurationMinutes: 10 + i})
	}
	workers := crew(4, rides)
	workers[0].Rides = workers[0].Rides[:3]
	p := buildProblem(t, workers, rides, model.DayState{TimeTillOpening: 60, Absent: []string{"w4"}})
	s := newSolver(t, Config{})

	for run := 0; run < 50; run++ {
		res, err := s.Solve(context.Background(), p)
		require.NoError(t, err)
		require.True(t, res.Complete)
		assert.Zero(t, res.Conflicts)
		assert.True(t, res.Assignment.Complete(p))
		for w, load := range res.Assignment.Loads(p) {
			assert.LessOrEqual(t, load, p.Capacity, "worker %s overloaded", w)
		}
		for ride, w := range res.Assignment {
			assert.True(t, p.Allows(ride, w), "%s not allowed on %s", w, ride)
			assert.NotEqual(t, "w4", w)
		}
	}
}

func TestSolveIncompleteSingleWorker(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 30}, {ID: "B", DurationMinutes: 30}}
	p := buildProblem(t, crew(1, rides), rides, model.DayState{TimeTillOpening: 50})
	s := newSolver(t, Config{MaxIterations: 100})

	res, err := s.Solve(context.Background(), p)
	require.ErrorIs(t, err, ErrSolveIncomplete)
	assert.False(t, res.Complete)
	assert.Equal(t, 10, res.Conflicts)
	assert.Equal(t, 100, res.Iterations)
	assert.Equal(t, problem.Assignment{"A": "w1", "B": "w1"}, res.Assignment)
}

func TestSolveWorkersMetric(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 30}, {ID: "B", DurationMinutes: 30}}
	p := buildProblem(t, crew(1, rides), rides, model.DayState{TimeTillOpening: 50})
	s := newSolver(t, Config{MaxIterations: 5, Metric: MetricWorkers})
	res, err := s.Solve(context.Background(), p)
	require.ErrorIs(t, err, ErrSolveIncomplete)
	assert.Equal(t, 1, res.Conflicts)
}

func TestSolveInfeasibleDomain(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 10}, {ID: "B", DurationMinutes: 10}}
	workers := []model.Worker{{ID: "solo", Rides: []string{"A"}}, {ID: "other", Rides: []string{"B"}}}
	p := buildProblem(t, workers, rides, model.DayState{TimeTillOpening: 60, Absent: []string{"solo"}})
	s := newSolver(t, Config{})

	_, err := s.Solve(context.Background(), p)
	require.ErrorIs(t, err, ErrInfeasibleDomain)
	var ide *InfeasibleDomainError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, "A", ide.Ride)
	assert.Equal(t, model.Monday, ide.Day)
	assert.Contains(t, err.Error(), "ride A")
}

func TestSolveEmptyProblem(t *testing.T) {
	p := buildProblem(t, nil, []model.Ride{{ID: "A", DurationMinutes: 5}}, model.DayState{})
	res, err := newSolver(t, Config{}).Solve(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Empty(t, res.Assignment)
}

func TestSolveSeededIsReproducible(t *testing.T) {
	var rides []model.Ride
	for i := 0; i < 6; i++ {
		rides = append(rides, model.Ride{ID: fmt.Sprintf("r%d", i), DurationMinutes: 15})
	}
	p := buildProblem(t, crew(3, rides), rides, model.DayState{TimeTillOpening: 30})
	first, err := newSolver(t, Config{Seed: 42}).Solve(context.Background(), p)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := newSolver(t, Config{Seed: 42}).Solve(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, first.Assignment, again.Assignment)
	}
}

func TestSolveVariesAcrossRuns(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 20}, {ID: "B", DurationMinutes: 20}}
	p := buildProblem(t, crew(2, rides), rides, model.DayState{TimeTillOpening: 40})
	s := newSolver(t, Config{})

	first, err := s.Solve(context.Background(), p)
	require.NoError(t, err)
	differs := false
	for i := 0; i < 30; i++ {
		res, err := s.Solve(context.Background(), p)
		require.NoError(t, err)
		if res.Assignment["A"] != first.Assignment["A"] || res.Assignment["B"] != first.Assignment["B"] {
			differs = true
		}
	}
	assert.True(t, differs, "30 runs produced the same assignment")
}

func TestSolveCancelled(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 30}, {ID: "B", DurationMinutes: 30}}
	p := buildProblem(t, crew(1, rides), rides, model.DayState{TimeTillOpening: 50})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newSolver(t, Config{}).Solve(ctx, p)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Iterations)
	assert.Len(t, res.Assignment, 2)
}

func TestConflictsFunction(t *testing.T) {
	rides := []model.Ride{{ID: "A", DurationMinutes: 30}, {ID: "B", DurationMinutes: 30}, {ID: "C", DurationMinutes: 45}}
	p := buildProblem(t, crew(2, rides), rides, model.DayState{TimeTillOpening: 50})
	a := problem.Assignment{"A": "w1", "B": "w1", "C": "w2"}
	assert.Equal(t, 10, Conflicts(p, a, OverflowMinutes{}))
	assert.Equal(t, 1, Conflicts(p, a, OverloadedWorkers{}))
	assert.Zero(t, Conflicts(p, problem.Assignment{"A": "w1", "C": "w2"}, OverflowMinutes{}))
}

func TestMetricByName(t *testing.T) {
	m, err := MetricByName("")
	require.NoError(t, err)
	assert.Equal(t, MetricMinutes, m.Name())
	m, err = MetricByName("workers")
	require.NoError(t, err)
	assert.Equal(t, MetricWorkers, m.Name())
	_, err = MetricByName("magic")
	assert.Error(t, err)
	for _, m := range []Metric{OverflowMinutes{}, OverloadedWorkers{}} {
		assert.Zero(t, m.Penalty(40, 40))
		assert.Positive(t, m.Penalty(41, 40))
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{MaxIterations: -1})
	assert.Error(t, err)
	_, err = New(Config{Metric: "magic"})
	assert.Error(t, err)
}

func TestSolveMetricsRecorded(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	rides := []model.Ride{{ID: "A", DurationMinutes: 30}, {ID: "B", DurationMinutes: 30}}
	p := buildProblem(t, crew(1, rides), rides, model.DayState{TimeTillOpening: 50})
	_, _ = newSolver(t, Config{MaxIterations: 3}).Solve(context.Background(), p)
	p = buildProblem(t, crew(2, rides), rides, model.DayState{TimeTillOpening: 60})
	_, err := newSolver(t, Config{}).Solve(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(solveRuns.WithLabelValues("Monday", outcomeIncomplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(solveRuns.WithLabelValues("Monday", outcomeSolved)))
	assert.Equal(t, 1, testutil.CollectAndCount(solveIterations))
}
