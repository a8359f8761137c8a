package solver

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/kilianp07/ridecheck/core/problem"
)

// Solver assigns workers to the rides of one day.
type Solver interface {
	Solve(ctx context.Context, p problem.Problem) (Result, error)
}

// Result is the outcome of a solve. When Complete is false the assignment is
// the best one seen and still covers every ride.
type Result struct {
	Assignment problem.Assignment
	Conflicts  int
	Iterations int
	Complete   bool
	// Moves counts the balancing transfers applied to a complete assignment.
	Moves int
}

// MinConflicts is the randomized local repair search.
type MinConflicts struct {
	MaxIterations int
	Metric        Metric
	Rand          RandSource
	// NoBalance returns the first zero-conflict assignment as found.
	NoBalance bool
}

// New returns a MinConflicts solver built from cfg. Defaults are applied to
// a copy of cfg.
func New(cfg Config) (*MinConflicts, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, _ := MetricByName(cfg.Metric)
	src := RandSource(EntropySource)
	if cfg.Seed != 0 {
		src = SeededSource(cfg.Seed)
	}
	return &MinConflicts{MaxIterations: cfg.MaxIterations, Metric: m, Rand: src, NoBalance: cfg.NoBalance}, nil
}

// Solve runs the search. It returns ErrInfeasibleDomain (joined per ride)
// without searching when a ride has an empty domain, and ErrSolveIncomplete
// together with the best assignment when the iteration bound is exhausted or
// no ride sits on a penalised worker. Cancelling ctx stops the search with
// the best assignment and ctx.Err(). A complete assignment is evened out with
// Balance unless NoBalance is set.
func (s *MinConflicts) Solve(ctx context.Context, p problem.Problem) (Result, error) {
	if empty := p.EmptyDomains(); len(empty) > 0 {
		errs := make([]error, len(empty))
		for i, ride := range empty {
			errs[i] = &InfeasibleDomainError{Day: p.Day, Ride: ride}
		}
		recordRun(p.Day, outcomeInfeasible, 0)
		return Result{}, errors.Join(errs...)
	}
	if p.Empty() {
		return Result{Assignment: problem.Assignment{}, Complete: true}, nil
	}

	metric := s.Metric
	if metric == nil {
		metric = OverflowMinutes{}
	}
	src := s.Rand
	if src == nil {
		src = EntropySource
	}
	st := newSearch(p, metric, src(p.Day))
	best := st.snapshot()
	bestConflicts := st.conflicts

	it := 0
	for ; it < s.MaxIterations && st.conflicts > 0; it++ {
		if err := ctx.Err(); err != nil {
			return Result{Assignment: best, Conflicts: bestConflicts, Iterations: it}, err
		}
		x, ok := st.pickConflicted()
		if !ok {
			break
		}
		st.assign(x, st.minConflictValue(x))
		if st.conflicts < bestConflicts {
			bestConflicts = st.conflicts
			best = st.snapshot()
		}
	}
	res := Result{Assignment: best, Conflicts: bestConflicts, Iterations: it}
	if bestConflicts > 0 {
		recordRun(p.Day, outcomeIncomplete, it)
		return res, ErrSolveIncomplete
	}
	res.Complete = true
	if !s.NoBalance {
		res.Moves = Balance(p, res.Assignment, st.rng)
	}
	recordRun(p.Day, outcomeSolved, it)
	return res, nil
}

// Conflicts scores a full assignment of p with metric. Rides missing from a
// count as unassigned and contribute nothing.
func Conflicts(p problem.Problem, a problem.Assignment, metric Metric) int {
	total := 0
	for _, load := range a.Loads(p) {
		total += metric.Penalty(load, p.Capacity)
	}
	return total
}

// search holds the mutable state of one solve using dense indexes.
type search struct {
	rides    []string
	workers  []string
	domains  [][]int
	dur      []int
	value    []int
	load     []int
	capacity int
	metric   Metric
	rng      *rand.Rand

	conflicts int
	scratch   []int
}

func newSearch(p problem.Problem, metric Metric, rng *rand.Rand) *search {
	st := &search{capacity: p.Capacity, metric: metric, rng: rng}
	index := make(map[string]int)
	for _, v := range p.Variables {
		dom := make([]int, len(v.Domain))
		for i, w := range v.Domain {
			idx, ok := index[w]
			if !ok {
				idx = len(st.workers)
				index[w] = idx
				st.workers = append(st.workers, w)
			}
			dom[i] = idx
		}
		st.rides = append(st.rides, v.Ride)
		st.domains = append(st.domains, dom)
		st.dur = append(st.dur, v.Duration)
	}
	st.load = make([]int, len(st.workers))
	st.value = make([]int, len(st.rides))
	for x, dom := range st.domains {
		w := dom[st.rng.IntN(len(dom))]
		st.value[x] = w
		st.load[w] += st.dur[x]
	}
	for _, l := range st.load {
		st.conflicts += metric.Penalty(l, st.capacity)
	}
	return st
}

func (st *search) penalty(load int) int { return st.metric.Penalty(load, st.capacity) }

// pickConflicted returns a random variable whose worker is penalised by the
// metric. It reports false when the penalty comes only from idle workers, which
// no move can repair.
func (st *search) pickConflicted() (int, bool) {
	st.scratch = st.scratch[:0]
	for x, w := range st.value {
		if st.penalty(st.load[w]) > 0 {
			st.scratch = append(st.scratch, x)
		}
	}
	if len(st.scratch) == 0 {
		return 0, false
	}
	return st.scratch[st.rng.IntN(len(st.scratch))], true
}

// minConflictValue evaluates every domain value of x with all other
// variables fixed and returns a minimiser, breaking ties uniformly.
func (st *search) minConflictValue(x int) int {
	cur := st.value[x]
	d := st.dur[x]
	bestScore, ties, choice := 0, 0, cur
	for i, w := range st.domains[x] {
		score := st.conflicts
		if w != cur {
			score += st.penalty(st.load[cur]-d) - st.penalty(st.load[cur])
			score += st.penalty(st.load[w]+d) - st.penalty(st.load[w])
		}
		switch {
		case i == 0 || score < bestScore:
			bestScore, ties, choice = score, 1, w
		case score == bestScore:
			ties++
			if st.rng.IntN(ties) == 0 {
				choice = w
			}
		}
	}
	return choice
}

func (st *search) assign(x, w int) {
	cur := st.value[x]
	if cur == w {
		return
	}
	d := st.dur[x]
	st.conflicts -= st.penalty(st.load[cur]) + st.penalty(st.load[w])
	st.load[cur] -= d
	st.load[w] += d
	st.conflicts += st.penalty(st.load[cur]) + st.penalty(st.load[w])
	st.value[x] = w
}

func (st *search) snapshot() problem.Assignment {
	a := make(problem.Assignment, len(st.rides))
	for x, w := range st.value {
		a[st.rides[x]] = st.workers[w]
	}
	return a
}

var _ Solver = (*MinConflicts)(nil)
