package metrics

import "time"

// DayOutcome summarises the generation of one day.
type DayOutcome struct {
	RunID           string
	Day             string
	Status          string
	Rides           int
	ClosedRides     int
	Unassigned      int
	Workers         int
	Iterations      int
	Conflicts       int
	OverflowMinutes int
	Elapsed         time.Duration
	Time            time.Time
}

// Recorder records per-day outcomes.
type Recorder interface {
	RecordDay(ev DayOutcome) error
}

// WeekSummary captures a complete generation run.
type WeekSummary struct {
	RunID      string
	Statuses   map[string]int // number of days per status
	Checks     int
	LoadMean   float64
	LoadStdDev float64
	Elapsed    time.Duration
	Time       time.Time
}

// WeekRecorder is implemented by recorders able to record run summaries.
type WeekRecorder interface {
	RecordWeek(ev WeekSummary) error
}

// NopRecorder implements every recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordDay(DayOutcome) error   { return nil }
func (NopRecorder) RecordWeek(WeekSummary) error { return nil }

// MultiRecorder fans events out to several recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordDay forwards the outcome to all recorders, returning the first error encountered.
func (m *MultiRecorder) RecordDay(ev DayOutcome) error {
	for _, r := range m.Recorders {
		if err := r.RecordDay(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordWeek forwards summaries when supported by the recorder.
func (m *MultiRecorder) RecordWeek(ev WeekSummary) error {
	for _, r := range m.Recorders {
		if wr, ok := r.(WeekRecorder); ok {
			if err := wr.RecordWeek(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
