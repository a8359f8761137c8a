// Package timeline turns a ride assignment into back-to-back inspection slots
// per worker, measured in minutes from the start of the pre-opening window.
package timeline

import (
	"errors"
	"fmt"
)

// ErrCapacityOverflow indicates a worker's checks do not fit before opening.
var ErrCapacityOverflow = errors.New("capacity overflow")

// Entry is one inspection slot. End is exclusive.
type Entry struct {
	Ride  string `json:"ride"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Minutes returns the slot length.
func (e Entry) Minutes() int { return e.End - e.Start }

// WorkerTimeline is the ordered list of checks for one worker.
type WorkerTimeline struct {
	Worker  string  `json:"worker"`
	Entries []Entry `json:"entries"`
	// Overflow is the number of minutes past the window, 0 when it fits.
	Overflow int `json:"overflow,omitempty"`
}

// End returns the finishing offset of the last check.
func (w WorkerTimeline) End() int {
	if len(w.Entries) == 0 {
		return 0
	}
	return w.Entries[len(w.Entries)-1].End
}

// Day is the packed schedule of all workers for one day.
type Day struct {
	Capacity int              `json:"capacity"`
	Workers  []WorkerTimeline `json:"workers"`
}

// Empty reports whether nobody has anything to check.
func (d Day) Empty() bool { return len(d.Workers) == 0 }

// Worker returns the timeline of the given worker.
func (d Day) Worker(id string) (WorkerTimeline, bool) {
	for _, w := range d.Workers {
		if w.Worker == id {
			return w, true
		}
	}
	return WorkerTimeline{}, false
}

// Rides lists every ride on the day's timelines.
func (d Day) Rides() []string {
	var out []string
	for _, w := range d.Workers {
		for _, e := range w.Entries {
			out = append(out, e.Ride)
		}
	}
	return out
}

// Overflows returns one error per worker who does not fit in the window.
func (d Day) Overflows() []*OverflowError {
	var out []*OverflowError
	for _, w := range d.Workers {
		if w.Overflow > 0 {
			out = append(out, &OverflowError{Worker: w.Worker, Minutes: w.Overflow, Capacity: d.Capacity})
		}
	}
	return out
}

// OverflowError names a worker whose packed checks exceed the window.
type OverflowError struct {
	Worker   string
	Minutes  int
	Capacity int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("worker %s: %d minutes over the %d minute window: %v", e.Worker, e.Minutes, e.Capacity, ErrCapacityOverflow)
}

func (e *OverflowError) Unwrap() error { return ErrCapacityOverflow }
