// Package monitoring forwards scheduling failures to an error tracker.
package monitoring

import (
	"time"

	"github.com/kilianp07/ridecheck/core/scheduler"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// NopMonitor drops every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration) bool                  { return true }

// ReportWeek captures every day problem of ws tagged with its run, day and
// kind. It returns the number of reports sent.
func ReportWeek(m Monitor, ws scheduler.WeeklySchedule) int {
	n := 0
	for _, de := range ws.Errors() {
		tags := map[string]string{
			"run_id": ws.RunID,
			"day":    de.Day.String(),
			"kind":   string(de.Kind),
		}
		if de.Ride != "" {
			tags["ride"] = de.Ride
		}
		if de.Worker != "" {
			tags["worker"] = de.Worker
		}
		m.CaptureException(de, tags)
		n++
	}
	return n
}
