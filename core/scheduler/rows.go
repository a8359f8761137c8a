package scheduler

import "github.com/kilianp07/ridecheck/core/model"

// RowKind marks what a schedule row represents.
type RowKind string

const (
	RowCheck      RowKind = "check"
	RowOverflow   RowKind = "overflow"
	RowRideClosed RowKind = "ride_closed"
	RowParkClosed RowKind = "park_closed"
	RowUnassigned RowKind = "unassigned"
)

// Row is one line of the rendered schedule.
type Row struct {
	Day    model.Weekday `json:"day"`
	Kind   RowKind       `json:"kind"`
	Worker string        `json:"worker,omitempty"`
	Ride   string        `json:"ride,omitempty"`
	Start  int           `json:"start"`
	End    int           `json:"end"`
}

// DayName is the day label used by exporters.
func (r Row) DayName() string { return r.Day.String() }

// Rows flattens the week for table renderers. Checks that end after the
// window are marked RowOverflow. Closed parks produce a single marker row.
func (w WeeklySchedule) Rows() []Row {
	var rows []Row
	for _, d := range w.Days {
		rows = append(rows, d.Rows()...)
	}
	return rows
}

// Rows flattens a single day.
func (d DaySchedule) Rows() []Row {
	if d.Status == StatusParkClosed {
		return []Row{{Day: d.Day, Kind: RowParkClosed}}
	}
	var rows []Row
	for _, wt := range d.Timeline.Workers {
		for _, e := range wt.Entries {
			kind := RowCheck
			if e.End > d.Capacity {
				kind = RowOverflow
			}
			rows = append(rows, Row{Day: d.Day, Kind: kind, Worker: wt.Worker, Ride: e.Ride, Start: e.Start, End: e.End})
		}
	}
	for _, r := range d.Unassigned {
		rows = append(rows, Row{Day: d.Day, Kind: RowUnassigned, Ride: r})
	}
	for _, r := range d.ClosedRides {
		rows = append(rows, Row{Day: d.Day, Kind: RowRideClosed, Ride: r})
	}
	return rows
}
