package model

// DayState holds the availability snapshot for a single weekday.
type DayState struct {
	// TimeTillOpening is the inspection window in minutes. Zero means the
	// park is closed and nothing is scheduled.
	TimeTillOpening int      `json:"time_till_opening" yaml:"time_till_opening"`
	Absent          []string `json:"absent,omitempty" yaml:"absent,omitempty"`
	Closed          []string `json:"closed,omitempty" yaml:"closed,omitempty"`
}

// ParkClosed reports whether no checks happen on this day.
func (d DayState) ParkClosed() bool { return d.TimeTillOpening == 0 }

// IsAbsent returns true if the worker is unavailable that day.
func (d DayState) IsAbsent(workerID string) bool { return contains(d.Absent, workerID) }

// IsClosed returns true if the ride does not open that day.
func (d DayState) IsClosed(rideID string) bool { return contains(d.Closed, rideID) }

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
