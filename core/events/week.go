package events

import "time"

// WeekEvent is published after the last day of a run.
type WeekEvent struct {
	RunID    string
	Complete bool
	Elapsed  time.Duration
}
