// Package events defines the progress events emitted on the event bus while
// a weekly schedule is generated.
//
// Available event types:
//   - DayEvent: one weekday finished
//   - WeekEvent: the whole run finished
package events

// Event is implemented by every event type so a single bus can carry them.
type Event interface {
	Run() string
}

func (e DayEvent) Run() string  { return e.RunID }
func (e WeekEvent) Run() string { return e.RunID }
