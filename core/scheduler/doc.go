// Package scheduler builds the weekly ride-check schedule. Each weekday is
// encoded as a constraint problem, solved with min-conflicts and packed into
// per-worker timelines. Days are independent: a day that cannot be fully
// scheduled is reported in its DaySchedule and never blocks the others.
package scheduler
