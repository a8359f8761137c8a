// Package solver implements a randomized min-conflicts search that assigns a
// worker to every open ride of a day while keeping each worker's total
// inspection time within the window before opening.
//
// Runs are intentionally non-deterministic: every solve draws from its own
// freshly seeded generator so repeated generations spread pairings across
// staff. Set Config.Seed to get a reproducible search.
package solver
