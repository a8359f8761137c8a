package solver

import (
	"math/rand/v2"

	"github.com/kilianp07/ridecheck/core/model"
)

// RandSource returns the generator used for one solve. It is called once per
// Solve so parallel day solves never share a generator.
type RandSource func(day model.Weekday) *rand.Rand

// EntropySource seeds every generator from the runtime's random state.
func EntropySource(model.Weekday) *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SeededSource derives a reproducible generator per day from seed.
func SeededSource(seed uint64) RandSource {
	return func(day model.Weekday) *rand.Rand {
		return rand.New(rand.NewPCG(seed, uint64(day)+1))
	}
}
