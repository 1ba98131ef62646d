package noise

import (
	"fmt"
	"math/rand"
)

// sample draws a Bernoulli event with the given probability.
func sample(rng *rand.Rand, prob float64) bool {
	if prob < 0 || prob > 1 {
		panic(fmt.Sprintf("%v is not a valid probability (should be between 0 and 1)", prob))
	}
	switch prob {
	case 0:
		return false
	case 1:
		return true
	}
	return rng.Float64() < prob
}

// weightedTypo is one candidate edit event with its probability.
type weightedTypo struct {
	typo Typo
	prob float64
}

// sampleAmong draws at most one event from a weighted candidate list. The
// residual weight (1 - sum) is the no-event outcome. Candidate order matters
// for determinism, so callers pass a slice, never a map.
func sampleAmong(rng *rand.Rand, events []weightedTypo) (Typo, bool) {
	var sum float64
	for _, e := range events {
		if e.prob < 0 {
			panic(fmt.Sprintf("negative probability %v for %s", e.prob, e.typo))
		}
		sum += e.prob
	}
	if sum > 1 {
		panic(fmt.Sprintf("typo probabilities sum to %v (should not exceed 1)", sum))
	}

	r := rng.Float64()
	var acc float64
	for _, e := range events {
		acc += e.prob
		if r < acc {
			return e.typo, true
		}
	}
	return 0, false
}
