package render

import (
	"math/rand/v2"
	"slices"
)

// Shuffle returns a uniformly random permutation of in, leaving in untouched.
// Both rand.Shuffle and (*rand.Rand).Shuffle walk from the last index down
// to 1 and swap with a uniformly chosen index in [0, i]. A nil rng uses the
// global source.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	out := slices.Clone(in)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}
