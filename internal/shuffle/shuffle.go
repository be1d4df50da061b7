// Package shuffle provides an unbiased permutation over an injectable
// random source.
package shuffle

import "math/rand/v2"

// Rand is a uniform random source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Global is the process-wide math/rand/v2 source.
var Global Rand = globalRand{}

// Slice returns a uniformly permuted copy of in using Fisher-Yates.
func Slice[T any](r Rand, in []T) []T {
	if r == nil {
		r = Global
	}
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
