package gadget

import "math/rand/v2"

// Random is the randomness source for codenames and mission probabilities.
// *rand.Rand from math/rand/v2 satisfies it, so tests can pass a seeded generator.
type Random interface {
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// runtimeRandom draws from the process-wide ChaCha8 generator, which is
// randomly seeded and safe for concurrent use.
type runtimeRandom struct{}

func (runtimeRandom) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns the production randomness source.
func DefaultRandom() Random {
	return runtimeRandom{}
}
