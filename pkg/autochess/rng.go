package autochess

import "math/rand"

// Rand is the random source consumed by shop draws, matchmaking, and the
// auto-pick safety net. Injected so tests and benchmarks can supply a
// deterministic sequence.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
	Perm(n int) []int
}

// NewRand returns a seeded math/rand source satisfying Rand.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
