package core

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// RandSource provides the random draws consumed by a simulated auction.
// This interface enables dependency injection for deterministic testing.
type RandSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64

	// Intn returns a uniform integer in [0, n). Panics if n <= 0.
	Intn(n int) int

	// Poisson returns a Poisson(mean) variate. Poisson(0) is always 0.
	Poisson(mean float64) int
}

// pcgRandSource is a seeded PCG stream. Each run owns one; it is not safe for
// concurrent use.
type pcgRandSource struct {
	src *rand.PCG
	rng *rand.Rand
}

// NewRandSource returns a RandSource for the given seed and stream. Distinct
// streams under one seed are statistically independent, so a Monte Carlo
// estimator can hand stream i to run i.
func NewRandSource(seed, stream uint64) RandSource {
	src := rand.NewPCG(seed, stream)
	return &pcgRandSource{src: src, rng: rand.New(src)}
}

func (r *pcgRandSource) Float64() float64 {
	return r.rng.Float64()
}

func (r *pcgRandSource) Intn(n int) int {
	return r.rng.IntN(n)
}

func (r *pcgRandSource) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: r.src}.Rand())
}
