// Package rng provides the single seeded random stream shared by the world
// evaluator and the spell generator.
package rng

import (
	"math"
	"math/rand"
)

// RNG wraps math/rand.Rand with deterministic position tracking.
// Every draw consumes exactly one value from the source, so Position
// fully describes the state and Restore reproduces it.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

func (r *RNG) next() int64 {
	r.pos++
	return r.src.Int63()
}

// Intn returns a value in [0, n). It returns 0 when n <= 0 without drawing.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % int64(n))
}

// Between returns a value uniform over the closed interval between lo and
// hi. Reversed bounds are swapped.
func (r *RNG) Between(lo, hi int64) int64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	span := uint64(hi-lo) + 1
	u := uint64(r.next())
	if span == 0 {
		return int64(u)
	}
	return lo + int64(u%span)
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.next()>>10) / (1 << 53)
}

// Uniform returns a value in [lo, hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + r.Float64()*(hi-lo)
}

// Bool returns true half of the time.
func (r *RNG) Bool() bool {
	return r.next()&1 == 1
}

// OneIn returns true with probability 1/n. n <= 1 is always true.
func (r *RNG) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return r.Intn(n) == 0
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the stream started from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}

// Jitter returns x moved by up to |x|*|pct| in either direction, rounded
// and clamped to the int32 range.
func (r *RNG) Jitter(x int32, pct float64) int32 {
	u := r.Uniform(-1, 1)
	v := float64(x) + math.Round(math.Abs(float64(x))*math.Abs(pct)*u)
	return clamp32(v)
}

func clamp32(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= -math.MaxInt32:
		return -math.MaxInt32
	}
	return int32(v)
}
