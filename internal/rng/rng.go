// Package rng provides the deterministic random engine behind pack draws.
// Two engines built from the same seed and given the same call sequence
// produce identical results, which is what makes "bad luck" reports
// replayable.
package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

var ErrInvalidWeights = errors.New("weights must be finite and non-negative")

// Engine is a seeded pseudo-random source. Not safe for concurrent use;
// the open-pack flow is the sole caller.
type Engine struct {
	r *rand.Rand
}

// New constructs an engine from an explicit seed.
func New(seed uint64) *Engine {
	return &Engine{r: rand.New(rand.NewPCG(seed, 0))}
}

// NewRandom constructs an engine seeded from the OS entropy pool. Used when
// no RNG_SEED is configured; draws are not replayable in this mode.
func NewRandom() *Engine {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return New(rand.Uint64())
	}
	return New(binary.BigEndian.Uint64(buf[:]))
}

// Next returns a uniform float in [0, 1).
func (e *Engine) Next() float64 {
	return e.r.Float64()
}

// NextInt returns a uniform integer in [min, max). A degenerate range
// (max <= min) returns min.
func (e *Engine) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + e.r.IntN(max-min)
}

// Pick selects one element uniformly. The empty slice returns the zero value
// and ok=false rather than panicking.
func Pick[T any](e *Engine, xs []T) (T, bool) {
	var zero T
	if len(xs) == 0 {
		return zero, false
	}
	return xs[e.r.IntN(len(xs))], true
}

// Shuffle returns a new slice with the same elements in pseudo-random order.
// The input is never mutated.
func Shuffle[T any](e *Engine, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	e.r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// WeightedRandom selects a label with probability proportional to its weight.
// Zero-weight labels are never selected. Labels are visited in sorted order
// so Go's randomized map iteration cannot perturb the deterministic sequence.
func (e *Engine) WeightedRandom(weights map[string]float64) (string, error) {
	labels := make([]string, 0, len(weights))
	total := 0.0
	for label, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return "", ErrInvalidWeights
		}
		if w == 0 {
			continue
		}
		labels = append(labels, label)
		total += w
	}
	if len(labels) == 0 || total <= 0 {
		return "", ErrInvalidWeights
	}
	sort.Strings(labels)

	x := e.Next() * total
	for _, label := range labels {
		x -= weights[label]
		if x < 0 {
			return label, nil
		}
	}
	// Float accumulation can leave x at exactly 0; the last label wins.
	return labels[len(labels)-1], nil
}
