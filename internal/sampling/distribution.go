// Package sampling holds the random draws shared by captioners: uniform choice and
// categorical sampling from a cumulative distribution.
package sampling

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"goshape/internal/errors"
	"goshape/ports"
)

// CumulativeDistribution turns non-negative weights into normalized running totals.
// The last total is exactly 1.
func CumulativeDistribution(weights []float64) ([]float64, error) {
	if len(weights) == 0 {
		return nil, errors.InvalidInput("distribution needs at least one weight")
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.InvalidInput(fmt.Sprintf("distribution weight %d must be finite and non-negative, got %v", i, w))
		}
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, errors.InvalidInput("distribution weights sum to zero")
	}

	cumulative := floats.CumSum(make([]float64, len(weights)), weights)
	floats.Scale(1/total, cumulative)
	cumulative[len(cumulative)-1] = 1
	return cumulative, nil
}

// Sample draws a uniform fraction and returns the first bucket whose running total
// exceeds it. Zero-weight buckets are never returned.
func Sample(rng ports.RandomSource, cumulative []float64) int {
	x := rng.Float64()
	idx := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > x })
	if idx == len(cumulative) {
		idx = len(cumulative) - 1
	}
	return idx
}

// Choice returns a uniform index in [0, n). n must be positive.
func Choice(rng ports.RandomSource, n int) int {
	return rng.Intn(n)
}
