package ports

import (
	"context"
	"math/rand"
)

// RandomSource is the subset of *rand.Rand captioners draw from. Tests substitute
// a scripted source to make every draw explicit.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one sample of a run.
	// The same run, stage and sample key always yield the same stream.
	Stream(ctx context.Context, runID, stageName, sampleKey string, baseSeed int64) (*rand.Rand, error)
}
