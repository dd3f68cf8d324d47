package testkit

import (
	"math/rand"

	"goshape/adapters/realizer"
	"goshape/adapters/rng"
	"goshape/domain/caption"
	"goshape/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	realizer ports.RealizerPort
}

// NewTestKit creates a test kit bound to the default realizer
func NewTestKit() *TestKit {
	return &TestKit{realizer: realizer.NewDefault()}
}

// Realizer returns the default realizer
func (t *TestKit) Realizer() ports.RealizerPort {
	return t.realizer
}

// RealizerWith returns a realizer over the given relations and the default
// attribute vocabulary
func (t *TestKit) RealizerWith(relations map[string][]int, ternary ...string) ports.RealizerPort {
	return realizer.NewStatic("test", caption.Taxonomy{Relations: relations, Ternary: ternary}, nil)
}

// RNGAdapter returns a seeded RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeededAdapter()
}

// Rand returns a math/rand source with a fixed seed
func (t *TestKit) Rand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
