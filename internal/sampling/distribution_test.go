package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goshape/internal/errors"
	"goshape/internal/testkit"
)

func TestCumulativeDistribution(t *testing.T) {
	cumulative, err := CumulativeDistribution([]float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.75, 1}, cumulative, 1e-12)

	cumulative, err = CumulativeDistribution([]float64{0, 3, 0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.75, 0.75, 1}, cumulative, 1e-12)
	assert.Equal(t, 1.0, cumulative[3])
}

func TestCumulativeDistributionRejectsBadWeights(t *testing.T) {
	for _, weights := range [][]float64{nil, {0, 0}, {1, -1}} {
		_, err := CumulativeDistribution(weights)
		require.Error(t, err, "weights %v", weights)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	}
}

func TestSampleBuckets(t *testing.T) {
	cumulative, err := CumulativeDistribution([]float64{1, 0, 1, 2})
	require.NoError(t, err)

	tests := []struct {
		fraction float64
		want     int
	}{
		{0.0, 0},
		{0.2, 0},
		{0.25, 2}, // boundary belongs to the next non-empty bucket
		{0.49, 2},
		{0.5, 3},
		{0.999, 3},
	}
	for _, tt := range tests {
		src := testkit.NewScriptedSource(nil, []float64{tt.fraction})
		assert.Equal(t, tt.want, Sample(src, cumulative), "fraction %v", tt.fraction)
	}
}

func TestSampleNeverPicksZeroWeight(t *testing.T) {
	cumulative, err := CumulativeDistribution([]float64{0, 1, 0, 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	counts := make([]int, 4)
	for i := 0; i < 2000; i++ {
		counts[Sample(rng, cumulative)]++
	}
	assert.Zero(t, counts[0])
	assert.Zero(t, counts[2])
	assert.InDelta(t, 1000, counts[1], 150)
}

func TestChoice(t *testing.T) {
	src := testkit.NewScriptedSource([]int{5}, nil)
	assert.Equal(t, 2, Choice(src, 3))
	assert.Equal(t, 1, src.IntDraws())
}
