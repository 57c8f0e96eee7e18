package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_WriteRatio(t *testing.T) {
	sampler, err := NewNodeSampler(UniformName, 64)
	require.NoError(t, err)

	for _, ratio := range []float64{0, 0.1, 0.5, 1} {
		s, err := NewStream(sampler, ratio, rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		writes := 0
		const n = 50000
		for _, op := range s.Take(n) {
			require.True(t, op.Node >= 0 && op.Node < 64)
			if op.Write {
				writes++
			}
		}
		assert.InDelta(t, ratio, float64(writes)/n, 0.01, "ratio %v", ratio)
	}
}

func TestStream_SameSeedSameOperations(t *testing.T) {
	sampler, err := NewNodeSampler(HarmonicName, 64)
	require.NoError(t, err)
	a, err := NewStream(sampler, 0.2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b, err := NewStream(sampler, 0.2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, a.Take(500), b.Take(500))
}

func TestNewStream_Errors(t *testing.T) {
	sampler, err := NewNodeSampler(UniformName, 4)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	_, err = NewStream(nil, 0, rng)
	assert.Error(t, err)
	_, err = NewStream(sampler, 0, nil)
	assert.Error(t, err)
	_, err = NewStream(sampler, -0.1, rng)
	assert.Error(t, err)
	_, err = NewStream(sampler, 1.5, rng)
	assert.Error(t, err)
}
