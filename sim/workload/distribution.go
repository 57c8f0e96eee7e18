// Package workload generates synthetic request streams over node addresses.
package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// NodeSampler draws request sources.
type NodeSampler interface {
	// Sample returns a node address in [0, n).
	Sample(rng *rand.Rand) int
}

const (
	UniformName    = "uniform"
	HarmonicName   = "harmonic"
	BiharmonicName = "biharmonic"
	GeometricName  = "geometric"
)

// ValidDistributions is the set of recognized node distribution names.
var ValidDistributions = map[string]bool{
	UniformName:    true,
	HarmonicName:   true,
	BiharmonicName: true,
	GeometricName:  true,
}

// NewNodeSampler creates the named sampler over n nodes.
func NewNodeSampler(name string, n int) (NodeSampler, error) {
	if n < 1 {
		return nil, fmt.Errorf("node count must be >= 1, got %d", n)
	}
	switch name {
	case UniformName:
		return &UniformSampler{n: n}, nil
	case HarmonicName:
		return newRankSampler(n, 1), nil
	case BiharmonicName:
		return newRankSampler(n, 2), nil
	case GeometricName:
		return &GeometricSampler{n: n}, nil
	default:
		return nil, fmt.Errorf("unknown node distribution %q", name)
	}
}

// UniformSampler picks every node with probability 1/n.
type UniformSampler struct {
	n int
}

func (s *UniformSampler) Sample(rng *rand.Rand) int {
	return rng.Intn(s.n)
}

// RankSampler picks node k with probability proportional to 1/(k+1)^power.
// power 1 is the harmonic law, power 2 the biharmonic one.
type RankSampler struct {
	cdf []float64 // normalized cumulative weights, last entry exactly 1.0
}

func newRankSampler(n int, power float64) *RankSampler {
	cdf := make([]float64, n)
	total := 0.0
	for k := 0; k < n; k++ {
		total += 1.0 / math.Pow(float64(k+1), power)
		cdf[k] = total
	}
	for k := range cdf {
		cdf[k] /= total
	}
	cdf[n-1] = 1.0
	return &RankSampler{cdf: cdf}
}

func (s *RankSampler) Sample(rng *rand.Rand) int {
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.cdf) {
		idx = len(s.cdf) - 1
	}
	return idx
}

// GeometricSampler picks node k with probability about 2^-(k+1); the tail
// mass collapses onto the last node.
type GeometricSampler struct {
	n int
}

func (s *GeometricSampler) Sample(rng *rand.Rand) int {
	u := rng.Float64()
	k := int(math.Floor(-math.Log2(1.0 - u)))
	if k < 0 {
		return 0
	}
	return min(k, s.n-1)
}
