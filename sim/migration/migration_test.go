package migration

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesim/pagesim/sim"
	"github.com/pagesim/pagesim/sim/graph"
)

// scriptedSource replays fixed draws, then repeats the last one.
type scriptedSource struct {
	draws []float64
	next  int
}

func (s *scriptedSource) Float64() float64 {
	v := s.draws[min(s.next, len(s.draws)-1)]
	s.next++
	return v
}

func ring(t *testing.T, n int) graph.Graph {
	t.Helper()
	g, err := graph.NewTorus(1, n)
	require.NoError(t, err)
	return g
}

func torus3D(t *testing.T) graph.Graph {
	t.Helper()
	g, err := graph.New(graph.TopologyConfig{Kind: graph.Torus3D})
	require.NoError(t, err)
	return g
}

// === MoveToMin ===

func TestMoveToMin_ColocatedRequestsCostNothing(t *testing.T) {
	for _, d := range []int{1, 2, 16} {
		m, err := NewMoveToMin(torus3D(t), 5, d)
		require.NoError(t, err)
		for i := 0; i < d; i++ {
			cost, err := m.Read(5)
			require.NoError(t, err)
			assert.Equal(t, 0, cost, "d=%d step %d", d, i)
		}
		assert.Equal(t, 5, m.Location())
		assert.Equal(t, 0, m.Buffered())
		assert.Equal(t, 0, m.Migrations())
	}
}

func TestMoveToMin_BuffersUntilThreshold(t *testing.T) {
	m, err := NewMoveToMin(ring(t, 10), 0, 3)
	require.NoError(t, err)

	cost, err := m.Read(4)
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
	cost, err = m.Read(4)
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
	assert.Equal(t, 0, m.Location(), "no migration before the buffer fills")
	assert.Equal(t, 2, m.Buffered())

	// Third request fills the buffer: access 4 + 3 * distance(0, 4).
	cost, err = m.Read(4)
	require.NoError(t, err)
	assert.Equal(t, 4+3*4, cost)
	assert.Equal(t, 4, m.Location())
	assert.Equal(t, 0, m.Buffered())
	assert.Equal(t, 1, m.Migrations())
}

func TestMoveToMin_TieBreaksToLowestIndex(t *testing.T) {
	// On a ring of 10 the buffer {2, 4} is minimized (total 2) by 2, 3 and 4.
	m, err := NewMoveToMin(ring(t, 10), 7, 2)
	require.NoError(t, err)
	_, err = m.Read(4)
	require.NoError(t, err)
	cost, err := m.Read(2)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Location())
	// access distance(7,2)=5, migration 2 * distance(7,2)=10
	assert.Equal(t, 5+10, cost)
}

func TestMoveToMin_TieBreakScansFromZero(t *testing.T) {
	// Hypercube buffer {0b01, 0b10}: nodes 0b00 and 0b11 tie with 0b01 and 0b10
	// at total distance 2; node 0 comes first.
	g, err := graph.NewHypercube(2)
	require.NoError(t, err)
	m, err := NewMoveToMin(g, 3, 2)
	require.NoError(t, err)
	_, err = m.Read(1)
	require.NoError(t, err)
	_, err = m.Read(2)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Location())
}

func TestMoveToMin_ThresholdOneFollowsRequests(t *testing.T) {
	m, err := NewMoveToMin(torus3D(t), 0, 1)
	require.NoError(t, err)
	for _, src := range []int{63, 42, 42, 7, 0} {
		prev := m.Location()
		cost, err := m.Read(src)
		require.NoError(t, err)
		dist, _ := torus3D(t).Distance(prev, src)
		assert.Equal(t, 2*dist, cost)
		assert.Equal(t, src, m.Location())
	}
}

func TestMoveToMin_InvalidIndexLeavesStateUntouched(t *testing.T) {
	m, err := NewMoveToMin(torus3D(t), 0, 2)
	require.NoError(t, err)
	_, err = m.Read(9)
	require.NoError(t, err)

	_, err = m.Read(64)
	assert.ErrorIs(t, err, sim.ErrInvalidIndex)
	_, err = m.Read(-1)
	assert.ErrorIs(t, err, sim.ErrInvalidIndex)
	assert.Equal(t, 1, m.Buffered())
	assert.Equal(t, 0, m.Location())
}

// === CoinFlip ===

func TestCoinFlip_MigratesOnlyBelowProbability(t *testing.T) {
	// d = 2: migrate when u < 0.25.
	src := &scriptedSource{draws: []float64{0.25, 0.9, 0.2499}}
	c, err := NewCoinFlip(ring(t, 10), 0, 2, src)
	require.NoError(t, err)

	cost, err := c.Read(3)
	require.NoError(t, err)
	assert.Equal(t, 3, cost)
	assert.Equal(t, 0, c.Location())

	cost, err = c.Read(3)
	require.NoError(t, err)
	assert.Equal(t, 3, cost)
	assert.Equal(t, 0, c.Location())

	cost, err = c.Read(3)
	require.NoError(t, err)
	assert.Equal(t, 3+2*3, cost)
	assert.Equal(t, 3, c.Location())
	assert.Equal(t, 1, c.Migrations())
}

func TestCoinFlip_EmpiricalRateConvergesToHalf(t *testing.T) {
	// With d = 1 the page moves with probability 1/2. Requesting the neighbor
	// across the lowest hypercube axis makes every coin success a real move.
	g, err := graph.NewHypercube(6)
	require.NoError(t, err)
	c, err := NewCoinFlip(g, 0, 1, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	const trials = 200000
	for i := 0; i < trials; i++ {
		cost, err := c.Read(c.Location() ^ 1)
		require.NoError(t, err)
		require.Contains(t, []int{1, 2}, cost)
	}
	rate := float64(c.Migrations()) / trials
	if math.Abs(rate-0.5) > 0.01 {
		t.Errorf("empirical migration rate = %v, want 0.5 +- 0.01", rate)
	}
}

func TestCoinFlip_InvalidIndexDoesNotDraw(t *testing.T) {
	src := &scriptedSource{draws: []float64{0.0}}
	c, err := NewCoinFlip(torus3D(t), 0, 4, src)
	require.NoError(t, err)
	_, err = c.Read(64)
	assert.ErrorIs(t, err, sim.ErrInvalidIndex)
	assert.Equal(t, 0, src.next)
}

// === Construction ===

func TestNewPolicy(t *testing.T) {
	g := torus3D(t)
	p, err := NewPolicy(MoveToMinName, g, 0, 4, nil)
	require.NoError(t, err)
	assert.IsType(t, &MoveToMin{}, p)

	p, err = NewPolicy(CoinFlipName, g, 0, 4, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.IsType(t, &CoinFlip{}, p)

	_, err = NewPolicy("move-to-max", g, 0, 4, nil)
	assert.Error(t, err)
}

func TestNewPolicy_RejectsInvalidArguments(t *testing.T) {
	g := torus3D(t)
	tests := []struct {
		name   string
		policy string
		g      graph.Graph
		page   int
		d      int
		rng    RandomSource
	}{
		{"zero threshold", MoveToMinName, g, 0, 0, nil},
		{"page out of range", MoveToMinName, g, 64, 2, nil},
		{"nil graph", MoveToMinName, nil, 0, 2, nil},
		{"coin-flip without rng", CoinFlipName, g, 0, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(tt.policy, tt.g, tt.page, tt.d, tt.rng)
			assert.Error(t, err)
		})
	}
}
