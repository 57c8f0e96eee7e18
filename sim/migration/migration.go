// Package migration implements single-copy page migration policies over a
// metric graph. A policy holds the one copy of the page and decides after
// each request whether to relocate it.
package migration

import (
	"fmt"

	"github.com/pagesim/pagesim/sim"
	"github.com/pagesim/pagesim/sim/graph"
)

// Policy serves read requests for a single migrating page.
type Policy interface {
	// Read serves a request from source and returns its cost: the access
	// distance plus, when this request triggers one, the migration cost.
	// Returns an error wrapping sim.ErrInvalidIndex for out-of-range sources.
	Read(source int) (int, error)
	// Location returns the node currently holding the page.
	Location() int
	// Migrations returns how many times the page has moved.
	Migrations() int
}

// RandomSource draws uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

const (
	// MoveToMinName is the deterministic threshold-buffer policy.
	MoveToMinName = "move-to-min"
	// CoinFlipName is the randomized policy.
	CoinFlipName = "coin-flip"
)

// ValidPolicies is the set of recognized migration policy names.
var ValidPolicies = map[string]bool{MoveToMinName: true, CoinFlipName: true}

// NewPolicy creates the named policy. rng is only used by coin-flip and may be
// nil for move-to-min.
func NewPolicy(name string, g graph.Graph, page, d int, rng RandomSource) (Policy, error) {
	switch name {
	case MoveToMinName:
		return NewMoveToMin(g, page, d)
	case CoinFlipName:
		return NewCoinFlip(g, page, d, rng)
	default:
		return nil, fmt.Errorf("unknown migration policy %q", name)
	}
}

// page is the state both policies share: where the copy lives and what
// moving it costs.
type page struct {
	graph      graph.Graph
	location   int
	d          int
	migrations int
}

func newPage(g graph.Graph, location, d int) (page, error) {
	if g == nil {
		return page{}, fmt.Errorf("migration needs a graph")
	}
	if d < 1 {
		return page{}, fmt.Errorf("threshold d must be >= 1, got %d", d)
	}
	if err := sim.CheckIndex(location, g.Size()); err != nil {
		return page{}, fmt.Errorf("initial page: %w", err)
	}
	return page{graph: g, location: location, d: d}, nil
}

// migrate moves the page to target and returns d times the distance moved.
func (p *page) migrate(target int) (int, error) {
	dist, err := p.graph.Distance(p.location, target)
	if err != nil {
		return 0, err
	}
	p.location = target
	if dist > 0 {
		p.migrations++
	}
	return p.d * dist, nil
}

// Location returns the node currently holding the page.
func (p *page) Location() int { return p.location }

// Migrations returns how many times the page has actually moved.
func (p *page) Migrations() int { return p.migrations }

// MoveToMin buffers d requests, then moves the page to the node minimizing
// the total distance to the buffered sources.
type MoveToMin struct {
	page
	buffer []int
}

// NewMoveToMin creates a MoveToMin policy with the page at location.
func NewMoveToMin(g graph.Graph, location, d int) (*MoveToMin, error) {
	p, err := newPage(g, location, d)
	if err != nil {
		return nil, err
	}
	return &MoveToMin{page: p, buffer: make([]int, 0, d)}, nil
}

// Read implements Policy.
func (m *MoveToMin) Read(source int) (int, error) {
	cost, err := m.graph.Distance(m.location, source)
	if err != nil {
		return 0, err
	}

	m.buffer = append(m.buffer, source)
	if len(m.buffer) < m.d {
		return cost, nil
	}

	best, err := m.findMin()
	if err != nil {
		return 0, err
	}
	moveCost, err := m.migrate(best)
	if err != nil {
		return 0, err
	}
	m.buffer = m.buffer[:0]
	return cost + moveCost, nil
}

// Buffered returns the number of requests waiting in the buffer.
func (m *MoveToMin) Buffered() int { return len(m.buffer) }

// findMin scans nodes in index order; the first node with the smallest total
// distance wins.
func (m *MoveToMin) findMin() (int, error) {
	best, bestTotal := -1, 0
	for candidate := 0; candidate < m.graph.Size(); candidate++ {
		total := 0
		for _, src := range m.buffer {
			dist, err := m.graph.Distance(candidate, src)
			if err != nil {
				return 0, err
			}
			total += dist
		}
		if best < 0 || total < bestTotal {
			best, bestTotal = candidate, total
		}
	}
	return best, nil
}

// CoinFlip moves the page to the requesting node with probability 1/(2d).
type CoinFlip struct {
	page
	rng RandomSource
}

// NewCoinFlip creates a CoinFlip policy with the page at location.
// rng must be private to this policy.
func NewCoinFlip(g graph.Graph, location, d int, rng RandomSource) (*CoinFlip, error) {
	p, err := newPage(g, location, d)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("coin-flip needs a random source")
	}
	return &CoinFlip{page: p, rng: rng}, nil
}

// Read implements Policy.
func (c *CoinFlip) Read(source int) (int, error) {
	cost, err := c.graph.Distance(c.location, source)
	if err != nil {
		return 0, err
	}

	if c.rng.Float64() < 1.0/(2.0*float64(c.d)) {
		moveCost, err := c.migrate(source)
		if err != nil {
			return 0, err
		}
		cost += moveCost
	}
	return cost, nil
}
