// Package allocation implements dynamic replication of a single object over
// a universe of nodes. Reads earn nodes a replica; writes invalidate the
// copies held elsewhere and wear down replicas that keep getting invalidated.
package allocation

import (
	"fmt"

	"github.com/pagesim/pagesim/sim"
)

// Policy serves interleaved reads and writes against a replicated object.
type Policy interface {
	// Read serves a read from source and returns its cost.
	Read(source int) (int, error)
	// Write serves a write from source and returns its cost: the number of
	// replicas held by other nodes.
	Write(source int) (int, error)
	// Replicas returns how many nodes hold a copy. Always >= 1.
	Replicas() int
}

// NodeState is the replica state of one node under the Count scheme.
type NodeState uint8

const (
	// Cold nodes hold no replica and count interest towards promotion.
	Cold NodeState = iota
	// Active nodes hold a replica and count down the writes they tolerate.
	Active
	// Pinned nodes hold a replica that no longer decays. They are dropped
	// by consolidation as soon as another replica exists.
	Pinned
)

func (s NodeState) String() string {
	switch s {
	case Cold:
		return "cold"
	case Active:
		return "active"
	case Pinned:
		return "pinned"
	default:
		return fmt.Sprintf("NodeState(%d)", uint8(s))
	}
}

// ChargeMode selects which replica set an operation is priced against.
type ChargeMode string

const (
	// ChargeSettled prices an operation against the replica set left once its
	// promotion, decay and consolidation are done. Replicas that
	// consolidation drops during the operation are not charged: a write that
	// promotes its source and leaves it the only replica costs 0, however
	// many foreign replicas it found.
	ChargeSettled ChargeMode = "settled"
	// ChargeUpfront prices an operation against the replica set it found.
	ChargeUpfront ChargeMode = "upfront"
)

// ValidChargeModes is the set of recognized charge modes. Empty means settled.
var ValidChargeModes = map[ChargeMode]bool{"": true, ChargeSettled: true, ChargeUpfront: true}

// Option configures a Count.
type Option func(*Count)

// WithChargeMode sets the charge mode. The default is ChargeSettled.
func WithChargeMode(mode ChargeMode) Option {
	return func(c *Count) {
		if mode != "" {
			c.charge = mode
		}
	}
}

// TransitionHook is called synchronously after a node changes state, before
// the operation finishes. It must not call back into the Count.
type TransitionHook func(node int, from, to NodeState)

// WithTransitionHook registers hook for every state change.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *Count) { c.hook = hook }
}

// Count is the counting replication scheme with threshold d.
//
// A cold node earns a replica after d reads or writes of its own. A replica
// survives d writes issued by other nodes, then becomes pinned; pinned
// replicas are dropped whenever at least one other replica remains.
//
// Per-node state lives in flat slices indexed by node address.
// Not safe for concurrent use.
type Count struct {
	d        int
	charge   ChargeMode
	states   []NodeState
	counters []int
	held     []bool
	replicas int
	hook     TransitionHook
}

// NewCount creates a Count over size nodes with the only replica at page.
// The initial replica starts pinned.
func NewCount(size, page, d int, opts ...Option) (*Count, error) {
	if size < 1 {
		return nil, fmt.Errorf("allocation size must be >= 1, got %d", size)
	}
	if d < 1 {
		return nil, fmt.Errorf("threshold d must be >= 1, got %d", d)
	}
	if err := sim.CheckIndex(page, size); err != nil {
		return nil, fmt.Errorf("initial page: %w", err)
	}
	c := &Count{
		d:        d,
		charge:   ChargeSettled,
		states:   make([]NodeState, size),
		counters: make([]int, size),
		held:     make([]bool, size),
		replicas: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !ValidChargeModes[c.charge] {
		return nil, fmt.Errorf("unknown charge mode %q", c.charge)
	}
	c.states[page] = Pinned
	c.held[page] = true
	return c, nil
}

// Read implements Policy. Costs 0 when source holds a replica, 1 otherwise.
func (c *Count) Read(source int) (int, error) {
	if err := sim.CheckIndex(source, len(c.states)); err != nil {
		return 0, err
	}
	cost := c.readCost(source)

	if c.states[source] == Cold && c.countInterest(source) {
		c.consolidate()
	}

	if c.charge == ChargeSettled {
		cost = c.readCost(source)
	}
	return cost, nil
}

// Write implements Policy.
func (c *Count) Write(source int) (int, error) {
	if err := sim.CheckIndex(source, len(c.states)); err != nil {
		return 0, err
	}
	cost := c.writeCost(source)

	for i, state := range c.states {
		if i == source || state != Active {
			continue
		}
		c.counters[i]--
		if c.counters[i] == 0 {
			c.setState(i, Pinned)
		}
	}
	if c.states[source] == Cold {
		c.countInterest(source)
	}
	c.consolidate()

	if c.charge == ChargeSettled {
		cost = c.writeCost(source)
	}
	return cost, nil
}

// Replicas implements Policy.
func (c *Count) Replicas() int { return c.replicas }

// Pages returns the nodes holding a replica in ascending order.
func (c *Count) Pages() []int {
	pages := make([]int, 0, c.replicas)
	for node, held := range c.held {
		if held {
			pages = append(pages, node)
		}
	}
	return pages
}

// HasReplica reports whether node holds a replica. Out-of-range nodes never do.
func (c *Count) HasReplica(node int) bool {
	return node >= 0 && node < len(c.held) && c.held[node]
}

// State returns the replica state of node.
func (c *Count) State(node int) (NodeState, error) {
	if err := sim.CheckIndex(node, len(c.states)); err != nil {
		return Cold, err
	}
	return c.states[node], nil
}

// Counter returns the interest count of a cold node or the remaining write
// tolerance of an active one.
func (c *Count) Counter(node int) (int, error) {
	if err := sim.CheckIndex(node, len(c.counters)); err != nil {
		return 0, err
	}
	return c.counters[node], nil
}

// Threshold returns d.
func (c *Count) Threshold() int { return c.d }

// Size returns the number of nodes.
func (c *Count) Size() int { return len(c.states) }

// ChargeMode returns the configured charge mode.
func (c *Count) ChargeMode() ChargeMode { return c.charge }

func (c *Count) readCost(source int) int {
	if c.held[source] {
		return 0
	}
	return 1
}

func (c *Count) writeCost(source int) int {
	if c.held[source] {
		return c.replicas - 1
	}
	return c.replicas
}

// countInterest records one request from a cold node and promotes it once
// its count reaches d. Reports whether the node was promoted.
func (c *Count) countInterest(node int) bool {
	c.counters[node]++
	if c.counters[node] < c.d {
		return false
	}
	c.setState(node, Active)
	c.counters[node] = c.d
	c.held[node] = true
	c.replicas++
	return true
}

// consolidate drops pinned replicas in index order while another replica
// remains. This includes the initial replica.
func (c *Count) consolidate() {
	for node, state := range c.states {
		if state != Pinned || c.replicas <= 1 {
			continue
		}
		c.setState(node, Cold)
		c.counters[node] = 0
		c.held[node] = false
		c.replicas--
	}
}

func (c *Count) setState(node int, to NodeState) {
	from := c.states[node]
	c.states[node] = to
	if c.hook != nil {
		c.hook(node, from, to)
	}
}
