// Package graph provides the metric topologies page migration runs on.
package graph

import (
	"fmt"
	"math"

	"github.com/pagesim/pagesim/sim"
)

// Graph gives the integer distance between any two node addresses in a
// bounded node space. Implementations are immutable after construction and
// safe to share read-only between simulations.
//
// Distance must be a metric: symmetric, zero on the diagonal, and satisfying
// the triangle inequality.
type Graph interface {
	// Distance returns an error wrapping sim.ErrInvalidIndex when x or y is
	// outside [0, Size()).
	Distance(x, y int) (int, error)
	Size() int
}

// Torus is a D-dimensional torus with side length L. Node indices are the
// base-L encoding of the coordinate tuple, most significant digit first.
// L = 2 is the D-dimensional hypercube.
type Torus struct {
	dimension int
	side      int
	size      int
}

// MaxDimension bounds the number of torus axes. Any side of 2 or more
// overflows the node index well before it.
const MaxDimension = 64

// NewTorus creates a torus with the given dimension and side length.
func NewTorus(dimension, side int) (*Torus, error) {
	if dimension < 1 || dimension > MaxDimension {
		return nil, fmt.Errorf("torus dimension must be in [1, %d], got %d", MaxDimension, dimension)
	}
	if side < 1 {
		return nil, fmt.Errorf("torus side must be >= 1, got %d", side)
	}
	size := 1
	for i := 0; i < dimension; i++ {
		if size > math.MaxInt/side {
			return nil, fmt.Errorf("torus %d^%d has too many nodes", side, dimension)
		}
		size *= side
	}
	return &Torus{dimension: dimension, side: side, size: size}, nil
}

// NewHypercube creates a hypercube of the given dimension. Its distance is the
// Hamming distance between node indices.
func NewHypercube(dimension int) (*Torus, error) {
	return NewTorus(dimension, 2)
}

// Distance implements Graph: the sum over axes of the wrap-around distance
// min(k, L-k) between the two coordinates.
func (t *Torus) Distance(x, y int) (int, error) {
	if err := sim.CheckIndex(x, t.size); err != nil {
		return 0, err
	}
	if err := sim.CheckIndex(y, t.size); err != nil {
		return 0, err
	}
	total := 0
	for i := 0; i < t.dimension; i++ {
		a, b := x%t.side, y%t.side
		x /= t.side
		y /= t.side
		k := a - b
		if k < 0 {
			k = -k
		}
		total += min(k, t.side-k)
	}
	return total, nil
}

// Size implements Graph.
func (t *Torus) Size() int { return t.size }

// Coordinates returns the coordinate tuple of node, most significant first.
func (t *Torus) Coordinates(node int) ([]int, error) {
	if err := sim.CheckIndex(node, t.size); err != nil {
		return nil, err
	}
	return Digits(node, t.side, t.dimension), nil
}

// Digits returns the width lowest base-b digits of n, most significant first.
// Digits beyond width are dropped.
func Digits(n, base, width int) []int {
	digits := make([]int, width)
	for i := width - 1; i >= 0; i-- {
		digits[i] = n % base
		n /= base
	}
	return digits
}
