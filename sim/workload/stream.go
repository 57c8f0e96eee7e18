package workload

import (
	"fmt"
	"math/rand"
)

// Operation is one request of a stream.
type Operation struct {
	Node  int
	Write bool
}

// Stream is a pull-based source of operations. Each Next draws the node from
// the sampler and, with probability writeRatio, marks the request as a write.
// Not safe for concurrent use.
type Stream struct {
	sampler    NodeSampler
	writeRatio float64
	rng        *rand.Rand
}

// NewStream creates a Stream. writeRatio must lie in [0, 1]; 0 yields a
// read-only stream.
func NewStream(sampler NodeSampler, writeRatio float64, rng *rand.Rand) (*Stream, error) {
	if sampler == nil {
		return nil, fmt.Errorf("stream needs a node sampler")
	}
	if rng == nil {
		return nil, fmt.Errorf("stream needs a random source")
	}
	if writeRatio < 0 || writeRatio > 1 {
		return nil, fmt.Errorf("write ratio must be in [0, 1], got %f", writeRatio)
	}
	return &Stream{sampler: sampler, writeRatio: writeRatio, rng: rng}, nil
}

// Next returns the next operation.
func (s *Stream) Next() Operation {
	op := Operation{Node: s.sampler.Sample(s.rng)}
	if s.writeRatio > 0 {
		op.Write = s.rng.Float64() < s.writeRatio
	}
	return op
}

// Take returns the next n operations.
func (s *Stream) Take(n int) []Operation {
	ops := make([]Operation, n)
	for i := range ops {
		ops[i] = s.Next()
	}
	return ops
}
