package graph

import "fmt"

// TopologyConfig selects and shapes a Graph.
// Dimension and Side are only read for the "torus" kind.
type TopologyConfig struct {
	Kind      string `yaml:"kind"`
	Dimension int    `yaml:"dimension"`
	Side      int    `yaml:"side"`
}

const (
	// Torus3D is the 3-dimensional torus with side 4 (64 nodes).
	Torus3D = "torus3d"
	// Hypercube6D is the 6-dimensional hypercube (64 nodes).
	Hypercube6D = "hypercube"
	// CustomTorus takes Dimension and Side from the config.
	CustomTorus = "torus"
)

// ValidTopologies is the set of recognized topology kinds.
// Shared by validation and New() to avoid duplication.
var ValidTopologies = map[string]bool{Torus3D: true, Hypercube6D: true, CustomTorus: true}

// New creates the Graph described by cfg.
func New(cfg TopologyConfig) (Graph, error) {
	switch cfg.Kind {
	case Torus3D:
		return NewTorus(3, 4)
	case Hypercube6D:
		return NewHypercube(6)
	case CustomTorus:
		return NewTorus(cfg.Dimension, cfg.Side)
	default:
		return nil, fmt.Errorf("unknown topology %q", cfg.Kind)
	}
}

// Name returns a short label for result file names, e.g. "Torus3D" or "Torus2x5".
func (cfg TopologyConfig) Name() string {
	switch cfg.Kind {
	case Torus3D:
		return "Torus3D"
	case Hypercube6D:
		return "Hypercube"
	default:
		return fmt.Sprintf("Torus%dx%d", cfg.Dimension, cfg.Side)
	}
}
