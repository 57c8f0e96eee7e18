package experiment

import (
	"fmt"

	"github.com/pagesim/pagesim/sim/allocation"
	"github.com/pagesim/pagesim/sim/graph"
	"github.com/pagesim/pagesim/sim/migration"
	"github.com/pagesim/pagesim/sim/trace"
	"github.com/pagesim/pagesim/sim/workload"
)

// MigrationConfig describes one page migration experiment.
type MigrationConfig struct {
	Policy       string               `yaml:"policy"`
	Topology     graph.TopologyConfig `yaml:"topology"`
	Distribution string               `yaml:"distribution"`
	Threshold    int                  `yaml:"threshold"`
	Requests     int                  `yaml:"requests"`
	Repetitions  int                  `yaml:"repetitions"`
	Seed         int64                `yaml:"seed"`
	StartPage    int                  `yaml:"start_page"`
	// Trace records the decisions of the first repetition.
	Trace trace.TraceLevel `yaml:"trace"`
}

// Validate checks names and parameter ranges. Graph-dependent checks
// (start page in range) happen when the engine is built.
func (c *MigrationConfig) Validate() error {
	if !migration.ValidPolicies[c.Policy] {
		return fmt.Errorf("unknown migration policy %q", c.Policy)
	}
	if !graph.ValidTopologies[c.Topology.Kind] {
		return fmt.Errorf("unknown topology %q", c.Topology.Kind)
	}
	if !workload.ValidDistributions[c.Distribution] {
		return fmt.Errorf("unknown node distribution %q", c.Distribution)
	}
	if !trace.IsValidTraceLevel(string(c.Trace)) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	return validateRun(c.Threshold, c.Requests, c.Repetitions)
}

// ResultName returns the result file name for c.
func (c *MigrationConfig) ResultName() string {
	return fmt.Sprintf("result_%s_%s_%s_%d.txt", c.Policy, c.Topology.Name(), c.Distribution, c.Threshold)
}

// AllocationConfig describes one Count replication experiment.
type AllocationConfig struct {
	Size         int                   `yaml:"size"`
	Distribution string                `yaml:"distribution"`
	Threshold    int                   `yaml:"threshold"`
	WriteRatio   float64               `yaml:"write_ratio"`
	Charge       allocation.ChargeMode `yaml:"charge"`
	Requests     int                   `yaml:"requests"`
	Repetitions  int                   `yaml:"repetitions"`
	Seed         int64                 `yaml:"seed"`
	StartPage    int                   `yaml:"start_page"`
	// Trace records the state transitions of the first repetition.
	Trace trace.TraceLevel `yaml:"trace"`
}

// Validate checks names and parameter ranges.
func (c *AllocationConfig) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("allocation size must be >= 1, got %d", c.Size)
	}
	if c.StartPage < 0 || c.StartPage >= c.Size {
		return fmt.Errorf("start page %d outside [0, %d)", c.StartPage, c.Size)
	}
	if !workload.ValidDistributions[c.Distribution] {
		return fmt.Errorf("unknown node distribution %q", c.Distribution)
	}
	if c.WriteRatio < 0 || c.WriteRatio > 1 {
		return fmt.Errorf("write ratio must be in [0, 1], got %f", c.WriteRatio)
	}
	if !allocation.ValidChargeModes[c.Charge] {
		return fmt.Errorf("unknown charge mode %q", c.Charge)
	}
	if !trace.IsValidTraceLevel(string(c.Trace)) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	return validateRun(c.Threshold, c.Requests, c.Repetitions)
}

// ResultName returns the result file name for c.
func (c *AllocationConfig) ResultName() string {
	return fmt.Sprintf("result_%s_%d_%s.txt", c.Distribution, c.Threshold, formatFloat(c.WriteRatio))
}

func validateRun(threshold, requests, repetitions int) error {
	if threshold < 1 {
		return fmt.Errorf("threshold must be >= 1, got %d", threshold)
	}
	if requests < 1 {
		return fmt.Errorf("requests must be >= 1, got %d", requests)
	}
	if repetitions < 1 {
		return fmt.Errorf("repetitions must be >= 1, got %d", repetitions)
	}
	return nil
}
