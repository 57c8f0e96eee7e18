package experiment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pagesim/pagesim/sim/allocation"
	"github.com/pagesim/pagesim/sim/graph"
	"github.com/pagesim/pagesim/sim/migration"
	"github.com/pagesim/pagesim/sim/workload"
)

// Sweep is a parameter grid, loadable from YAML. Every combination becomes
// one Job. All jobs share Seed, so different policies see the same request
// streams.
type Sweep struct {
	Seed        int64            `yaml:"seed"`
	Requests    int              `yaml:"requests"`
	Repetitions int              `yaml:"repetitions"`
	Workers     int              `yaml:"workers"`
	Migration   *MigrationSweep  `yaml:"migration"`
	Allocation  *AllocationSweep `yaml:"allocation"`
}

// MigrationSweep lists the migration grid axes.
type MigrationSweep struct {
	Policies      []string               `yaml:"policies"`
	Topologies    []graph.TopologyConfig `yaml:"topologies"`
	Distributions []string               `yaml:"distributions"`
	Thresholds    []int                  `yaml:"thresholds"`
	StartPage     int                    `yaml:"start_page"`
}

// AllocationSweep lists the allocation grid axes.
type AllocationSweep struct {
	Size          int                   `yaml:"size"`
	Distributions []string              `yaml:"distributions"`
	Thresholds    []int                 `yaml:"thresholds"`
	WriteRatios   []float64             `yaml:"write_ratios"`
	Charge        allocation.ChargeMode `yaml:"charge"`
	StartPage     int                   `yaml:"start_page"`
}

// DefaultSweep returns the reference grids: both migration policies on a
// 64-node torus and hypercube, and Count on 64 nodes under uniform traffic.
func DefaultSweep() *Sweep {
	return &Sweep{
		Seed:        42,
		Requests:    65536,
		Repetitions: 100,
		Workers:     1,
		Migration: &MigrationSweep{
			Policies: []string{migration.MoveToMinName, migration.CoinFlipName},
			Topologies: []graph.TopologyConfig{
				{Kind: graph.Torus3D},
				{Kind: graph.Hypercube6D},
			},
			Distributions: []string{workload.UniformName, workload.HarmonicName, workload.BiharmonicName},
			Thresholds:    []int{2, 16, 128, 2048},
		},
		Allocation: &AllocationSweep{
			Size:          64,
			Distributions: []string{workload.UniformName},
			Thresholds:    []int{16, 32, 64, 128, 256},
			WriteRatios:   []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
		},
	}
}

// LoadSweep reads a YAML sweep file. Unknown fields are rejected so typos
// fail loudly instead of silently running the default.
func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	var sweep Sweep
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sweep); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}
	if sweep.Workers == 0 {
		sweep.Workers = 1
	}
	return &sweep, nil
}

// Job is one combination of a Sweep. Exactly one of Migration and Allocation
// is set.
type Job struct {
	Migration  *MigrationConfig
	Allocation *AllocationConfig
}

// Name returns the result file name of the job.
func (j Job) Name() string {
	if j.Migration != nil {
		return j.Migration.ResultName()
	}
	return j.Allocation.ResultName()
}

// Run executes the job.
func (j Job) Run() (*Curve, error) {
	if j.Migration != nil {
		return RunMigration(*j.Migration)
	}
	return RunAllocation(*j.Allocation)
}

// Jobs enumerates the cartesian product of the sweep's axes.
func (s *Sweep) Jobs() []Job {
	var jobs []Job
	if m := s.Migration; m != nil {
		for _, policy := range m.Policies {
			for _, topology := range m.Topologies {
				for _, dist := range m.Distributions {
					for _, d := range m.Thresholds {
						jobs = append(jobs, Job{Migration: &MigrationConfig{
							Policy:       policy,
							Topology:     topology,
							Distribution: dist,
							Threshold:    d,
							Requests:     s.Requests,
							Repetitions:  s.Repetitions,
							Seed:         s.Seed,
							StartPage:    m.StartPage,
						}})
					}
				}
			}
		}
	}
	if a := s.Allocation; a != nil {
		for _, dist := range a.Distributions {
			for _, d := range a.Thresholds {
				for _, p := range a.WriteRatios {
					jobs = append(jobs, Job{Allocation: &AllocationConfig{
						Size:         a.Size,
						Distribution: dist,
						Threshold:    d,
						WriteRatio:   p,
						Charge:       a.Charge,
						Requests:     s.Requests,
						Repetitions:  s.Repetitions,
						Seed:         s.Seed,
						StartPage:    a.StartPage,
					}})
				}
			}
		}
	}
	return jobs
}

// Validate checks every job of the sweep before anything runs.
func (s *Sweep) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", s.Workers)
	}
	jobs := s.Jobs()
	if len(jobs) == 0 {
		return fmt.Errorf("sweep has no combinations")
	}
	for _, job := range jobs {
		var err error
		if job.Migration != nil {
			err = job.Migration.Validate()
		} else {
			err = job.Allocation.Validate()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", job.Name(), err)
		}
	}
	return nil
}

// Run executes every job on at most s.Workers goroutines and writes each
// curve to outDir. Jobs share no mutable state. The first error stops the
// dispatch of further jobs and is returned once in-flight jobs finish.
func (s *Sweep) Run(outDir string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jobs := s.Jobs()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(s.Workers)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		logrus.Infof("[%d/%d] %s", i+1, len(jobs), job.Name())
		job := job
		g.Go(func() error {
			return runJob(job, outDir)
		})
	}
	return g.Wait()
}

func runJob(job Job, outDir string) error {
	curve, err := job.Run()
	if err != nil {
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	summary := curve.Summary()
	logrus.Infof("%s: mean cost %.1f (sd %.1f), %.4f per request",
		job.Name(), summary.MeanCost, summary.StdDevCost, summary.CostPerRequest)
	return curve.Save(filepath.Join(outDir, job.Name()))
}
