// Package experiment drives the placement engines through synthetic request
// streams and averages their cumulative cost curves across repetitions.
package experiment

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/pagesim/pagesim/sim"
	"github.com/pagesim/pagesim/sim/allocation"
	"github.com/pagesim/pagesim/sim/graph"
	"github.com/pagesim/pagesim/sim/migration"
	"github.com/pagesim/pagesim/sim/trace"
	"github.com/pagesim/pagesim/sim/workload"
)

// RunMigration runs cfg.Repetitions independent migration simulations and
// returns the averaged cumulative cost curve.
//
// Every repetition gets a fresh engine plus private request and placement
// RNGs derived from cfg.Seed, so results are reproducible and repetitions
// never share a random stream. The graph is immutable and shared.
func RunMigration(cfg MigrationConfig) (*Curve, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := graph.New(cfg.Topology)
	if err != nil {
		return nil, err
	}
	sampler, err := workload.NewNodeSampler(cfg.Distribution, g.Size())
	if err != nil {
		return nil, err
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	curve := newCurve(cfg.ResultName(), cfg.Requests, cfg.Repetitions, false)
	cumulative := make([]float64, cfg.Requests)

	for rep := 0; rep < cfg.Repetitions; rep++ {
		placementRNG := rng.ForSubsystem(sim.SubsystemRepetition(sim.SubsystemPlacement, rep))
		policy, err := migration.NewPolicy(cfg.Policy, g, cfg.StartPage, cfg.Threshold, placementRNG)
		if err != nil {
			return nil, err
		}
		stream, err := workload.NewStream(sampler, 0, rng.ForSubsystem(sim.SubsystemRepetition(sim.SubsystemRequests, rep)))
		if err != nil {
			return nil, err
		}

		var st *trace.SimulationTrace
		if rep == 0 && cfg.Trace.Enabled() {
			st = trace.NewSimulationTrace(cfg.Trace)
			curve.Trace = st
		}

		total := 0
		for step := range cumulative {
			op := stream.Next()
			from := policy.Location()
			cost, err := policy.Read(op.Node)
			if err != nil {
				return nil, fmt.Errorf("repetition %d step %d: %w", rep, step, err)
			}
			total += cost
			cumulative[step] = float64(total)

			if st != nil && policy.Location() != from {
				dist, err := g.Distance(from, policy.Location())
				if err != nil {
					return nil, err
				}
				st.RecordMigration(trace.MigrationRecord{Step: step, From: from, To: policy.Location(), Distance: dist, Cost: cost})
			}
		}

		floats.Add(curve.Cost, cumulative)
		curve.FinalCosts[rep] = float64(total)
		curve.Migrations[rep] = float64(policy.Migrations())
		logrus.Debugf("%s: repetition %d cost=%d migrations=%d", curve.Name, rep, total, policy.Migrations())
	}

	curve.average()
	return curve, nil
}

// RunAllocation runs cfg.Repetitions independent Count simulations and
// returns the averaged cumulative cost and replica count curves.
func RunAllocation(cfg AllocationConfig) (*Curve, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampler, err := workload.NewNodeSampler(cfg.Distribution, cfg.Size)
	if err != nil {
		return nil, err
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	curve := newCurve(cfg.ResultName(), cfg.Requests, cfg.Repetitions, true)
	cumulative := make([]float64, cfg.Requests)
	replicas := make([]float64, cfg.Requests)

	for rep := 0; rep < cfg.Repetitions; rep++ {
		step := 0
		opts := []allocation.Option{allocation.WithChargeMode(cfg.Charge)}
		if rep == 0 && cfg.Trace.Enabled() {
			st := trace.NewSimulationTrace(cfg.Trace)
			curve.Trace = st
			opts = append(opts, allocation.WithTransitionHook(func(node int, from, to allocation.NodeState) {
				st.RecordTransition(trace.TransitionRecord{Step: step, Node: node, From: from.String(), To: to.String()})
			}))
		}
		policy, err := allocation.NewCount(cfg.Size, cfg.StartPage, cfg.Threshold, opts...)
		if err != nil {
			return nil, err
		}
		stream, err := workload.NewStream(sampler, cfg.WriteRatio, rng.ForSubsystem(sim.SubsystemRepetition(sim.SubsystemRequests, rep)))
		if err != nil {
			return nil, err
		}

		total := 0
		for step = range cumulative {
			op := stream.Next()
			var cost int
			if op.Write {
				cost, err = policy.Write(op.Node)
			} else {
				cost, err = policy.Read(op.Node)
			}
			if err != nil {
				return nil, fmt.Errorf("repetition %d step %d: %w", rep, step, err)
			}
			total += cost
			cumulative[step] = float64(total)
			replicas[step] = float64(policy.Replicas())
		}

		floats.Add(curve.Cost, cumulative)
		floats.Add(curve.Replicas, replicas)
		curve.FinalCosts[rep] = float64(total)
		logrus.Debugf("%s: repetition %d cost=%d replicas=%d", curve.Name, rep, total, policy.Replicas())
	}

	curve.average()
	return curve, nil
}
