// Package sim holds the types shared by the placement simulators.
//
// # Reading Guide
//
// Start with the engines, then the driver:
//   - graph/: metric topologies (torus, hypercube) giving node distances
//   - migration/: single-copy page migration (move-to-min, coin-flip)
//   - allocation/: multi-copy replication with the Count scheme
//   - workload/: synthetic request streams over node addresses
//   - experiment/: repetitions, averaged cost curves, result files, sweeps
//   - trace/: decision records (migrations, replica state changes) of one run
//
// # Shared Types
//
// This package owns the pieces every engine needs:
//   - ErrInvalidIndex / IndexError: the only failure an engine reports
//   - CheckIndex: the bounds check behind every Read and Write
//   - SimulationKey / PartitionedRNG: isolated, reproducible random streams
//
// Engines are single-threaded. Each Read or Write completes its relocation,
// promotion or consolidation before returning the cost of that one step.
package sim
