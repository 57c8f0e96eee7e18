// Package trace provides decision-trace recording for placement policy analysis.
// The package stores plain data types and does not import the engines.
package trace

// MigrationRecord captures a single page relocation.
type MigrationRecord struct {
	Step     int
	From     int
	To       int
	Distance int
	Cost     int // total cost of the step, access included
}

// TransitionRecord captures a replica state change of one node.
// States are the lower-case names of the allocation node states.
type TransitionRecord struct {
	Step int
	Node int
	From string
	To   string
}
