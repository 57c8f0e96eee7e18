package cmd

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagesim/pagesim/sim/experiment"
	"github.com/pagesim/pagesim/sim/graph"
	"github.com/pagesim/pagesim/sim/migration"
	"github.com/pagesim/pagesim/sim/trace"
)

var (
	migrationPolicy string // move-to-min or coin-flip
	topologyKind    string // torus3d, hypercube or torus
	torusDimension  int    // Dimension for --topology torus
	torusSide       int    // Side length for --topology torus
)

// migrationCmd runs one page migration experiment
var migrationCmd = &cobra.Command{
	Use:   "migration",
	Short: "Run a single-copy page migration experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := migrationConfigFromFlags()
		if err := runMigration(cmd.OutOrStdout(), cfg, outPath); err != nil {
			logrus.Fatalf("Migration experiment failed: %v", err)
		}
	},
}

func migrationConfigFromFlags() experiment.MigrationConfig {
	return experiment.MigrationConfig{
		Policy: migrationPolicy,
		Topology: graph.TopologyConfig{
			Kind:      topologyKind,
			Dimension: torusDimension,
			Side:      torusSide,
		},
		Distribution: distribution,
		Threshold:    threshold,
		Requests:     requests,
		Repetitions:  repetitions,
		Seed:         seed,
		StartPage:    startPage,
		Trace:        trace.TraceLevel(traceLevel),
	}
}

func runMigration(w io.Writer, cfg experiment.MigrationConfig, path string) error {
	logrus.Infof("Starting %s on %s: d=%d, %d requests x %d repetitions",
		cfg.Policy, cfg.Topology.Name(), cfg.Threshold, cfg.Requests, cfg.Repetitions)
	start := time.Now()
	curve, err := experiment.RunMigration(cfg)
	if err != nil {
		return err
	}
	logrus.Infof("Simulation complete in %v", time.Since(start))
	return report(w, curve, path)
}

func init() {
	addRunFlags(migrationCmd)
	migrationCmd.Flags().StringVar(&migrationPolicy, "policy", migration.MoveToMinName, "Migration policy (move-to-min, coin-flip)")
	migrationCmd.Flags().StringVar(&topologyKind, "topology", graph.Torus3D, "Topology (torus3d, hypercube, torus)")
	migrationCmd.Flags().IntVar(&torusDimension, "dimension", 3, "Torus dimension for --topology torus")
	migrationCmd.Flags().IntVar(&torusSide, "side", 4, "Torus side length for --topology torus")
}
