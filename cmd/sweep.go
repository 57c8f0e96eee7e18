package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagesim/pagesim/sim/experiment"
)

var (
	sweepConfigPath string // YAML sweep file; empty runs the default grid
	sweepWorkers    int    // Parallel combinations
	sweepOutDir     string // Directory for result files
)

// sweepCmd runs a whole parameter grid and writes one result file per combination
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a parameter sweep and write one result file per combination",
	Run: func(cmd *cobra.Command, args []string) {
		sweep, err := loadSweep(cmd, sweepConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to load sweep: %v", err)
		}
		logrus.Infof("Running %d combinations on %d workers into %s", len(sweep.Jobs()), sweep.Workers, sweepOutDir)
		start := time.Now()
		if err := sweep.Run(sweepOutDir); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		logrus.Infof("Sweep complete in %v", time.Since(start))
	},
}

// loadSweep reads the sweep file (or the default grid) and applies the flags
// the user set explicitly on top of it.
func loadSweep(cmd *cobra.Command, path string) (*experiment.Sweep, error) {
	sweep := experiment.DefaultSweep()
	if path != "" {
		var err error
		if sweep, err = experiment.LoadSweep(path); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		sweep.Seed = seed
	}
	if flags.Changed("requests") {
		sweep.Requests = requests
	}
	if flags.Changed("reps") {
		sweep.Repetitions = repetitions
	}
	if flags.Changed("workers") {
		sweep.Workers = sweepWorkers
	}
	return sweep, nil
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "YAML sweep file (default: built-in reference grid)")
	sweepCmd.Flags().StringVar(&sweepOutDir, "out", "results", "Directory for result files")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 1, "Number of combinations run in parallel")
	sweepCmd.Flags().Int64Var(&seed, "seed", 42, "Seed override")
	sweepCmd.Flags().IntVar(&requests, "requests", 65536, "Requests per repetition override")
	sweepCmd.Flags().IntVar(&repetitions, "reps", 100, "Repetitions override")
}
