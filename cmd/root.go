package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagesim/pagesim/sim/experiment"
	"github.com/pagesim/pagesim/sim/trace"
	"github.com/pagesim/pagesim/sim/workload"
)

var (
	// CLI flags shared by the run commands
	seed         int64  // Master seed for request streams and coin flips
	logLevel     string // Log verbosity level
	requests     int    // Requests per repetition
	repetitions  int    // Independent repetitions to average
	threshold    int    // Threshold d
	distribution string // Node distribution of request sources
	startPage    int    // Node holding the initial copy
	outPath      string // Result file of a single run
	traceLevel   string // Decision trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pagesim",
	Short: "Simulator for online page migration and replication policies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags every single-experiment command takes.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for request generation and randomized policies")
	cmd.Flags().IntVar(&requests, "requests", 65536, "Number of requests per repetition")
	cmd.Flags().IntVar(&repetitions, "reps", 100, "Number of independent repetitions to average")
	cmd.Flags().IntVar(&threshold, "threshold", 16, "Threshold d")
	cmd.Flags().StringVar(&distribution, "distribution", workload.UniformName, "Request source distribution (uniform, harmonic, biharmonic, geometric)")
	cmd.Flags().IntVar(&startPage, "start-page", 0, "Node holding the initial copy")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the averaged cost curve to this file")
	cmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level for the first repetition (none, decisions)")
}

// report prints the summary of curve to w and saves it when path is set.
func report(w io.Writer, curve *experiment.Curve, path string) error {
	s := curve.Summary()
	fmt.Fprintf(w, "=== %s ===\n", curve.Name)
	fmt.Fprintf(w, "steps:            %d\n", s.Steps)
	fmt.Fprintf(w, "repetitions:      %d\n", s.Repetitions)
	fmt.Fprintf(w, "mean total cost:  %.2f\n", s.MeanCost)
	fmt.Fprintf(w, "stddev:           %.2f\n", s.StdDevCost)
	fmt.Fprintf(w, "cost per request: %.4f\n", s.CostPerRequest)
	if curve.Migrations != nil {
		fmt.Fprintf(w, "mean migrations:  %.2f\n", s.MeanMigrations)
	}
	if curve.Replicas != nil {
		fmt.Fprintf(w, "mean replicas:    %.2f\n", s.MeanReplicas)
	}
	if curve.Trace != nil {
		ts := trace.Summarize(curve.Trace)
		fmt.Fprintf(w, "=== Trace (repetition 0) ===\n")
		if curve.Migrations != nil {
			fmt.Fprintf(w, "migrations:       %d to %d nodes\n", ts.TotalMigrations, ts.UniqueTargets)
			fmt.Fprintf(w, "mean distance:    %.2f (max %d)\n", ts.MeanDistance, ts.MaxDistance)
		} else {
			fmt.Fprintf(w, "promotions:       %d\n", ts.Promotions)
			fmt.Fprintf(w, "pins:             %d\n", ts.Pins)
			fmt.Fprintf(w, "drops:            %d\n", ts.Drops)
		}
	}
	if path == "" {
		return nil
	}
	if err := curve.Save(path); err != nil {
		return err
	}
	logrus.Infof("Wrote %s", path)
	return nil
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(migrationCmd)
	rootCmd.AddCommand(allocationCmd)
	rootCmd.AddCommand(sweepCmd)
}
