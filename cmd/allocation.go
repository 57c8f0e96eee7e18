package cmd

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pagesim/pagesim/sim/allocation"
	"github.com/pagesim/pagesim/sim/experiment"
	"github.com/pagesim/pagesim/sim/trace"
)

var (
	universeSize int     // Number of nodes
	writeRatio   float64 // Probability that a request is a write
	chargeMode   string  // settled or upfront
)

// allocationCmd runs one Count replication experiment
var allocationCmd = &cobra.Command{
	Use:   "allocation",
	Short: "Run a multi-copy replication experiment with the Count scheme",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := allocationConfigFromFlags()
		if err := runAllocation(cmd.OutOrStdout(), cfg, outPath); err != nil {
			logrus.Fatalf("Allocation experiment failed: %v", err)
		}
	},
}

func allocationConfigFromFlags() experiment.AllocationConfig {
	return experiment.AllocationConfig{
		Size:         universeSize,
		Distribution: distribution,
		Threshold:    threshold,
		WriteRatio:   writeRatio,
		Charge:       allocation.ChargeMode(chargeMode),
		Requests:     requests,
		Repetitions:  repetitions,
		Seed:         seed,
		StartPage:    startPage,
		Trace:        trace.TraceLevel(traceLevel),
	}
}

func runAllocation(w io.Writer, cfg experiment.AllocationConfig, path string) error {
	logrus.Infof("Starting Count on %d nodes: d=%d, p=%v, %d requests x %d repetitions",
		cfg.Size, cfg.Threshold, cfg.WriteRatio, cfg.Requests, cfg.Repetitions)
	start := time.Now()
	curve, err := experiment.RunAllocation(cfg)
	if err != nil {
		return err
	}
	logrus.Infof("Simulation complete in %v", time.Since(start))
	return report(w, curve, path)
}

func init() {
	addRunFlags(allocationCmd)
	allocationCmd.Flags().IntVar(&universeSize, "size", 64, "Number of nodes")
	allocationCmd.Flags().Float64Var(&writeRatio, "write-ratio", 0.1, "Probability that a request is a write")
	allocationCmd.Flags().StringVar(&chargeMode, "charge", string(allocation.ChargeSettled), "Charge mode (settled, upfront)")
}
