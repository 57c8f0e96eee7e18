package experiment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pagesim/pagesim/sim/trace"
)

// Curve is the per-step result of an experiment averaged over repetitions.
type Curve struct {
	Name string
	// Cost[i] is the mean cumulative cost after step i.
	Cost []float64
	// Replicas[i] is the mean replica count after step i. Nil for migration.
	Replicas []float64
	// FinalCosts holds each repetition's total cost.
	FinalCosts []float64
	// Migrations holds each repetition's migration count. Nil for allocation.
	Migrations []float64
	// Trace holds the decisions of the first repetition when tracing is on.
	Trace *trace.SimulationTrace
}

func newCurve(name string, steps, repetitions int, withReplicas bool) *Curve {
	c := &Curve{
		Name:       name,
		Cost:       make([]float64, steps),
		FinalCosts: make([]float64, repetitions),
	}
	if withReplicas {
		c.Replicas = make([]float64, steps)
	} else {
		c.Migrations = make([]float64, repetitions)
	}
	return c
}

// average turns the per-step sums into means.
func (c *Curve) average() {
	scale := 1 / float64(len(c.FinalCosts))
	floats.Scale(scale, c.Cost)
	if c.Replicas != nil {
		floats.Scale(scale, c.Replicas)
	}
}

// Summary condenses a Curve into a few numbers.
type Summary struct {
	Steps          int
	Repetitions    int
	MeanCost       float64 // mean total cost per repetition
	StdDevCost     float64 // sample std-dev of total cost; 0 for one repetition
	CostPerRequest float64
	MeanMigrations float64 // migration only
	MeanReplicas   float64 // allocation only, averaged over steps
}

// Summary computes the Summary of c.
func (c *Curve) Summary() Summary {
	s := Summary{Steps: len(c.Cost), Repetitions: len(c.FinalCosts)}
	if len(c.FinalCosts) > 1 {
		s.MeanCost, s.StdDevCost = stat.MeanStdDev(c.FinalCosts, nil)
	} else if len(c.FinalCosts) == 1 {
		s.MeanCost = c.FinalCosts[0]
	}
	if s.Steps > 0 {
		s.CostPerRequest = s.MeanCost / float64(s.Steps)
	}
	if len(c.Migrations) > 0 {
		s.MeanMigrations = stat.Mean(c.Migrations, nil)
	}
	if len(c.Replicas) > 0 {
		s.MeanReplicas = stat.Mean(c.Replicas, nil)
	}
	return s
}

// WriteTo writes one line per step: "cost" for migration curves and
// "cost;replicas" for allocation curves.
func (c *Curve) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for i, cost := range c.Cost {
		line := formatFloat(cost)
		if c.Replicas != nil {
			line += ";" + formatFloat(c.Replicas[i])
		}
		n, err := bw.WriteString(line + "\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// Save writes the curve to path, replacing any existing file.
func (c *Curve) Save(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing result file: %w", closeErr)
		}
	}()

	if _, err := c.WriteTo(file); err != nil {
		return fmt.Errorf("writing result file %s: %w", path, err)
	}
	logrus.Debugf("Successfully wrote %d steps to '%s'", len(c.Cost), path)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
