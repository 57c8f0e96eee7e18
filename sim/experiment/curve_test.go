package experiment

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurve_WriteTo(t *testing.T) {
	tests := []struct {
		name  string
		curve *Curve
		want  string
	}{
		{
			name:  "migration",
			curve: &Curve{Cost: []float64{1, 2.5, 1000000}},
			want:  "1\n2.5\n1000000\n",
		},
		{
			name:  "allocation",
			curve: &Curve{Cost: []float64{1, 1.5}, Replicas: []float64{1, 2.25}},
			want:  "1;1\n1.5;2.25\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := tt.curve.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, int64(len(tt.want)), n)
		})
	}
}

func TestCurve_Save(t *testing.T) {
	curve := newCurve("x", 3, 1, true)
	copy(curve.Cost, []float64{0, 1, 1})
	copy(curve.Replicas, []float64{1, 1, 2})
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, curve.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"0;1", "1;1", "1;2"}, lines)
}

func TestCurve_SaveFailsForMissingDirectory(t *testing.T) {
	curve := newCurve("x", 1, 1, false)
	err := curve.Save(filepath.Join(t.TempDir(), "missing", "result.txt"))
	assert.Error(t, err)
}

func TestCurve_Summary(t *testing.T) {
	curve := &Curve{
		Cost:       []float64{1, 2, 3, 4},
		FinalCosts: []float64{2, 4, 6},
		Migrations: []float64{1, 2, 3},
	}
	s := curve.Summary()
	assert.Equal(t, 4, s.Steps)
	assert.Equal(t, 3, s.Repetitions)
	assert.InDelta(t, 4.0, s.MeanCost, 1e-12)
	assert.InDelta(t, 2.0, s.StdDevCost, 1e-12)
	assert.InDelta(t, 1.0, s.CostPerRequest, 1e-12)
	assert.InDelta(t, 2.0, s.MeanMigrations, 1e-12)
	assert.Zero(t, s.MeanReplicas)

	single := &Curve{Cost: []float64{5}, FinalCosts: []float64{5}, Replicas: []float64{3}}
	s = single.Summary()
	assert.Equal(t, 5.0, s.MeanCost)
	assert.Zero(t, s.StdDevCost)
	assert.Equal(t, 3.0, s.MeanReplicas)
}

func TestCurve_Average(t *testing.T) {
	curve := newCurve("x", 2, 4, true)
	copy(curve.Cost, []float64{4, 8})
	copy(curve.Replicas, []float64{4, 12})
	curve.average()
	assert.Equal(t, []float64{1, 2}, curve.Cost)
	assert.Equal(t, []float64{1, 3}, curve.Replicas)
}
