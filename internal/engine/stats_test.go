package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"agentops/internal/engine"
)

func TestMean(t *testing.T) {
	require.Equal(t, 0.0, engine.Mean(nil))
	require.Equal(t, 3.0, engine.Mean([]float64{1, 2, 3, 4, 5}))
	require.Equal(t, 2.5, engine.Mean([]float64{2, 3}))
}

func TestP95NearestRank(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"one through ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 9},
		{"one through five", []float64{1, 2, 3, 4, 5}, 4},
		{"unsorted input", []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}, 9},
		{"two values", []float64{1, 100}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, engine.P95(tt.values))
		})
	}
}

func TestP95DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	engine.P95(values)
	require.Equal(t, []float64{3, 1, 2}, values)
}
