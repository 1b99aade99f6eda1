package causal

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func stepData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i%20) / 2
		x[i] = []float64{v, float64(i % 3)}
		if v < 5 {
			y[i] = 1
		} else {
			y[i] = 9
		}
	}
	return x, y
}

func TestForestLearnsStep(t *testing.T) {
	x, y := stepData(200)
	cfg := ForestConfig{Trees: 30, MaxDepth: 4, MinSamplesLeaf: 5, Workers: 4}
	f, err := FitForest(context.Background(), x, y, cfg, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.InDelta(t, 1, f.Predict([]float64{1, 0}), 0.5)
	require.InDelta(t, 9, f.Predict([]float64{8, 2}), 0.5)
}

func TestForestIndependentOfWorkerCount(t *testing.T) {
	x, y := stepData(120)
	cfg := ForestConfig{Trees: 25, MaxDepth: 6, MinSamplesLeaf: 3, Workers: 1}
	a, err := FitForest(context.Background(), x, y, cfg, rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	cfg.Workers = 8
	b, err := FitForest(context.Background(), x, y, cfg, rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	for _, row := range x {
		require.Equal(t, a.Predict(row), b.Predict(row))
	}
}

func TestForestConstantFeatures(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}, {1}}
	f, err := FitForest(context.Background(), x, []float64{2, 2, 2, 2}, DefaultForestConfig(), rand.New(rand.NewPCG(0, 0)))
	require.NoError(t, err)
	require.Equal(t, 2.0, f.Predict([]float64{1}))
}

func TestForestRejectsEmpty(t *testing.T) {
	_, err := FitForest(context.Background(), nil, nil, DefaultForestConfig(), rand.New(rand.NewPCG(0, 0)))
	require.ErrorIs(t, err, ErrDegenerate)
}
