package snapshot

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(seed uint64) *Simulator {
	sim := NewSimulator(DefaultSimConfig())
	sim.Rand = rand.New(rand.NewPCG(seed, seed))
	sim.Now = func() time.Time { return time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC) }
	return sim
}

func TestSimulator_Generate(t *testing.T) {
	sim := newTestSimulator(1)

	for step := 0; step < 48; step++ {
		s := sim.Generate(step)

		assert.Equal(t, step+1, s.Index)
		assert.Equal(t, "weighted_average", s.AggregationMethod)
		assert.Equal(t, 5, s.TotalNodes)
		require.Len(t, s.FederatedNodes, 5)
		assert.True(t, strings.HasPrefix(s.ModelVersion, "2.1."))
		assert.Equal(t, "2025-09-20T10:00:00.000000Z", s.TimestampUTC)

		// base 2500 +/- 500 cycle +/- 50 noise
		assert.GreaterOrEqual(t, s.ActualKW, 1950.0)
		assert.LessOrEqual(t, s.ActualKW, 3050.0)
		assert.LessOrEqual(t, s.ErrorPercent, 8.0+0.01)

		if s.ErrorPercent < 5 {
			assert.Equal(t, "✅ Success", s.Status)
		} else {
			assert.Equal(t, "⚠️ Warning", s.Status)
		}

		var sum float64
		for _, n := range s.FederatedNodes {
			assert.GreaterOrEqual(t, n.AccuracyScore, 85.0)
			assert.LessOrEqual(t, n.AccuracyScore, 98.0)
			ratio := n.LocalPredictionKW / s.PredictedKW
			assert.InDelta(t, 1.0, ratio, 0.1+1e-4)
			assert.InDelta(t, n.LocalPredictionKW*n.NodeWeight, n.Contribution, 0.01)
			sum += n.Contribution
		}
		assert.InDelta(t, sum, s.FederatedPredictionKW, 0.01)
	}
}

func TestSimulator_DailyCycle(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.NoiseKW = 0
	cfg.MaxErrorPct = 0
	sim := NewSimulator(cfg)

	peak := sim.Generate(6)
	trough := sim.Generate(18)
	assert.InDelta(t, 3000, peak.ActualKW, 0.01)
	assert.InDelta(t, 2000, trough.ActualKW, 0.01)
	assert.InDelta(t, 0, peak.ErrorPercent, 1e-6)
	assert.Equal(t, "✅ Success", peak.Status)
}

func TestSimulator_NodeWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, n := range DefaultNodes {
		sum += n.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSimulator_Run(t *testing.T) {
	sim := newTestSimulator(2)
	src := NewDirSource(t.TempDir())
	ctx := context.Background()

	require.NoError(t, sim.Run(ctx, src, 3, 0))

	idx, err := src.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, idx)

	s, err := NewLoader(src, 0).Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Index)
	assert.False(t, math.IsNaN(s.PredictedKW))
}

func TestSimulator_RunValidatesCount(t *testing.T) {
	sim := newTestSimulator(3)
	src := NewDirSource(t.TempDir())

	assert.Error(t, sim.Run(context.Background(), src, 0, 0))
	assert.Error(t, sim.Run(context.Background(), src, 101, 0))
}

func TestSimulator_RunCancelled(t *testing.T) {
	sim := newTestSimulator(4)
	src := NewDirSource(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	sink := sinkFunc(func(c context.Context, i int, d []byte) error {
		cancel()
		return src.Save(c, i, d)
	})

	err := sim.Run(ctx, sink, 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	idx, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, idx)
}

type sinkFunc func(ctx context.Context, index int, data []byte) error

func (f sinkFunc) Save(ctx context.Context, index int, data []byte) error { return f(ctx, index, data) }
