package snapshot

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// NodeSpec describes a simulated federated participant.
type NodeSpec struct {
	ID     string
	Name   string
	Weight float64
}

// DefaultNodes are the five Mangalore nodes the simulator reports on.
var DefaultNodes = []NodeSpec{
	{ID: "node_north", Name: "North Mangalore Node", Weight: 0.25},
	{ID: "node_south", Name: "South Mangalore Node", Weight: 0.20},
	{ID: "node_east", Name: "East Mangalore Node", Weight: 0.18},
	{ID: "node_west", Name: "West Mangalore Node", Weight: 0.22},
	{ID: "node_central", Name: "Central Mangalore Node", Weight: 0.15},
}

// SimConfig tunes the daily-cycle consumption model.
type SimConfig struct {
	BaseKW      float64
	VariationKW float64
	NoiseKW     float64
	MaxErrorPct float64
	Nodes       []NodeSpec
}

// DefaultSimConfig returns the stock simulator settings.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		BaseKW:      2500,
		VariationKW: 500,
		NoiseKW:     50,
		MaxErrorPct: 8,
		Nodes:       DefaultNodes,
	}
}

// Simulator produces synthetic federated prediction snapshots.
type Simulator struct {
	Rand *rand.Rand
	Now  func() time.Time
	Cfg  SimConfig
}

// NewSimulator creates a Simulator seeded from entropy.
func NewSimulator(cfg SimConfig) *Simulator {
	if len(cfg.Nodes) == 0 {
		cfg.Nodes = DefaultNodes
	}
	return &Simulator{
		Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Now:  time.Now,
		Cfg:  cfg,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.Rand.Float64()*(hi-lo)
}

// Generate builds the snapshot for a zero-based step. Each step stands for
// one hour of a 24-hour sine cycle.
func (s *Simulator) Generate(step int) *Snapshot {
	cycle := math.Sin(2 * math.Pi * float64(step) / 24)
	actual := s.Cfg.BaseKW + cycle*s.Cfg.VariationKW + s.uniform(-s.Cfg.NoiseKW, s.Cfg.NoiseKW)
	predicted := actual * (1 + s.uniform(-s.Cfg.MaxErrorPct/100, s.Cfg.MaxErrorPct/100))
	actual = math.Max(0, actual)
	predicted = math.Max(0, predicted)

	errPct := math.Abs(predicted-actual) / (actual + 1e-9) * 100
	status := "⚠️ Warning"
	if errPct < 5 {
		status = "✅ Success"
	}

	nodes := make([]FederatedNode, 0, len(s.Cfg.Nodes))
	var federated float64
	for _, n := range s.Cfg.Nodes {
		local := predicted * (1 + s.uniform(-0.1, 0.1))
		node := FederatedNode{
			NodeID:            n.ID,
			NodeName:          n.Name,
			LocalPredictionKW: round2(local),
			NodeWeight:        n.Weight,
			AccuracyScore:     round2(s.uniform(85, 98)),
			Contribution:      round2(local * n.Weight),
		}
		nodes = append(nodes, node)
		federated += node.Contribution
	}

	now := s.Now().UTC()
	return &Snapshot{
		Index:                 step + 1,
		TimestampUTC:          now.Format("2006-01-02T15:04:05.000000Z"),
		PredictionID:          fmt.Sprintf("pred_%d_%d", now.Unix(), step),
		ActualKW:              round2(actual),
		PredictedKW:           round2(predicted),
		FederatedPredictionKW: round2(federated),
		ErrorPercent:          round2(errPct),
		FederatedErrorPercent: round2(math.Abs(federated-actual) / (actual + 1e-9) * 100),
		Status:                status,
		ModelVersion:          fmt.Sprintf("2.1.%d", s.Rand.IntN(6)),
		FederatedNodes:        nodes,
		AggregationMethod:     "weighted_average",
		TotalNodes:            len(nodes),
	}
}

// Run writes count snapshots to sink, one every interval, starting at index 1.
// It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, sink Sink, count int, interval time.Duration) error {
	if count < 1 || count > MaxIndex {
		return eris.Errorf("snapshot: count must be between 1 and %d", MaxIndex)
	}

	for i := 0; i < count; i++ {
		snap := s.Generate(i)
		data, err := Encode(snap)
		if err != nil {
			return err
		}
		if err := sink.Save(ctx, snap.Index, data); err != nil {
			return eris.Wrapf(err, "snapshot: save %s", Name(snap.Index))
		}
		zap.L().Info("simulate: wrote snapshot",
			zap.String("name", Name(snap.Index)),
			zap.Float64("predicted_kw", snap.PredictedKW),
			zap.String("status", snap.Status),
		)

		if i == count-1 || interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}
