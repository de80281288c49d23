// Package insights derives operator alerts from consecutive prediction
// snapshots and serves a feed of canned operational notices.
package insights

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

// Severity classifies an insight.
type Severity string

// Severities, in rising order of urgency.
const (
	Success  Severity = "success"
	Info     Severity = "info"
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Insight is a single operator notice.
type Insight struct {
	Type    Severity `json:"type"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Icon    string   `json:"icon"`
	Action  string   `json:"action,omitempty"`
}

// Thresholds controlling Analyze.
const (
	ConsumptionRisePct  = 15.0
	ConsumptionDropPct  = -20.0
	AccuracyDropPts     = -5.0
	AccuracyGainPts     = 3.0
	FederatedErrorRise  = 3.0
	PeakLoadKW          = 2800.0
	OptimalFederatedErr = 3.0
	RandomInsightChance = 0.2
	RandomInsightCap    = 2
)

// Analyzer compares the current snapshot with the previous one.
type Analyzer struct {
	Rand *rand.Rand
}

// NewAnalyzer returns an Analyzer seeded from entropy.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Analyze returns the insights for cur relative to prev. Nodes are paired
// by position. Nothing is produced without a previous snapshot or when the
// current one has no federated nodes.
func (a *Analyzer) Analyze(cur, prev *snapshot.Snapshot) []Insight {
	out := []Insight{}
	if cur == nil || prev == nil || !cur.HasNodes() {
		return out
	}

	for i, node := range cur.FederatedNodes {
		if i >= len(prev.FederatedNodes) {
			break
		}
		pn := prev.FederatedNodes[i]

		// A zero baseline has no meaningful percentage change.
		if pn.LocalPredictionKW > 0 {
			change := (node.LocalPredictionKW - pn.LocalPredictionKW) / pn.LocalPredictionKW * 100
			if change > ConsumptionRisePct {
				out = append(out, Insight{
					Type:    Warning,
					Title:   "High Consumption Alert",
					Message: fmt.Sprintf("%s shows %.1f%% increase in energy consumption. Check transformer load capacity and grid stability.", node.NodeName, change),
					Icon:    "⚡",
				})
			}
			if change < ConsumptionDropPct {
				out = append(out, Insight{
					Type:    Info,
					Title:   "Consumption Drop Detected",
					Message: fmt.Sprintf("%s consumption dropped by %.1f%%. Possible load shedding or equipment maintenance.", node.NodeName, math.Abs(change)),
					Icon:    "📉",
				})
			}
		}

		acc := node.AccuracyScore - pn.AccuracyScore
		if acc < AccuracyDropPts {
			out = append(out, Insight{
				Type:    Warning,
				Title:   "Model Performance Alert",
				Message: fmt.Sprintf("%s prediction accuracy decreased by %.1f%%. Consider model retraining or data quality check.", node.NodeName, math.Abs(acc)),
				Icon:    "🔧",
			})
		}
		if acc > AccuracyGainPts {
			out = append(out, Insight{
				Type:    Success,
				Title:   "Performance Improvement",
				Message: fmt.Sprintf("%s shows improved prediction accuracy (+%.1f%%). Federated learning optimization successful.", node.NodeName, acc),
				Icon:    "✅",
			})
		}
	}

	if rise := cur.FederatedErrorPercent - prev.FederatedErrorPercent; rise > FederatedErrorRise {
		out = append(out, Insight{
			Type:    Critical,
			Title:   "System-wide Accuracy Drop",
			Message: fmt.Sprintf("Federated model error increased by %.1f%%. Grid instability detected. Recommend immediate load balancing review.", rise),
			Icon:    "🚨",
		})
	}

	if cur.PredictedKW > PeakLoadKW {
		out = append(out, Insight{
			Type:    Warning,
			Title:   "Peak Load Warning",
			Message: fmt.Sprintf("Predicted consumption of %.1f MWh approaching grid capacity. Activate demand response protocols.", cur.PredictedKW/1000),
			Icon:    "⚠️",
		})
	}

	if cur.FederatedErrorPercent < OptimalFederatedErr {
		out = append(out, Insight{
			Type:    Success,
			Title:   "Optimal Grid Performance",
			Message: fmt.Sprintf("Federated learning achieving %.1f%% accuracy. All regional nodes operating efficiently.", 100-cur.FederatedErrorPercent),
			Icon:    "🎯",
		})
	}

	if a.Rand.Float64() < RandomInsightChance && len(out) < RandomInsightCap {
		out = append(out, analysisExtras[a.Rand.IntN(len(analysisExtras))])
	}
	return out
}
