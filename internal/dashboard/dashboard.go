// Package dashboard shapes snapshots and region data into the values the
// user and operator views display, including the placeholders shown when
// no snapshot is available.
package dashboard

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/series"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

// Placeholders used when no snapshot could be loaded.
const (
	PlaceholderMWh    = "1.25"
	PlaceholderStatus = "✅ Success"
	PlaceholderNodes  = 6
	WaitingForData    = "Waiting for data..."
)

// MWh formats kilowatts as megawatt-hours with two decimals.
func MWh(kw float64) string {
	return strconv.FormatFloat(kw/1000, 'f', 2, 64)
}

// Federated summarises the federated round behind a snapshot.
type Federated struct {
	TotalNodes   int     `json:"total_nodes"`
	ErrorPercent float64 `json:"error_percent"`
}

// Card is the "Current Power Prediction" card.
type Card struct {
	PredictedMWh string     `json:"predicted_mwh"`
	Status       string     `json:"status"`
	Healthy      bool       `json:"healthy"`
	Live         bool       `json:"live"`
	ErrorPercent *float64   `json:"error_percent,omitempty"`
	ActualMWh    string     `json:"actual_mwh,omitempty"`
	ModelVersion string     `json:"model_version,omitempty"`
	Federated    *Federated `json:"federated,omitempty"`
	LastUpdate   string     `json:"last_update"`
}

// NewCard builds the card for s. A nil snapshot yields placeholders.
func NewCard(s *snapshot.Snapshot) Card {
	if s == nil {
		return Card{
			PredictedMWh: PlaceholderMWh,
			Status:       PlaceholderStatus,
			Healthy:      true,
			LastUpdate:   WaitingForData,
		}
	}

	status := s.Status
	if status == "" {
		status = PlaceholderStatus
	}
	errPct := s.ErrorPercent
	c := Card{
		PredictedMWh: MWh(s.PredictedKW),
		Status:       status,
		Healthy:      status == PlaceholderStatus,
		Live:         true,
		ErrorPercent: &errPct,
		ActualMWh:    MWh(s.ActualKW),
		ModelVersion: s.ModelVersion,
		LastUpdate:   s.TimestampUTC,
	}
	if s.HasNodes() {
		c.Federated = &Federated{TotalNodes: s.TotalNodes, ErrorPercent: s.FederatedErrorPercent}
	}
	return c
}

// Node is one tile of the federated node panel.
type Node struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	WeightPct     int     `json:"weight_pct"`
	Accuracy      float64 `json:"accuracy"`
	PredictionMWh string  `json:"prediction_mwh"`
}

// NodePanel is the "Federated Learning Nodes" panel.
type NodePanel struct {
	Nodes             []Node `json:"nodes"`
	Aggregation       string `json:"aggregation"`
	FederatedAccuracy string `json:"federated_accuracy"`
}

// NewNodePanel returns nil when s carries no node data.
func NewNodePanel(s *snapshot.Snapshot) *NodePanel {
	if !s.HasNodes() {
		return nil
	}
	p := &NodePanel{
		Nodes:             make([]Node, len(s.FederatedNodes)),
		Aggregation:       AggregationLabel(s.AggregationMethod),
		FederatedAccuracy: strconv.FormatFloat(100-s.FederatedErrorPercent, 'f', 1, 64) + "%",
	}
	for i, n := range s.FederatedNodes {
		p.Nodes[i] = Node{
			ID:            n.NodeID,
			Name:          n.NodeName,
			WeightPct:     int(n.NodeWeight*100 + 0.5),
			Accuracy:      n.AccuracyScore,
			PredictionMWh: MWh(n.LocalPredictionKW),
		}
	}
	return p
}

// AggregationLabel renders "weighted_average" as "WEIGHTED AVERAGE". Only
// the first underscore is replaced.
func AggregationLabel(method string) string {
	return cases.Upper(language.Und).String(strings.Replace(method, "_", " ", 1))
}

// NodeCount is the node total shown under the heatmap.
func NodeCount(s *snapshot.Snapshot) int {
	if s == nil || s.TotalNodes == 0 {
		return PlaceholderNodes
	}
	return s.TotalNodes
}

// User is the user dashboard payload.
type User struct {
	Card        Card          `json:"card"`
	Consumption series.Series `json:"consumption"`
	Period      series.Period `json:"period"`
}

// Operator is the operator dashboard payload for one region.
type Operator struct {
	Region      grid.Region   `json:"region"`
	Regions     []RegionName  `json:"regions"`
	Card        Card          `json:"card"`
	Consumption series.Series `json:"consumption"`
	Production  series.Series `json:"production"`
	Nodes       *NodePanel    `json:"nodes,omitempty"`
	NodeCount   int           `json:"node_count"`
	Frame       grid.MapFrame `json:"frame"`
}

// RegionName is an entry of the region selector.
type RegionName struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// NewOperator assembles the operator dashboard.
func NewOperator(region grid.Region, live *snapshot.Snapshot, gen *series.Generator) Operator {
	regions := grid.Regions()
	names := make([]RegionName, len(regions))
	for i, r := range regions {
		names[i] = RegionName{Key: r.Key, Name: r.Name}
	}
	return Operator{
		Region:      region,
		Regions:     names,
		Card:        NewCard(live),
		Consumption: gen.Consumption(),
		Production:  gen.Production(),
		Nodes:       NewNodePanel(live),
		NodeCount:   NodeCount(live),
		Frame:       grid.Frame(),
	}
}
