// Package snapshot models federated prediction snapshots and loads the
// newest one from a numbered resource source.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// MaxIndex is the highest snapshot resource index the loader considers.
const MaxIndex = 100

// ErrNotFound is returned by a Source when the indexed resource does not exist.
var ErrNotFound = eris.New("snapshot: not found")

// FederatedNode is one participant's contribution to a federated prediction.
type FederatedNode struct {
	NodeID            string  `json:"node_id"`
	NodeName          string  `json:"node_name"`
	NodeWeight        float64 `json:"node_weight"`
	AccuracyScore     float64 `json:"accuracy_score"`
	LocalPredictionKW float64 `json:"local_prediction_kw"`
	Contribution      float64 `json:"contribution"`
}

// Snapshot is a single prediction snapshot as written by the backend
// simulator. Snapshots are never mutated after decoding.
type Snapshot struct {
	Index int `json:"-"`

	PredictedKW           float64         `json:"predicted_24h_sum_kw"`
	ActualKW              float64         `json:"actual_24h_sum_kw"`
	ErrorPercent          float64         `json:"error_percent"`
	ModelVersion          string          `json:"model_version"`
	TimestampUTC          string          `json:"timestamp_utc"`
	Status                string          `json:"status"`
	PredictionID          string          `json:"prediction_id,omitempty"`
	FederatedPredictionKW float64         `json:"federated_prediction_kw,omitempty"`
	FederatedErrorPercent float64         `json:"federated_error_percent,omitempty"`
	AggregationMethod     string          `json:"aggregation_method,omitempty"`
	TotalNodes            int             `json:"total_nodes,omitempty"`
	FederatedNodes        []FederatedNode `json:"federated_nodes,omitempty"`
}

// HasNodes reports whether the snapshot carries federated node data.
func (s *Snapshot) HasNodes() bool {
	return s != nil && len(s.FederatedNodes) > 0
}

// Time parses TimestampUTC. The simulator writes microsecond ISO-8601
// stamps with a trailing Z.
func (s *Snapshot) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s.TimestampUTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "snapshot: parse timestamp %q", s.TimestampUTC)
	}
	return t, nil
}

// Decode parses a snapshot document.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "snapshot: decode")
	}
	return &s, nil
}

// Encode renders a snapshot document the way the simulator writes it.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: encode")
	}
	return data, nil
}

// Name returns the resource name for a snapshot index, e.g. prediction_052.json.
func Name(index int) string {
	return fmt.Sprintf("prediction_%03d.json", index)
}

// ParseName extracts the index from a resource name. It accepts bare names
// and slash-separated paths.
func ParseName(name string) (int, bool) {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if !strings.HasPrefix(name, "prediction_") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	// Only the exact form Name produces is accepted.
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "prediction_"), ".json")
	if len(digits) != 3 || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxIndex {
		return 0, false
	}
	return n, true
}
