package heatmap

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
)

// Tier is the level of detail the heat layer is rendered at.
type Tier int

const (
	// Regional renders one cloud per region (zoom < 12).
	Regional Tier = iota
	// Detailed renders one cloud per sub-location (12 <= zoom < 14).
	Detailed
	// UltraDetailed adds a grid around each sub-location (zoom >= 14).
	UltraDetailed
)

func (t Tier) String() string {
	switch t {
	case Regional:
		return "regional"
	case Detailed:
		return "detailed"
	case UltraDetailed:
		return "ultra_detailed"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	for _, c := range []Tier{Regional, Detailed, UltraDetailed} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return eris.Errorf("heatmap: unknown tier %q", b)
}

// TierFor maps a map zoom level to a tier.
func TierFor(zoom int) Tier {
	switch {
	case zoom >= 14:
		return UltraDetailed
	case zoom >= 12:
		return Detailed
	default:
		return Regional
	}
}

// Stop is one gradient color stop.
type Stop struct {
	At    float64
	Color string
}

// Gradient is an ordered color ramp. It serialises as the heat layer's
// {"0.3": "rgba(...)"} object.
type Gradient []Stop

// MarshalJSON implements json.Marshaler.
func (g Gradient) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(g))
	for _, s := range g {
		m[strconv.FormatFloat(s.At, 'f', -1, 64)] = s.Color
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Gradient) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Gradient, 0, len(m))
	for k, v := range m {
		at, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return err
		}
		out = append(out, Stop{At: at, Color: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At < out[j].At })
	*g = out
	return nil
}

// LayerOptions are passed to the heat layer renderer unchanged.
type LayerOptions struct {
	Radius     int      `json:"radius"`
	Blur       int      `json:"blur"`
	MaxZoom    int      `json:"maxZoom"`
	MinOpacity float64  `json:"minOpacity"`
	Gradient   Gradient `json:"gradient"`
}

// Options returns the renderer options for a tier.
func Options(t Tier) LayerOptions {
	switch t {
	case UltraDetailed:
		return LayerOptions{
			Radius: 20, Blur: 10, MaxZoom: 18, MinOpacity: 0.1,
			Gradient: Gradient{
				{0.0, "rgba(0, 0, 255, 0)"},
				{0.1, "rgba(0, 0, 255, 0.6)"},
				{0.2, "rgba(0, 100, 255, 0.7)"},
				{0.3, "rgba(0, 150, 255, 0.8)"},
				{0.4, "rgba(0, 255, 255, 0.8)"},
				{0.5, "rgba(0, 255, 150, 0.9)"},
				{0.6, "rgba(50, 255, 50, 0.9)"},
				{0.7, "rgba(150, 255, 0, 0.9)"},
				{0.8, "rgba(255, 255, 0, 1.0)"},
				{0.9, "rgba(255, 150, 0, 1.0)"},
				{1.0, "rgba(255, 0, 0, 1.0)"},
			},
		}
	case Detailed:
		return LayerOptions{
			Radius: 30, Blur: 18, MaxZoom: 18, MinOpacity: 0.2,
			Gradient: Gradient{
				{0.0, "rgba(0, 0, 255, 0)"},
				{0.2, "rgba(0, 0, 255, 0.7)"},
				{0.4, "rgba(0, 255, 255, 0.8)"},
				{0.6, "rgba(0, 255, 0, 0.9)"},
				{0.8, "rgba(255, 255, 0, 1.0)"},
				{1.0, "rgba(255, 0, 0, 1.0)"},
			},
		}
	default:
		return LayerOptions{
			Radius: 45, Blur: 30, MaxZoom: 18, MinOpacity: 0.3,
			Gradient: Gradient{
				{0.0, "rgba(0, 0, 255, 0)"},
				{0.3, "rgba(0, 0, 255, 0.8)"},
				{0.5, "rgba(0, 255, 255, 0.9)"},
				{0.7, "rgba(0, 255, 0, 1.0)"},
				{0.9, "rgba(255, 255, 0, 1.0)"},
				{1.0, "rgba(255, 0, 0, 1.0)"},
			},
		}
	}
}

// PointsPerRegion is the exact number of points a tier emits for a region
// with subCount sub-locations.
func PointsPerRegion(t Tier, subCount int) int {
	switch t {
	case UltraDetailed:
		return 17 * subCount
	case Detailed:
		return 9 * subCount
	default:
		return 1 + ringPoints + scatterPoints
	}
}
