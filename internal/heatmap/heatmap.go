// Package heatmap synthesizes zoom-adaptive heat-layer point clouds for the
// regional grid from static regions and the latest prediction snapshot.
package heatmap

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

const (
	minIntensity = 0.1
	maxIntensity = 1.0

	// Regional tier geometry, in degrees.
	regionRadius  = 0.008
	ringPoints    = 12
	scatterPoints = 8

	// Sub-location geometry, in degrees.
	subRadius   = 0.003
	microPoints = 8
	gridStep    = 0.002

	nodeDivisor     = 2000.0
	forecastDivisor = 70.0
)

// Point is a weighted heat-layer point.
type Point struct {
	Lat       float64
	Lng       float64
	Intensity float64
}

// MarshalJSON renders the heat layer's [lat, lng, intensity] triple.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.Lat, p.Lng, p.Intensity})
}

// UnmarshalJSON parses a [lat, lng, intensity] triple.
func (p *Point) UnmarshalJSON(data []byte) error {
	var v [3]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Lat, p.Lng, p.Intensity = v[0], v[1], v[2]
	return nil
}

func clamp(v float64) float64 {
	return grid.Clamp(v, minIntensity, maxIntensity)
}

var fold = cases.Fold()

// MatchNode returns the first federated node whose case-folded name
// contains either of the first two tokens of the region key.
func MatchNode(region grid.Region, live *snapshot.Snapshot) (snapshot.FederatedNode, bool) {
	if !live.HasNodes() {
		return snapshot.FederatedNode{}, false
	}
	a, b := region.KeyTokens()
	for _, n := range live.FederatedNodes {
		name := fold.String(n.NodeName)
		if strings.Contains(name, a) || strings.Contains(name, b) {
			return n, true
		}
	}
	return snapshot.FederatedNode{}, false
}

// BaseIntensity resolves a region's heat. A matching federated node wins
// (local prediction / 2000); otherwise the region's day forecast / 70.
func BaseIntensity(region grid.Region, live *snapshot.Snapshot) float64 {
	if n, ok := MatchNode(region, live); ok {
		return clamp(n.LocalPredictionKW / nodeDivisor)
	}
	return clamp(region.Forecasts.Day.Value / forecastDivisor)
}

// Synthesizer generates point clouds. It is not safe for concurrent use;
// build one per request.
type Synthesizer struct {
	Rand *rand.Rand
}

// NewSynthesizer returns a Synthesizer. A zero seed draws from entropy.
func NewSynthesizer(seed uint64) *Synthesizer {
	if seed == 0 {
		return &Synthesizer{Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Synthesizer{Rand: rand.New(rand.NewPCG(seed, seed))}
}

// u returns a uniform value in [lo, hi).
func (s *Synthesizer) u(lo, hi float64) float64 {
	return lo + s.Rand.Float64()*(hi-lo)
}

// Generate builds the point cloud for zoom. Region order is preserved.
func (s *Synthesizer) Generate(regions []grid.Region, live *snapshot.Snapshot, zoom int) []Point {
	tier := TierFor(zoom)

	n := 0
	for _, r := range regions {
		n += PointsPerRegion(tier, len(r.SubLocations))
	}
	out := make([]Point, 0, n)

	for _, r := range regions {
		base := BaseIntensity(r, live)
		if tier == Regional {
			out = s.regional(out, r.Center, base)
			continue
		}
		for _, sub := range r.SubLocations {
			out = s.subLocation(out, sub.LatLng, base, tier == UltraDetailed)
		}
	}
	return out
}

func (s *Synthesizer) regional(out []Point, c grid.LatLng, base float64) []Point {
	out = append(out, Point{c.Lat, c.Lng, clamp(base)})

	for i := 0; i < ringPoints; i++ {
		angle := float64(i) / ringPoints * 2 * math.Pi
		r := regionRadius * s.u(0.5, 1.0)
		out = append(out, Point{
			Lat:       c.Lat + math.Cos(angle)*r,
			Lng:       c.Lng + math.Sin(angle)*r,
			Intensity: clamp(base * s.u(0.3, 0.7)),
		})
	}

	spread := regionRadius * 1.5
	for i := 0; i < scatterPoints; i++ {
		out = append(out, Point{
			Lat:       c.Lat + (s.Rand.Float64()-0.5)*spread,
			Lng:       c.Lng + (s.Rand.Float64()-0.5)*spread,
			Intensity: clamp(base * s.u(0.2, 0.8)),
		})
	}
	return out
}

func (s *Synthesizer) subLocation(out []Point, c grid.LatLng, base float64, ultra bool) []Point {
	adjusted := clamp(base + s.u(-0.1, 0.1))
	out = append(out, Point{c.Lat, c.Lng, adjusted})

	for i := 0; i < microPoints; i++ {
		angle := float64(i) / microPoints * 2 * math.Pi
		r := subRadius * s.u(0.3, 1.0)
		variation := s.u(-0.15, 0.15)
		out = append(out, Point{
			Lat:       c.Lat + math.Cos(angle)*r,
			Lng:       c.Lng + math.Sin(angle)*r,
			Intensity: clamp(adjusted*s.u(0.6, 1.0) + variation),
		})
	}

	if !ultra {
		return out
	}
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			if x == 0 && y == 0 {
				continue
			}
			out = append(out, Point{
				Lat:       c.Lat + float64(x)*gridStep,
				Lng:       c.Lng + float64(y)*gridStep,
				Intensity: clamp(adjusted * s.u(0.4, 0.8)),
			})
		}
	}
	return out
}
