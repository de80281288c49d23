package heatmap

import (
	"github.com/golang/geo/s2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

// Bounds is the lat/lng rectangle covering a point cloud.
type Bounds struct {
	SW grid.LatLng `json:"sw"`
	NE grid.LatLng `json:"ne"`
}

// BoundsOf returns the rectangle covering points. ok is false for an
// empty cloud.
func BoundsOf(points []Point) (b Bounds, ok bool) {
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}
	if rect.IsEmpty() {
		return Bounds{}, false
	}
	lo, hi := rect.Lo(), rect.Hi()
	return Bounds{
		SW: grid.LatLng{Lat: lo.Lat.Degrees(), Lng: lo.Lng.Degrees()},
		NE: grid.LatLng{Lat: hi.Lat.Degrees(), Lng: hi.Lng.Degrees()},
	}, true
}

// FeatureCollection renders points as GeoJSON point features carrying an
// "intensity" property.
func FeatureCollection(points []Point) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(points))}
	for _, p := range points {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{p.Lng, p.Lat}),
			Properties: map[string]interface{}{"intensity": p.Intensity},
		})
	}
	return fc
}

// RegionHeat explains where a region's base intensity came from.
type RegionHeat struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Intensity float64 `json:"intensity"`
	// Node is the matched federated node name; empty means the day
	// forecast was used.
	Node string `json:"node,omitempty"`
}

// Layer is a fully described heat layer ready for the renderer.
type Layer struct {
	Zoom    int          `json:"zoom"`
	Tier    Tier         `json:"tier"`
	Options LayerOptions `json:"options"`
	Points  []Point      `json:"points"`
	Bounds  *Bounds      `json:"bounds,omitempty"`
	Regions []RegionHeat `json:"regions"`
}

// Build generates a Layer for zoom.
func (s *Synthesizer) Build(regions []grid.Region, live *snapshot.Snapshot, zoom int) *Layer {
	tier := TierFor(zoom)
	l := &Layer{
		Zoom:    zoom,
		Tier:    tier,
		Options: Options(tier),
		Points:  s.Generate(regions, live, zoom),
		Regions: make([]RegionHeat, 0, len(regions)),
	}
	if b, ok := BoundsOf(l.Points); ok {
		l.Bounds = &b
	}
	for _, r := range regions {
		h := RegionHeat{Key: r.Key, Name: r.Name, Intensity: BaseIntensity(r, live)}
		if n, ok := MatchNode(r, live); ok {
			h.Node = n.NodeName
		}
		l.Regions = append(l.Regions, h)
	}
	return l
}
