package heatmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		tier       Tier
		radius     int
		blur       int
		minOpacity float64
		stops      int
	}{
		{Regional, 45, 30, 0.3, 6},
		{Detailed, 30, 18, 0.2, 6},
		{UltraDetailed, 20, 10, 0.1, 11},
	}
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			o := Options(tt.tier)
			assert.Equal(t, tt.radius, o.Radius)
			assert.Equal(t, tt.blur, o.Blur)
			assert.Equal(t, 18, o.MaxZoom)
			assert.InDelta(t, tt.minOpacity, o.MinOpacity, 1e-12)
			assert.Len(t, o.Gradient, tt.stops)
			assert.InDelta(t, 0.0, o.Gradient[0].At, 1e-12)
			assert.InDelta(t, 1.0, o.Gradient[len(o.Gradient)-1].At, 1e-12)
		})
	}
}

func TestLayerOptions_JSON(t *testing.T) {
	data, err := json.Marshal(Options(Detailed))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.EqualValues(t, 30, m["radius"])
	assert.EqualValues(t, 18, m["maxZoom"])
	grad := m["gradient"].(map[string]any)
	assert.Equal(t, "rgba(0, 0, 255, 0.7)", grad["0.2"])
	assert.Equal(t, "rgba(255, 0, 0, 1.0)", grad["1"])

	var back LayerOptions
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Options(Detailed), back)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "regional", Regional.String())
	assert.Equal(t, "detailed", Detailed.String())
	assert.Equal(t, "ultra_detailed", UltraDetailed.String())
	assert.Equal(t, "unknown", Tier(9).String())
}

func TestTier_UnmarshalText(t *testing.T) {
	var tier Tier
	require.NoError(t, tier.UnmarshalText([]byte("ultra_detailed")))
	assert.Equal(t, UltraDetailed, tier)
	assert.Error(t, tier.UnmarshalText([]byte("macro")))
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf(nil)
	assert.False(t, ok)

	b, ok := BoundsOf([]Point{{12.8, 74.9, 0.5}, {12.9, 74.8, 0.5}, {12.85, 74.85, 0.5}})
	require.True(t, ok)
	assert.InDelta(t, 12.8, b.SW.Lat, 1e-9)
	assert.InDelta(t, 74.8, b.SW.Lng, 1e-9)
	assert.InDelta(t, 12.9, b.NE.Lat, 1e-9)
	assert.InDelta(t, 74.9, b.NE.Lng, 1e-9)
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection([]Point{{12.9, 74.8, 0.4}})
	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]float64 `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, "Point", doc.Features[0].Geometry.Type)
	// GeoJSON is lng, lat.
	assert.Equal(t, []float64{74.8, 12.9}, doc.Features[0].Geometry.Coordinates)
	assert.InDelta(t, 0.4, doc.Features[0].Properties["intensity"], 1e-12)
}

func TestFeatureCollection_Empty(t *testing.T) {
	data, err := json.Marshal(FeatureCollection(nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"features":[]`)
}

func TestBuild(t *testing.T) {
	live := liveWithNodes(snapshot.FederatedNode{NodeName: "West Mangalore Node", LocalPredictionKW: 1800})
	l := newTestSynth(11).Build(grid.Regions(), live, 12)

	assert.Equal(t, 12, l.Zoom)
	assert.Equal(t, Detailed, l.Tier)
	assert.Equal(t, Options(Detailed), l.Options)
	assert.Len(t, l.Points, 270)
	require.NotNil(t, l.Bounds)
	require.Len(t, l.Regions, 6)

	for _, r := range l.Regions {
		if r.Key == "west_mangaluru" {
			assert.Equal(t, "West Mangalore Node", r.Node)
			assert.InDelta(t, 0.9, r.Intensity, 1e-12)
		}
		if r.Key == "north_mangaluru" {
			assert.Empty(t, r.Node)
		}
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tier":"detailed"`)
}

func TestBuild_NoRegions(t *testing.T) {
	l := newTestSynth(12).Build(nil, nil, 11)
	assert.Empty(t, l.Points)
	assert.Nil(t, l.Bounds)
}
