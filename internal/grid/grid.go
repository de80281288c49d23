// Package grid holds the fixed Mangalore regional grid table: regions,
// their named sub-locations, and the dashboard facts shown per region.
package grid

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnknownRegion is returned when a region key is not in the table.
var ErrUnknownRegion = eris.New("grid: unknown region")

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// SubLocation is a named point inside a region with a static intensity.
type SubLocation struct {
	Name          string  `json:"name" yaml:"name"`
	LatLng        LatLng  `json:"latlng" yaml:"latlng"`
	BaseIntensity float64 `json:"base_intensity" yaml:"base_intensity"`
}

// Quantity is a value with a display unit, e.g. 53.8 MWh.
type Quantity struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// Forecasts are the static day/week/month energy forecasts of a region.
type Forecasts struct {
	Day   Quantity `json:"day" yaml:"day"`
	Week  Quantity `json:"week" yaml:"week"`
	Month Quantity `json:"month" yaml:"month"`
}

// Trends are the static consumer trends of a region.
type Trends struct {
	Users          int     `json:"users" yaml:"users"`
	AvgConsumption float64 `json:"avg_consumption" yaml:"avg_consumption"`
}

// Region is one of the six fixed grid regions.
type Region struct {
	Key           string        `json:"key" yaml:"key"`
	Name          string        `json:"name" yaml:"name"`
	Center        LatLng        `json:"center" yaml:"center"`
	BaseIntensity float64       `json:"base_intensity" yaml:"base_intensity"`
	SubLocations  []SubLocation `json:"sub_locations" yaml:"sub_locations"`
	Forecasts     Forecasts     `json:"forecasts" yaml:"forecasts"`
	Trends        Trends        `json:"trends" yaml:"trends"`
	Efficiency    int           `json:"efficiency" yaml:"efficiency"`
}

// KeyTokens returns the first two underscore-delimited tokens of the key.
// A single-token key yields the token twice.
func (r Region) KeyTokens() (string, string) {
	parts := strings.Split(r.Key, "_")
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], parts[1]
}

// MapFrame is the initial map viewport handed to the renderer.
type MapFrame struct {
	Center      LatLng    `json:"center" yaml:"center"`
	Bounds      [2]LatLng `json:"bounds" yaml:"bounds"`
	Zoom        int       `json:"zoom" yaml:"zoom"`
	MinZoom     int       `json:"min_zoom" yaml:"min_zoom"`
	MaxZoom     int       `json:"max_zoom" yaml:"max_zoom"`
	TileURL     string    `json:"tile_url" yaml:"tile_url"`
	Attribution string    `json:"attribution" yaml:"attribution"`
}

// Frame returns the map viewport for the Mangalore grid.
func Frame() MapFrame {
	return MapFrame{
		Center:      LatLng{12.9141, 74.856},
		Bounds:      [2]LatLng{{12.75, 74.75}, {13.05, 75.0}},
		Zoom:        11,
		MinZoom:     10,
		MaxZoom:     16,
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	}
}

func sub(name string, lat, lng, intensity float64) SubLocation {
	return SubLocation{Name: name, LatLng: LatLng{lat, lng}, BaseIntensity: intensity}
}

func mwh(v float64) Quantity { return Quantity{Value: v, Unit: "MWh"} }
func gwh(v float64) Quantity { return Quantity{Value: v, Unit: "GWh"} }

var regions = []Region{
	{
		Key:           "north_mangaluru",
		Name:          "North Mangalore",
		Center:        LatLng{12.9659, 74.8295},
		BaseIntensity: 0.9,
		SubLocations: []SubLocation{
			sub("Surathkal Main", 12.9659, 74.8295, 0.9),
			sub("Surathkal Beach", 12.972, 74.835, 0.85),
			sub("NITK Area", 12.96, 74.825, 0.88),
			sub("Industrial Zone", 12.968, 74.832, 0.92),
			sub("Residential Area", 12.964, 74.828, 0.87),
		},
		Forecasts:  Forecasts{mwh(53.8), mwh(376.6), gwh(1.6)},
		Trends:     Trends{Users: 1850, AvgConsumption: 29.1},
		Efficiency: 94,
	},
	{
		Key:           "north_east_mangaluru",
		Name:          "North East Mangalore",
		Center:        LatLng{12.935, 74.8455},
		BaseIntensity: 0.75,
		SubLocations: []SubLocation{
			sub("Kavoor Main", 12.935, 74.8455, 0.75),
			sub("Kavoor Junction", 12.938, 74.848, 0.78),
			sub("Residential Kavoor", 12.932, 74.843, 0.72),
			sub("Commercial Area", 12.937, 74.847, 0.77),
			sub("Kavoor Extension", 12.934, 74.844, 0.74),
		},
		Forecasts:  Forecasts{mwh(41.3), mwh(289.1), gwh(1.2)},
		Trends:     Trends{Users: 1450, AvgConsumption: 28.5},
		Efficiency: 92,
	},
	{
		Key:           "east_mangaluru",
		Name:          "East Mangalore",
		Center:        LatLng{12.9178, 74.8737},
		BaseIntensity: 0.65,
		SubLocations: []SubLocation{
			sub("Derebail Main", 12.9178, 74.8737, 0.65),
			sub("Derebail East", 12.92, 74.876, 0.68),
			sub("Derebail West", 12.915, 74.871, 0.62),
			sub("Market Area", 12.919, 74.875, 0.67),
			sub("Residential Zone", 12.916, 74.872, 0.64),
		},
		Forecasts:  Forecasts{mwh(51.1), mwh(357.7), gwh(1.5)},
		Trends:     Trends{Users: 1675, AvgConsumption: 30.5},
		Efficiency: 91,
	},
	{
		Key:           "south_east_mangaluru",
		Name:          "South East Mangalore",
		Center:        LatLng{12.87, 74.88},
		BaseIntensity: 0.85,
		SubLocations: []SubLocation{
			sub("Kankanady Main", 12.87, 74.88, 0.85),
			sub("Kankanady Market", 12.872, 74.882, 0.88),
			sub("Kankanady Residential", 12.868, 74.878, 0.82),
			sub("Commercial Hub", 12.871, 74.881, 0.87),
			sub("Industrial Area", 12.869, 74.879, 0.84),
		},
		Forecasts:  Forecasts{mwh(65.7), mwh(460.0), gwh(1.9)},
		Trends:     Trends{Users: 2105, AvgConsumption: 31.2},
		Efficiency: 88,
	},
	{
		Key:           "south_mangaluru",
		Name:          "South Mangalore",
		Center:        LatLng{12.8223, 74.8485},
		BaseIntensity: 0.8,
		SubLocations: []SubLocation{
			sub("Ullal Main", 12.8223, 74.8485, 0.8),
			sub("Ullal Beach", 12.825, 74.851, 0.83),
			sub("Ullal Town", 12.82, 74.846, 0.77),
			sub("Coastal Area", 12.824, 74.85, 0.82),
			sub("Residential Ullal", 12.821, 74.847, 0.79),
		},
		Forecasts:  Forecasts{mwh(64.0), mwh(448.0), gwh(1.8)},
		Trends:     Trends{Users: 1950, AvgConsumption: 32.8},
		Efficiency: 89,
	},
	{
		Key:           "west_mangaluru",
		Name:          "West Mangalore",
		Center:        LatLng{12.8797, 74.8433},
		BaseIntensity: 0.95,
		SubLocations: []SubLocation{
			sub("Bejai Main", 12.8797, 74.8433, 0.95),
			sub("Attavar Junction", 12.882, 74.845, 0.98),
			sub("Bejai Residential", 12.877, 74.841, 0.92),
			sub("Commercial District", 12.881, 74.844, 0.97),
			sub("Bejai Extension", 12.878, 74.842, 0.94),
		},
		Forecasts:  Forecasts{mwh(65.3), mwh(457.1), gwh(2.0)},
		Trends:     Trends{Users: 2350, AvgConsumption: 27.8},
		Efficiency: 95,
	},
}

// Regions returns a copy of the region table in display order.
func Regions() []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		r.SubLocations = append([]SubLocation(nil), r.SubLocations...)
		out[i] = r
	}
	return out
}

// Lookup returns the region with the given key.
func Lookup(key string) (Region, error) {
	for _, r := range Regions() {
		if r.Key == key {
			return r, nil
		}
	}
	return Region{}, eris.Wrapf(ErrUnknownRegion, "key %q", key)
}

// DefaultRegion is the region the operator dashboard opens on.
const DefaultRegion = "north_mangaluru"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
