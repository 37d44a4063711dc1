package domain

import (
	"encoding/json"
	"fmt"
)

// Route mode labels served in the Feature's "mode" property.
const (
	ModeFast            = "fast"
	ModeSafeVerified    = "fast (safe verified)"
	ModeSafe            = "safe"
	ModeAvoidanceFailed = "fast (avoidance failed)"
)

// RoutePoint is one vertex of a provider route.
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UnmarshalJSON rejects points missing either coordinate; a silent zero
// would be tested against the zones as (0, 0).
func (p *RoutePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return fmt.Errorf("%w: route point missing latitude or longitude", ErrFormat)
	}
	p.Latitude, p.Longitude = *raw.Latitude, *raw.Longitude
	return nil
}

// RouteSummary carries the provider's totals. Either field may be absent.
type RouteSummary struct {
	LengthInMeters      *float64 `json:"lengthInMeters,omitempty"`
	TravelTimeInSeconds *float64 `json:"travelTimeInSeconds,omitempty"`
}

// RouteLeg is a provider leg between two waypoints.
type RouteLeg struct {
	Summary RouteSummary `json:"summary"`
	Points  []RoutePoint `json:"points"`
}

// ProviderRoute is a single route alternative. Summary is nil when the
// provider omitted the block.
type ProviderRoute struct {
	Summary *RouteSummary `json:"summary"`
	Legs    []RouteLeg    `json:"legs"`
}

// RouteResponse is the subset of the calculateRoute response we consume.
type RouteResponse struct {
	Routes []ProviderRoute `json:"routes"`
}

// Points returns the first route's first leg geometry.
func (r *RouteResponse) Points() ([]RoutePoint, error) {
	if r == nil || len(r.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes", ErrFormat)
	}
	if len(r.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: route has no legs", ErrFormat)
	}
	points := r.Routes[0].Legs[0].Points
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: route has no points", ErrFormat)
	}
	return points, nil
}

// Totals returns the first route's summary block. The block must be present;
// its individual fields may still be absent.
func (r *RouteResponse) Totals() (*RouteSummary, error) {
	if r == nil || len(r.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes", ErrFormat)
	}
	if r.Routes[0].Summary == nil {
		return nil, fmt.Errorf("%w: route has no summary", ErrFormat)
	}
	return r.Routes[0].Summary, nil
}

// Validate reports whether the response carries everything a served route
// needs: geometry and a summary block.
func (r *RouteResponse) Validate() error {
	if _, err := r.Points(); err != nil {
		return err
	}
	_, err := r.Totals()
	return err
}

// RouteResult is the normalized route served to clients.
type RouteResult struct {
	Mode           string
	DistanceMeters *float64
	TimeSeconds    *float64
	// Coordinates are [longitude, latitude] pairs.
	Coordinates [][2]float64
}

// Feature is a GeoJSON Feature with a LineString geometry.
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   LineString        `json:"geometry"`
}

// FeatureProperties are the route properties exposed to the map page.
type FeatureProperties struct {
	Mode           string   `json:"mode"`
	DistanceMeters *float64 `json:"distance_meters"`
	TimeSeconds    *float64 `json:"time_seconds"`
}

// LineString is a GeoJSON LineString geometry.
type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Feature converts the result into its GeoJSON representation.
func (r RouteResult) Feature() Feature {
	coords := r.Coordinates
	if coords == nil {
		coords = [][2]float64{}
	}
	return Feature{
		Type: "Feature",
		Properties: FeatureProperties{
			Mode:           r.Mode,
			DistanceMeters: r.DistanceMeters,
			TimeSeconds:    r.TimeSeconds,
		},
		Geometry: LineString{Type: "LineString", Coordinates: coords},
	}
}
