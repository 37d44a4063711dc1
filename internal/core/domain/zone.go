package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxAvoidAreas is the provider's limit on avoidance rectangles per routing call.
const MaxAvoidAreas = 10

// HazardZone is an axis-aligned rectangle flagged as unsafe.
// South < North and West < East are expected but not enforced.
type HazardZone struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether (lat, lon) lies inside the closed bounding box.
func (z HazardZone) Contains(lat, lon float64) bool {
	return z.South <= lat && lat <= z.North && z.West <= lon && lon <= z.East
}

// Valid reports whether the edges are ordered.
func (z HazardZone) Valid() bool {
	return z.South < z.North && z.West < z.East
}

// AvoidRectangle converts the zone into a provider avoidance constraint.
func (z HazardZone) AvoidRectangle() AvoidRectangle {
	return AvoidRectangle{
		SouthWestCorner: Corner{Latitude: z.South, Longitude: z.West},
		NorthEastCorner: Corner{Latitude: z.North, Longitude: z.East},
	}
}

// UnmarshalJSON accepts edges as JSON numbers or numeric strings; hand-edited
// datasets contain both.
func (z *HazardZone) UnmarshalJSON(data []byte) error {
	var raw struct {
		South json.RawMessage `json:"south"`
		West  json.RawMessage `json:"west"`
		North json.RawMessage `json:"north"`
		East  json.RawMessage `json:"east"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	edges := []struct {
		name string
		src  json.RawMessage
		dst  *float64
	}{
		{"south", raw.South, &z.South},
		{"west", raw.West, &z.West},
		{"north", raw.North, &z.North},
		{"east", raw.East, &z.East},
	}
	for _, e := range edges {
		v, err := decodeEdge(e.src)
		if err != nil {
			return fmt.Errorf("zone %s: %w", e.name, err)
		}
		*e.dst = v
	}
	return nil
}

func decodeEdge(src json.RawMessage) (float64, error) {
	if len(src) == 0 || string(src) == "null" {
		return 0, fmt.Errorf("missing")
	}
	var f float64
	if err := json.Unmarshal(src, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", src)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}

// Corner is a provider-style coordinate.
type Corner struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AvoidRectangle is a region the provider must route around.
type AvoidRectangle struct {
	SouthWestCorner Corner `json:"southWestCorner"`
	NorthEastCorner Corner `json:"northEastCorner"`
}
