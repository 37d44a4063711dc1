package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String renders the point the way the routing provider expects it in a path: "lat,lon".
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// ParseGeoPoint parses a "lat,lon" pair as sent by the map page.
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GeoPoint{}, fmt.Errorf("%w: expected \"lat,lon\", got %q", ErrInput, s)
	}

	lat, err := parseDegrees(parts[0])
	if err != nil {
		return GeoPoint{}, err
	}
	lon, err := parseDegrees(parts[1])
	if err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid coordinate %q", ErrInput, s)
	}
	return v, nil
}
