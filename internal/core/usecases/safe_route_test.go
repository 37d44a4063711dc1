package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/usecases"
)

var (
	origin      = domain.GeoPoint{Lat: 28.6, Lon: 77.2}
	destination = domain.GeoPoint{Lat: 28.7, Lon: 77.3}
	delhiZone   = domain.HazardZone{South: 28.60, West: 77.20, North: 28.65, East: 77.25}
)

func TestSamplePoints(t *testing.T) {
	points := straightLine(25, 0, 0, 1)

	sampled := usecases.SamplePoints(points, 10)
	if len(sampled) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(sampled))
	}
	for i, want := range []float64{0, 10, 20} {
		if sampled[i].Latitude != want {
			t.Errorf("sample %d: expected index %v, got %v", i, want, sampled[i].Latitude)
		}
	}
}

func TestSamplePoints_ShortRoute(t *testing.T) {
	sampled := usecases.SamplePoints(straightLine(9, 5, 5, 1), 10)
	if len(sampled) != 1 || sampled[0].Latitude != 5 {
		t.Fatalf("expected only the first point, got %+v", sampled)
	}
}

func TestSamplePoints_EdgeCases(t *testing.T) {
	if got := usecases.SamplePoints(nil, 10); len(got) != 0 {
		t.Errorf("expected no samples for empty route, got %d", len(got))
	}
	if got := usecases.SamplePoints(straightLine(4, 0, 0, 1), 0); len(got) != 4 {
		t.Errorf("expected stride 0 to keep every point, got %d", len(got))
	}
	if got := usecases.SamplePoints(straightLine(11, 0, 0, 1), 10); len(got) != 2 {
		t.Errorf("expected indices 0 and 10, got %d samples", len(got))
	}
}

func TestConflictingZones_Cap(t *testing.T) {
	zones := make([]domain.HazardZone, 15)
	for i := range zones {
		// Every zone contains the origin; north edge encodes the zone index.
		zones[i] = domain.HazardZone{South: -1, West: -1, North: float64(i + 1), East: 1}
	}
	sampled := []domain.RoutePoint{{Latitude: 0, Longitude: 0}}

	avoid := usecases.ConflictingZones(zones, sampled, domain.MaxAvoidAreas)
	if len(avoid) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(avoid))
	}
	for i, r := range avoid {
		if r.NorthEastCorner.Latitude != float64(i+1) {
			t.Errorf("rect %d: expected zone %d in load order, got north %v", i, i, r.NorthEastCorner.Latitude)
		}
	}
}

func TestConflictingZones_NeverExceedsProviderLimit(t *testing.T) {
	zones := make([]domain.HazardZone, 30)
	for i := range zones {
		zones[i] = domain.HazardZone{South: -1, West: -1, North: 1, East: 1}
	}
	sampled := []domain.RoutePoint{{Latitude: 0, Longitude: 0}}

	for _, limit := range []int{-1, 0, 10, 11, 100} {
		if got := usecases.ConflictingZones(zones, sampled, limit); len(got) > domain.MaxAvoidAreas {
			t.Errorf("limit %d: got %d rectangles", limit, len(got))
		}
	}
}

func TestConflictingZones_OneRectanglePerZone(t *testing.T) {
	sampled := []domain.RoutePoint{
		{Latitude: 28.61, Longitude: 77.21},
		{Latitude: 28.62, Longitude: 77.22},
		{Latitude: 28.63, Longitude: 77.23},
	}
	avoid := usecases.ConflictingZones([]domain.HazardZone{delhiZone}, sampled, 10)
	if len(avoid) != 1 {
		t.Fatalf("expected one rectangle for one zone, got %d", len(avoid))
	}
}

func TestConflictingZones_ClosedBoundary(t *testing.T) {
	corner := []domain.RoutePoint{{Latitude: 28.65, Longitude: 77.20}}
	if got := usecases.ConflictingZones([]domain.HazardZone{delhiZone}, corner, 10); len(got) != 1 {
		t.Errorf("expected a point on the edge to match, got %d", len(got))
	}

	outside := []domain.RoutePoint{{Latitude: 28.6501, Longitude: 77.22}}
	if got := usecases.ConflictingZones([]domain.HazardZone{delhiZone}, outside, 10); len(got) != 0 {
		t.Errorf("expected no match just outside the box, got %d", len(got))
	}
}

func TestResolve_NoConflict(t *testing.T) {
	provider := &mockProvider{}
	fast := routeThrough(1000, 60, straightLine(30, 10, 10, 0.01)...)

	resolver := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone})
	res, err := resolver.Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeSafeVerified {
		t.Errorf("expected %q, got %q", domain.ModeSafeVerified, res.Mode)
	}
	if res.Route != fast {
		t.Error("expected the fast route to be served")
	}
	if provider.avoidanceCalls != 0 {
		t.Errorf("expected no avoidance call, got %d", provider.avoidanceCalls)
	}
}

func TestResolve_EmptyZoneStore(t *testing.T) {
	provider := &mockProvider{}
	fast := routeThrough(1000, 60, domain.RoutePoint{Latitude: 28.62, Longitude: 77.22})

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeSafeVerified {
		t.Errorf("expected %q with no zones, got %q", domain.ModeSafeVerified, res.Mode)
	}
}

func TestResolve_MissBetweenSamples(t *testing.T) {
	points := straightLine(20, 10, 10, 0.01)
	points[5] = domain.RoutePoint{Latitude: 28.62, Longitude: 77.22} // only an unsampled point is inside
	fast := routeThrough(1000, 60, points...)
	provider := &mockProvider{}

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeSafeVerified {
		t.Errorf("expected the unsampled hit to be missed, got %q", res.Mode)
	}

	// A finer stride sees it.
	res, err = usecases.NewSafeRouteResolver(&mockProvider{}, staticZones{delhiZone}, usecases.WithSampleStride(1)).
		Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeAvoidanceFailed {
		t.Errorf("expected stride 1 to detect the zone, got %q", res.Mode)
	}
}

func TestResolve_AvoidanceSucceeds(t *testing.T) {
	fast := routeThrough(1000, 60,
		domain.RoutePoint{Latitude: 28.62, Longitude: 77.22},
		domain.RoutePoint{Latitude: 28.70, Longitude: 77.30},
	)
	safe := routeThrough(1500, 90,
		domain.RoutePoint{Latitude: 28.55, Longitude: 77.15},
		domain.RoutePoint{Latitude: 28.70, Longitude: 77.30},
	)

	var sent []domain.AvoidRectangle
	provider := &mockProvider{
		avoidanceFn: func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
			if start != origin || end != destination {
				t.Errorf("unexpected endpoints %v -> %v", start, end)
			}
			sent = avoid
			return safe, nil
		},
	}

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeSafe {
		t.Errorf("expected %q, got %q", domain.ModeSafe, res.Mode)
	}
	if res.Route != safe {
		t.Error("expected the recalculated route to be served")
	}

	want := domain.AvoidRectangle{
		SouthWestCorner: domain.Corner{Latitude: 28.60, Longitude: 77.20},
		NorthEastCorner: domain.Corner{Latitude: 28.65, Longitude: 77.25},
	}
	if len(sent) != 1 || sent[0] != want {
		t.Errorf("expected exactly %+v, got %+v", want, sent)
	}
}

func TestResolve_AvoidanceFails(t *testing.T) {
	fast := routeThrough(1000, 60, domain.RoutePoint{Latitude: 28.62, Longitude: 77.22})
	provider := &mockProvider{
		avoidanceFn: func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
			return nil, domain.ErrUpstream
		},
	}

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeAvoidanceFailed {
		t.Errorf("expected %q, got %q", domain.ModeAvoidanceFailed, res.Mode)
	}
	if res.Route != fast {
		t.Error("expected fallback to the fast route")
	}
	if len(res.Avoided) != 1 {
		t.Errorf("expected the attempted constraint set to be reported, got %d", len(res.Avoided))
	}
}

func TestResolve_AvoidanceReturnsEmptyRoute(t *testing.T) {
	fast := routeThrough(1000, 60, domain.RoutePoint{Latitude: 28.62, Longitude: 77.22})
	provider := &mockProvider{
		avoidanceFn: func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
			return &domain.RouteResponse{}, nil
		},
	}

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeAvoidanceFailed || res.Route != fast {
		t.Errorf("expected fallback for unusable avoidance route, got %q", res.Mode)
	}
}

func TestResolve_AvoidanceRouteWithoutSummary(t *testing.T) {
	fast := routeThrough(1000, 60, domain.RoutePoint{Latitude: 28.62, Longitude: 77.22})
	provider := &mockProvider{
		avoidanceFn: func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
			return &domain.RouteResponse{Routes: []domain.ProviderRoute{{
				Legs: []domain.RouteLeg{{Points: []domain.RoutePoint{{Latitude: 28.7, Longitude: 77.3}}}},
			}}}, nil
		},
	}

	res, err := usecases.NewSafeRouteResolver(provider, staticZones{delhiZone}).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != domain.ModeAvoidanceFailed || res.Route != fast {
		t.Errorf("expected fallback when the avoiding route has no summary, got %q", res.Mode)
	}
}

func TestResolve_MaxAvoidAreasOption(t *testing.T) {
	zones := staticZones{delhiZone, delhiZone, delhiZone}
	fast := routeThrough(1000, 60, domain.RoutePoint{Latitude: 28.62, Longitude: 77.22})

	var sent int
	provider := &mockProvider{
		avoidanceFn: func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
			sent = len(avoid)
			return fast, nil
		},
	}

	_, err := usecases.NewSafeRouteResolver(provider, zones, usecases.WithMaxAvoidAreas(2)).Resolve(context.Background(), origin, destination, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 2 {
		t.Errorf("expected 2 rectangles, got %d", sent)
	}
}

func TestResolve_MalformedFastRoute(t *testing.T) {
	_, err := usecases.NewSafeRouteResolver(&mockProvider{}, staticZones{delhiZone}).
		Resolve(context.Background(), origin, destination, &domain.RouteResponse{})
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
