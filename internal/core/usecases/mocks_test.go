package usecases_test

import (
	"context"
	"errors"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

// --- Mock RoutingProvider ---

type mockProvider struct {
	suggestFn   func(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	fastFn      func(ctx context.Context, start, end domain.GeoPoint) (*domain.RouteResponse, error)
	avoidanceFn func(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error)

	suggestCalls   int
	avoidanceCalls int
}

func (m *mockProvider) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	m.suggestCalls++
	if m.suggestFn != nil {
		return m.suggestFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockProvider) FastRoute(ctx context.Context, start, end domain.GeoPoint) (*domain.RouteResponse, error) {
	if m.fastFn != nil {
		return m.fastFn(ctx, start, end)
	}
	return nil, errors.New("fast route not configured")
}

func (m *mockProvider) AvoidanceRoute(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error) {
	m.avoidanceCalls++
	if m.avoidanceFn != nil {
		return m.avoidanceFn(ctx, start, end, avoid)
	}
	return nil, errors.New("avoidance route not configured")
}

// --- Mock ZoneStore ---

type staticZones []domain.HazardZone

func (z staticZones) All() []domain.HazardZone { return z }

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("valkey nil message")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock ReportPublisher / ReportRepository ---

type mockPublisher struct {
	publishFn func(ctx context.Context, r *domain.Report) error
	published []*domain.Report
}

func (m *mockPublisher) PublishReport(ctx context.Context, r *domain.Report) error {
	m.published = append(m.published, r)
	if m.publishFn != nil {
		return m.publishFn(ctx, r)
	}
	return nil
}

type mockReportRepo struct {
	inserted []*domain.Report
	err      error
}

func (m *mockReportRepo) Insert(ctx context.Context, r *domain.Report) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, r)
	return nil
}

func (m *mockReportRepo) Count(ctx context.Context) (int, error) {
	return len(m.inserted), nil
}

// --- Fixtures ---

func float(v float64) *float64 { return &v }

// routeThrough builds a provider response whose single leg visits points in order.
func routeThrough(length, seconds float64, points ...domain.RoutePoint) *domain.RouteResponse {
	return &domain.RouteResponse{Routes: []domain.ProviderRoute{{
		Summary: &domain.RouteSummary{LengthInMeters: float(length), TravelTimeInSeconds: float(seconds)},
		Legs:    []domain.RouteLeg{{Points: points}},
	}}}
}

// straightLine returns n points stepping north-east from (lat, lon).
func straightLine(n int, lat, lon, step float64) []domain.RoutePoint {
	pts := make([]domain.RoutePoint, n)
	for i := range pts {
		pts[i] = domain.RoutePoint{Latitude: lat + float64(i)*step, Longitude: lon + float64(i)*step}
	}
	return pts
}
