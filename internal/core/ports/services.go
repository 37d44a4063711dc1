package ports

import (
	"context"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

// RoutingProvider is the external search and routing service.
type RoutingProvider interface {
	// Suggest returns address candidates for a free-text query.
	Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	// FastRoute requests the traffic-aware fastest route.
	FastRoute(ctx context.Context, start, end domain.GeoPoint) (*domain.RouteResponse, error)
	// AvoidanceRoute recalculates the route excluding the given rectangles.
	AvoidanceRoute(ctx context.Context, start, end domain.GeoPoint, avoid []domain.AvoidRectangle) (*domain.RouteResponse, error)
}

// ZoneStore exposes the read-only hazard zone set in load order.
type ZoneStore interface {
	All() []domain.HazardZone
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ReportPublisher hands submitted reports to a message broker.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *domain.Report) error
}

// ReportSubscriber consumes reports from a message broker.
type ReportSubscriber interface {
	SubscribeReports(ctx context.Context, handler func(ctx context.Context, report *domain.Report) error) error
}
