package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/ports"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// RouteService answers /route: a fast route, optionally passed through the
// safe-route resolver, formatted for the map.
type RouteService struct {
	provider ports.RoutingProvider
	resolver *SafeRouteResolver
}

// NewRouteService creates a new RouteService.
func NewRouteService(provider ports.RoutingProvider, resolver *SafeRouteResolver) *RouteService {
	return &RouteService{provider: provider, resolver: resolver}
}

// Route computes the route between start and end. mode "safe" enables hazard
// avoidance; anything else is treated as "fast".
func (s *RouteService) Route(ctx context.Context, start, end domain.GeoPoint, mode string) (*domain.RouteResult, error) {
	fast, err := s.provider.FastRoute(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fast route: %w", err)
	}

	label := domain.ModeFast
	route := fast
	if mode == domain.ModeSafe {
		res, err := s.resolver.Resolve(ctx, start, end, fast)
		if err != nil {
			return nil, err
		}
		label, route = res.Mode, res.Route
	}

	result, err := FormatRoute(route, label)
	if err != nil {
		return nil, fmt.Errorf("format %s route: %w", label, err)
	}

	metrics.RouteOutcomes.WithLabelValues(label).Inc()
	return &result, nil
}
