package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/ports"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// DefaultSampleStride tests every 10th route point against the zones. A zone
// crossed only between two samples is missed; that is accepted.
const DefaultSampleStride = 10

// SafeRouteResolver decides whether a fast route needs to be recalculated
// around hazard zones, and which route to serve.
type SafeRouteResolver struct {
	provider ports.RoutingProvider
	zones    ports.ZoneStore
	stride   int
	maxAvoid int
}

// ResolverOption tunes a SafeRouteResolver.
type ResolverOption func(*SafeRouteResolver)

// WithSampleStride sets the decimation stride. Values below 1 mean every point.
func WithSampleStride(stride int) ResolverOption {
	return func(r *SafeRouteResolver) {
		if stride < 1 {
			stride = 1
		}
		r.stride = stride
	}
}

// WithMaxAvoidAreas lowers the avoidance cap. It never exceeds the provider limit.
func WithMaxAvoidAreas(n int) ResolverOption {
	return func(r *SafeRouteResolver) {
		if n < 1 || n > domain.MaxAvoidAreas {
			n = domain.MaxAvoidAreas
		}
		r.maxAvoid = n
	}
}

// NewSafeRouteResolver creates a resolver over a read-only zone set.
func NewSafeRouteResolver(provider ports.RoutingProvider, zones ports.ZoneStore, opts ...ResolverOption) *SafeRouteResolver {
	r := &SafeRouteResolver{
		provider: provider,
		zones:    zones,
		stride:   DefaultSampleStride,
		maxAvoid: domain.MaxAvoidAreas,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolution is the terminal state of one safe-route request.
type Resolution struct {
	Mode    string
	Route   *domain.RouteResponse
	Avoided []domain.AvoidRectangle
}

// Resolve runs the sample → match → cap → decide procedure on a fast route.
// The only error it returns is an unreadable fast route; avoidance failures
// fall back to the fast route under ModeAvoidanceFailed.
func (r *SafeRouteResolver) Resolve(ctx context.Context, start, end domain.GeoPoint, fast *domain.RouteResponse) (*Resolution, error) {
	points, err := fast.Points()
	if err != nil {
		return nil, fmt.Errorf("fast route: %w", err)
	}

	var zones []domain.HazardZone
	if r.zones != nil {
		zones = r.zones.All()
	}

	avoid := ConflictingZones(zones, SamplePoints(points, r.stride), r.maxAvoid)
	if len(avoid) == 0 {
		return &Resolution{Mode: domain.ModeSafeVerified, Route: fast}, nil
	}

	log := logging.FromContext(ctx)
	metrics.AvoidAreasRequested.Observe(float64(len(avoid)))

	safe, err := r.provider.AvoidanceRoute(ctx, start, end, avoid)
	if err == nil {
		err = safe.Validate()
	}
	if err != nil {
		log.Warn("avoidance route failed, serving fast route", "avoid_areas", len(avoid), "error", err)
		return &Resolution{Mode: domain.ModeAvoidanceFailed, Route: fast, Avoided: avoid}, nil
	}

	log.Debug("route recalculated around hazard zones", "avoid_areas", len(avoid))
	return &Resolution{Mode: domain.ModeSafe, Route: safe, Avoided: avoid}, nil
}

// SamplePoints keeps indices 0, stride, 2*stride, ... . A route shorter than
// the stride yields only its first point.
func SamplePoints(points []domain.RoutePoint, stride int) []domain.RoutePoint {
	if stride < 1 {
		stride = 1
	}
	sampled := make([]domain.RoutePoint, 0, (len(points)+stride-1)/stride)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	return sampled
}

// ConflictingZones returns one avoidance rectangle per zone, in zone order,
// that contains at least one sampled point. Scanning stops once limit
// rectangles are collected; later zones are dropped.
func ConflictingZones(zones []domain.HazardZone, sampled []domain.RoutePoint, limit int) []domain.AvoidRectangle {
	if limit < 1 || limit > domain.MaxAvoidAreas {
		limit = domain.MaxAvoidAreas
	}

	var avoid []domain.AvoidRectangle
	for _, z := range zones {
		for _, p := range sampled {
			if z.Contains(p.Latitude, p.Longitude) {
				avoid = append(avoid, z.AvoidRectangle())
				break
			}
		}
		if len(avoid) >= limit {
			break
		}
	}
	return avoid
}
