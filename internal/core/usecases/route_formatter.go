package usecases

import (
	"github.com/samirrijal/saferoute/internal/core/domain"
)

// FormatRoute normalizes a provider route into a RouteResult labelled with mode.
// Geometry is emitted as [longitude, latitude], the GeoJSON order, while the
// provider and the zone model use latitude first.
func FormatRoute(resp *domain.RouteResponse, mode string) (domain.RouteResult, error) {
	points, err := resp.Points()
	if err != nil {
		return domain.RouteResult{}, err
	}

	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Longitude, p.Latitude}
	}

	summary, err := resp.Totals()
	if err != nil {
		return domain.RouteResult{}, err
	}
	return domain.RouteResult{
		Mode:           mode,
		DistanceMeters: copyFloat(summary.LengthInMeters),
		TimeSeconds:    copyFloat(summary.TravelTimeInSeconds),
		Coordinates:    coords,
	}, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
