package http

import (
	natsadapter "github.com/samirrijal/saferoute/internal/adapters/nats"
	"github.com/samirrijal/saferoute/internal/adapters/valkey"
	"github.com/samirrijal/saferoute/internal/adapters/zonefile"
	"github.com/samirrijal/saferoute/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Suggest   *usecases.SuggestService
	Routes    *usecases.RouteService
	Reports   *usecases.ReportService
	Zones     *zonefile.Store
	Cache     *valkey.Cache
	Publisher *natsadapter.Publisher

	// ProviderKey is injected into the map page for tile requests.
	ProviderKey string
	// RouteTimeout bounds /route in seconds; zero means 25.
	RouteTimeout int
}
