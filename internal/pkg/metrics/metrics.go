package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Outbound calls to the mapping provider by operation and outcome",
	}, []string{"operation", "outcome"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound mapping provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	// Routing metrics
	RouteOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "routing",
		Name:      "outcomes_total",
		Help:      "Served routes by terminal mode label",
	}, []string{"mode"})

	AvoidAreasRequested = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "routing",
		Name:      "avoid_areas_per_request",
		Help:      "Number of avoidance rectangles sent per safe-route recalculation",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})

	HazardZonesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "saferoute",
		Subsystem: "zones",
		Name:      "loaded",
		Help:      "Hazard zones held in memory",
	})

	ReportsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "reports",
		Name:      "received_total",
		Help:      "Safety reports received, by sink outcome",
	}, []string{"sink"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// ObserveProvider records one outbound provider call.
func ObserveProvider(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(operation, outcome).Inc()
	ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
