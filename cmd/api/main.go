package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/saferoute/internal/adapters/http"
	natsadapter "github.com/samirrijal/saferoute/internal/adapters/nats"
	"github.com/samirrijal/saferoute/internal/adapters/tomtom"
	"github.com/samirrijal/saferoute/internal/adapters/valkey"
	"github.com/samirrijal/saferoute/internal/adapters/zonefile"
	"github.com/samirrijal/saferoute/internal/core/ports"
	"github.com/samirrijal/saferoute/internal/core/usecases"
	"github.com/samirrijal/saferoute/internal/pkg/config"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
	"github.com/samirrijal/saferoute/internal/pkg/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load("saferoute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Hazard zones: a missing or broken dataset degrades safe mode to
	// "verified" for every route rather than stopping the service.
	zones, err := zonefile.Load(cfg.Zones.Path)
	if err != nil {
		slog.Warn("hazard zones unavailable, continuing with none", "path", cfg.Zones.Path, "error", err)
		zones = zonefile.Empty()
	}
	metrics.HazardZonesLoaded.Set(float64(zones.Len()))
	slog.Info("hazard zones loaded", "count", zones.Len())

	provider := tomtom.New(tomtom.Options{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		CountrySet: cfg.Provider.CountrySet,
		Timeout:    time.Duration(cfg.Provider.Timeout) * time.Second,
	})

	// Cache
	var cache *valkey.Cache
	var suggestCache ports.CacheService
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			suggestCache = cache
		}
	}

	// NATS
	var publisher *natsadapter.Publisher
	var reportSink ports.ReportPublisher
	if cfg.NATS.Enabled {
		publisher, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, reports will only be logged", "error", err)
		} else {
			defer publisher.Close()
			reportSink = publisher
		}
	}

	// Use cases
	resolver := usecases.NewSafeRouteResolver(provider, zones,
		usecases.WithSampleStride(cfg.Routing.SampleStride),
		usecases.WithMaxAvoidAreas(cfg.Routing.MaxAvoidAreas),
	)

	deps := &http.Dependencies{
		Suggest:      usecases.NewSuggestService(provider, suggestCache, cfg.Provider.SuggestLimit),
		Routes:       usecases.NewRouteService(provider, resolver),
		Reports:      usecases.NewReportService(reportSink),
		Zones:        zones,
		Cache:        cache,
		Publisher:    publisher,
		ProviderKey:  cfg.Provider.APIKey,
		RouteTimeout: cfg.Server.RouteTimeout,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "SafeRoute",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
