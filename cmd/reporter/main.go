package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	natsadapter "github.com/samirrijal/saferoute/internal/adapters/nats"
	"github.com/samirrijal/saferoute/internal/adapters/postgres"
	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/usecases"
	"github.com/samirrijal/saferoute/internal/pkg/config"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// reporter drains submitted safety reports from JetStream into Postgres.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadWorker("saferoute-reporter")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	archiver := usecases.NewReportArchiver(postgres.NewReportRepo(db))

	err = sub.SubscribeReports(ctx, func(ctx context.Context, r *domain.Report) error {
		if err := archiver.Archive(ctx, r); err != nil {
			return err
		}
		metrics.ReportsReceived.WithLabelValues("archived").Inc()
		slog.Debug("report archived", "report_id", r.ID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("reporter started", "stream", natsadapter.ReportStream, "subject", natsadapter.ReportSubject)
	<-ctx.Done()
	slog.Info("reporter stopping")
}
