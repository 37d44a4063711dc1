package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/core/ports"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// ReportService accepts free-form safety reports. Reports are never rejected;
// the broker is a best-effort, write-only sink.
type ReportService struct {
	publisher ports.ReportPublisher
	now       func() time.Time
}

// NewReportService creates a new ReportService. publisher may be nil, in
// which case reports are only logged.
func NewReportService(publisher ports.ReportPublisher) *ReportService {
	return &ReportService{publisher: publisher, now: time.Now}
}

// Submit records a report and returns it with its assigned id.
func (s *ReportService) Submit(ctx context.Context, payload map[string]any) *domain.Report {
	if payload == nil {
		payload = map[string]any{}
	}
	report := &domain.Report{
		ID:         uuid.NewString(),
		Payload:    payload,
		ReceivedAt: s.now().UTC(),
	}

	log := logging.FromContext(ctx)
	log.Info("safety report received", "report_id", report.ID, "payload", payload)

	if s.publisher == nil {
		metrics.ReportsReceived.WithLabelValues("log").Inc()
		return report
	}

	if err := s.publisher.PublishReport(ctx, report); err != nil {
		log.Error("publish report", "report_id", report.ID, "error", err)
		metrics.ReportsReceived.WithLabelValues("publish_failed").Inc()
		return report
	}
	metrics.ReportsReceived.WithLabelValues("published").Inc()
	return report
}

// ReportArchiver persists reports consumed from the broker.
type ReportArchiver struct {
	repo ports.ReportRepository
}

// NewReportArchiver creates a new ReportArchiver.
func NewReportArchiver(repo ports.ReportRepository) *ReportArchiver {
	return &ReportArchiver{repo: repo}
}

// Archive stores one report. Returning an error asks the broker to redeliver.
func (a *ReportArchiver) Archive(ctx context.Context, report *domain.Report) error {
	if report.Payload == nil {
		report.Payload = map[string]any{}
	}
	return a.repo.Insert(ctx, report)
}
