package ports

import (
	"context"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

// ReportRepository persists safety reports.
type ReportRepository interface {
	Insert(ctx context.Context, report *domain.Report) error
	Count(ctx context.Context) (int, error)
}
