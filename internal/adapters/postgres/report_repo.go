package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository with pgx.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Insert stores a report. Redelivered reports with a known id are ignored.
func (r *ReportRepo) Insert(ctx context.Context, rep *domain.Report) error {
	payload, err := json.Marshal(rep.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO reports (id, payload, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, rep.ID, payload, rep.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}
	return nil
}

// Count returns the number of archived reports.
func (r *ReportRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM reports`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
