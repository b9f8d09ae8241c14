package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
)

// PgxReportRepository persists reconciliation reports as audit artifacts.
type PgxReportRepository struct {
	pool *pgxpool.Pool
}

var _ repositories.ReportRepository = (*PgxReportRepository)(nil)

// NewPgxReportRepository creates a new repository for reconciliation reports.
func NewPgxReportRepository(pool *pgxpool.Pool) *PgxReportRepository {
	return &PgxReportRepository{pool: pool}
}

// SaveReport stores the full report body as JSON alongside the columns the
// health probe queries. Reports are write-once.
func (r *PgxReportRepository) SaveReport(ctx context.Context, report domain.ReconciliationReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.ReportID, err)
	}
	query := `
		INSERT INTO reconciliation_reports (report_id, generated_at, period_start, period_end, discrepancy_count, orphan_count, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.pool.Exec(ctx, query,
		report.ReportID,
		report.GeneratedAt,
		report.PeriodStart,
		report.PeriodEnd,
		report.Summary.DiscrepancyCount,
		report.Summary.LocalOrphanCount+report.Summary.ExternalOrphanCount,
		body,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", report.ReportID, err)
	}
	return nil
}

// CountDiscrepanciesSince sums the discrepancy counts of reports generated at
// or after since.
func (r *PgxReportRepository) CountDiscrepanciesSince(ctx context.Context, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(discrepancy_count), 0)
		FROM reconciliation_reports
		WHERE generated_at >= $1;
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent discrepancies: %w", err)
	}
	return count, nil
}
