package repositories

import (
	"context"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// LedgerRepository defines the persistence operations the reconciliation
// engine needs against the local transaction ledger. Reads are windowed
// [start, end); implementations must paginate to completion internally or
// return an explicit error, never a silently truncated list.
type LedgerRepository interface {
	ListTransactions(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
	ListPendingSince(ctx context.Context, since time.Time) ([]domain.Transaction, error)
	CountStalePending(ctx context.Context, olderThan time.Time) (int, error)
	UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedAt time.Time) error
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// ReportRepository persists reconciliation reports as audit artifacts and
// serves the trailing-window discrepancy count used by the health probe.
type ReportRepository interface {
	SaveReport(ctx context.Context, report domain.ReconciliationReport) error
	CountDiscrepanciesSince(ctx context.Context, since time.Time) (int, error)
}
