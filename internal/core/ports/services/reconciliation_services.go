package services

import (
	"context"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// ReconciliationSvc is the operator-facing analysis surface. Callers receive
// either a complete report or an explicit fatal error, never a silently
// truncated report.
type ReconciliationSvc interface {
	RunReconciliation(ctx context.Context, start, end time.Time) (*domain.ReconciliationReport, error)
	DetectOrphans(ctx context.Context, start, end time.Time) ([]domain.OrphanPayment, error)
}

// SyncItemError records one isolated per-record sync failure.
type SyncItemError struct {
	TransactionID string `json:"transactionID"`
	Err           string `json:"error"`
}

// SyncResult summarises one sync batch. Per-record failures are collected,
// never thrown; a batch is never all-or-nothing.
type SyncResult struct {
	Updated int             `json:"updated"`
	Errors  []SyncItemError `json:"errors"`
}

// SyncSvc resolves still-pending local records against the external source of
// truth.
type SyncSvc interface {
	SyncPendingPayments(ctx context.Context) (*SyncResult, error)
}

// HealthSvc reports the engine's operational health.
type HealthSvc interface {
	GetHealth(ctx context.Context) domain.HealthStatus
}

// SchedulerSvc controls the periodic reconciliation trigger.
type SchedulerSvc interface {
	ScheduleEvery(intervalHours int) error
	StopSchedule()
	Running() bool
}

// ServiceContainer holds instances of all the application services and is the
// entry point for the handlers.
type ServiceContainer struct {
	Reconciliation ReconciliationSvc
	Sync           SyncSvc
	Health         HealthSvc
	Scheduler      SchedulerSvc
}
