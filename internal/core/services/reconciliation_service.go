package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
)

// DefaultReconciliationWindow is used when the caller does not supply an
// explicit [start, end) window.
const DefaultReconciliationWindow = 24 * time.Hour

// ReconciliationService runs the full reconciliation analysis: fetch both
// ledgers, match, compare, classify orphans and persist the report artifact.
type ReconciliationService struct {
	BaseService
	ledgerRepo repositories.LedgerRepository
	processor  gateways.PaymentProcessor
	reportRepo repositories.ReportRepository
	alerts     gateways.AlertSink
	locker     gateways.RunLocker
	now        func() time.Time
}

var _ portssvc.ReconciliationSvc = (*ReconciliationService)(nil)

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	ledgerRepo repositories.LedgerRepository,
	processor gateways.PaymentProcessor,
	reportRepo repositories.ReportRepository,
	alerts gateways.AlertSink,
	locker gateways.RunLocker,
) *ReconciliationService {
	return &ReconciliationService{
		ledgerRepo: ledgerRepo,
		processor:  processor,
		reportRepo: reportRepo,
		alerts:     alerts,
		locker:     locker,
		now:        time.Now,
	}
}

// RunReconciliation performs one full run over [start, end). A second call
// while a run is active is rejected immediately with ErrConcurrentRun. The
// caller receives either a complete report or a fatal error; a report-write
// failure is logged and alerted but the analytical result is still returned.
func (s *ReconciliationService) RunReconciliation(ctx context.Context, start, end time.Time) (*domain.ReconciliationReport, error) {
	start, end = s.normalizeWindow(start, end)

	release, acquired, err := s.locker.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		s.LogInfo(ctx, "Reconciliation run rejected, another run is active")
		return nil, apperrors.ErrConcurrentRun
	}
	defer release()

	s.LogInfo(ctx, "Reconciliation run started",
		slog.Time("period_start", start), slog.Time("period_end", end))

	locals, externals, err := s.fetchBothLedgers(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := MatchTransactions(locals, externals)
	report := BuildReport(uuid.NewString(), s.now().UTC(), start, end, result)

	if err := s.reportRepo.SaveReport(ctx, report); err != nil {
		// The analysis is still valid; surface the persistence failure
		// separately rather than discarding the report.
		s.LogError(ctx, err, "Failed to persist reconciliation report",
			slog.String("report_id", report.ReportID))
		s.alerts.Raise(domain.SeverityHigh, "reconciliation report persistence failed", map[string]string{
			"report_id": report.ReportID,
			"error":     err.Error(),
		})
	}

	if !report.Clean() {
		s.alerts.Raise(report.WorstSeverity(), "reconciliation found inconsistencies", map[string]string{
			"report_id":        report.ReportID,
			"discrepancies":    fmt.Sprintf("%d", report.Summary.DiscrepancyCount),
			"local_orphans":    fmt.Sprintf("%d", report.Summary.LocalOrphanCount),
			"external_orphans": fmt.Sprintf("%d", report.Summary.ExternalOrphanCount),
		})
	}

	s.LogInfo(ctx, "Reconciliation run completed",
		slog.String("report_id", report.ReportID),
		slog.Int("matched", report.Summary.MatchedCount),
		slog.Int("discrepancies", report.Summary.DiscrepancyCount))

	return &report, nil
}

// DetectOrphans runs the fetch and match stages only and returns the
// classified orphans without persisting anything.
func (s *ReconciliationService) DetectOrphans(ctx context.Context, start, end time.Time) ([]domain.OrphanPayment, error) {
	start, end = s.normalizeWindow(start, end)

	locals, externals, err := s.fetchBothLedgers(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := MatchTransactions(locals, externals)
	local, external := DetectOrphans(result)
	return append(local, external...), nil
}

// fetchBothLedgers retrieves both record sets concurrently and blocks on
// both. Either failure is fatal: no partial analysis is built from an
// incomplete fetch.
func (s *ReconciliationService) fetchBothLedgers(ctx context.Context, start, end time.Time) ([]domain.Transaction, []domain.ExternalTransaction, error) {
	var (
		wg        sync.WaitGroup
		locals    []domain.Transaction
		externals []domain.ExternalTransaction
		localErr  error
		extErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		locals, localErr = s.ledgerRepo.ListTransactions(ctx, start, end)
	}()
	go func() {
		defer wg.Done()
		externals, extErr = s.processor.ListPaymentEvents(ctx, start, end)
	}()
	wg.Wait()

	if localErr != nil {
		return nil, nil, fmt.Errorf("%w: local ledger: %v", apperrors.ErrFetchFailed, localErr)
	}
	if extErr != nil {
		return nil, nil, fmt.Errorf("%w: external processor: %v", apperrors.ErrFetchFailed, extErr)
	}
	return locals, externals, nil
}

func (s *ReconciliationService) normalizeWindow(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = s.now().UTC()
	}
	if start.IsZero() {
		start = end.Add(-DefaultReconciliationWindow)
	}
	return start, end
}
