package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
)

// SyncConfig tunes the sync engine. Zero values fall back to the defaults.
type SyncConfig struct {
	RetentionWindow time.Duration // how far back pending records are considered
	PendingTimeout  time.Duration // age after which an untraceable pending record is failed
	WorkerCount     int           // bounded concurrency for per-record lookups
	MaxRetries      int           // retries on processor rate limiting
	RetryBaseDelay  time.Duration // first backoff delay, doubled per attempt
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.RetentionWindow <= 0 {
		c.RetentionWindow = 7 * 24 * time.Hour
	}
	if c.PendingTimeout <= 0 {
		c.PendingTimeout = 24 * time.Hour
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	return c
}

// SyncService resolves still-pending local records against the external
// source of truth. Lookups go only through the stored external reference;
// the engine never mutates local state based on a heuristic guess.
type SyncService struct {
	BaseService
	ledgerRepo repositories.LedgerRepository
	processor  gateways.PaymentProcessor
	cfg        SyncConfig
	now        func() time.Time
}

var _ portssvc.SyncSvc = (*SyncService)(nil)

// NewSyncService creates a new SyncService.
func NewSyncService(ledgerRepo repositories.LedgerRepository, processor gateways.PaymentProcessor, cfg SyncConfig) *SyncService {
	return &SyncService{
		ledgerRepo: ledgerRepo,
		processor:  processor,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
}

// SyncPendingPayments walks every local pending record younger than the
// retention window with bounded concurrency. Per-record failures are isolated
// and collected; one failure never aborts the batch.
func (s *SyncService) SyncPendingPayments(ctx context.Context) (*portssvc.SyncResult, error) {
	now := s.now().UTC()
	pending, err := s.ledgerRepo.ListPendingSince(ctx, now.Add(-s.cfg.RetentionWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: listing pending transactions: %v", apperrors.ErrFetchFailed, err)
	}

	s.LogInfo(ctx, "Payment sync started", slog.Int("pending_count", len(pending)))

	var (
		mu     sync.Mutex
		result portssvc.SyncResult
	)
	jobs := make(chan domain.Transaction)
	var wg sync.WaitGroup

	for i := 0; i < s.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tx := range jobs {
				updated, err := s.syncOne(ctx, tx, now)
				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, portssvc.SyncItemError{
						TransactionID: tx.TransactionID,
						Err:           err.Error(),
					})
				} else if updated {
					result.Updated++
				}
				mu.Unlock()
			}
		}()
	}

	for _, tx := range pending {
		jobs <- tx
	}
	close(jobs)
	wg.Wait()

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].TransactionID < result.Errors[j].TransactionID
	})

	s.LogInfo(ctx, "Payment sync completed",
		slog.Int("updated", result.Updated),
		slog.Int("errors", len(result.Errors)))
	return &result, nil
}

// syncOne resolves a single pending record. Returns true when the local
// status was changed.
func (s *SyncService) syncOne(ctx context.Context, tx domain.Transaction, now time.Time) (bool, error) {
	if tx.ExternalRef == nil || *tx.ExternalRef == "" {
		if tx.Age(now) > s.cfg.PendingTimeout {
			if err := s.failTimedOut(ctx, tx, now); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, nil
	}

	ext, err := s.lookupWithRetry(ctx, *tx.ExternalRef)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		// A pending payment with no external trace past the timeout is
		// presumed never charged.
		if tx.Age(now) > s.cfg.PendingTimeout {
			if err := s.failTimedOut(ctx, tx, now); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}

	mapped, known := ext.MappedStatus()
	if !known || !mapped.IsTerminal() || mapped == tx.Status {
		return false, nil
	}

	if err := s.ledgerRepo.UpdateStatus(ctx, tx.TransactionID, mapped, now); err != nil {
		return false, fmt.Errorf("updating status: %w", err)
	}
	if err := s.ledgerRepo.AppendAudit(ctx, domain.AuditEntry{
		AuditID:       uuid.NewString(),
		TransactionID: tx.TransactionID,
		Action:        domain.AuditActionExternalSync,
		OldStatus:     tx.Status,
		NewStatus:     mapped,
		Source:        *tx.ExternalRef,
		CreatedAt:     now,
	}); err != nil {
		return false, fmt.Errorf("appending audit entry: %w", err)
	}
	s.LogInfo(ctx, "Transaction status synced from processor",
		slog.String("transaction_id", tx.TransactionID),
		slog.String("old_status", string(tx.Status)),
		slog.String("new_status", string(mapped)))
	return true, nil
}

func (s *SyncService) failTimedOut(ctx context.Context, tx domain.Transaction, now time.Time) error {
	if err := s.ledgerRepo.UpdateStatus(ctx, tx.TransactionID, domain.StatusFailed, now); err != nil {
		return fmt.Errorf("updating timed-out status: %w", err)
	}
	if err := s.ledgerRepo.AppendAudit(ctx, domain.AuditEntry{
		AuditID:       uuid.NewString(),
		TransactionID: tx.TransactionID,
		Action:        domain.AuditActionTimeoutSync,
		OldStatus:     tx.Status,
		NewStatus:     domain.StatusFailed,
		Source:        "no external trace within timeout",
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("appending timeout audit entry: %w", err)
	}
	s.LogInfo(ctx, "Pending transaction timed out",
		slog.String("transaction_id", tx.TransactionID))
	return nil
}

// lookupWithRetry fetches one payment event, backing off exponentially on
// rate-limit signals up to the configured retry budget. Exhausting retries
// surfaces the rate-limit error, which the caller records as an item failure.
func (s *SyncService) lookupWithRetry(ctx context.Context, reference string) (*domain.ExternalTransaction, error) {
	delay := s.cfg.RetryBaseDelay
	var err error
	var ext *domain.ExternalTransaction
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		ext, err = s.processor.GetPaymentEvent(ctx, reference)
		if !errors.Is(err, apperrors.ErrRateLimited) {
			return ext, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, err
}
