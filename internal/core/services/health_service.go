package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
)

// HealthConfig tunes the health probe thresholds. Zero values fall back to
// the defaults.
type HealthConfig struct {
	StalePendingAge    time.Duration // pending older than this counts as stale
	StalePendingWarnAt int           // stale pending count above this is a warning
	DiscrepancyWarnAt  int           // trailing-24h discrepancies above this is a warning
	DiscrepancyCritAt  int           // trailing-24h discrepancies above this is critical
}

func (c HealthConfig) withDefaults() HealthConfig {
	if c.StalePendingAge <= 0 {
		c.StalePendingAge = 24 * time.Hour
	}
	if c.StalePendingWarnAt <= 0 {
		c.StalePendingWarnAt = 10
	}
	if c.DiscrepancyWarnAt <= 0 {
		c.DiscrepancyWarnAt = 5
	}
	if c.DiscrepancyCritAt <= 0 {
		c.DiscrepancyCritAt = 20
	}
	return c
}

// HealthService derives the engine's health from external reachability, the
// stale pending backlog and the trailing-24h discrepancy volume.
type HealthService struct {
	BaseService
	ledgerRepo repositories.LedgerRepository
	reportRepo repositories.ReportRepository
	processor  gateways.PaymentProcessor
	cfg        HealthConfig
	now        func() time.Time
}

var _ portssvc.HealthSvc = (*HealthService)(nil)

// NewHealthService creates a new HealthService.
func NewHealthService(
	ledgerRepo repositories.LedgerRepository,
	reportRepo repositories.ReportRepository,
	processor gateways.PaymentProcessor,
	cfg HealthConfig,
) *HealthService {
	return &HealthService{
		ledgerRepo: ledgerRepo,
		reportRepo: reportRepo,
		processor:  processor,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
}

// GetHealth probes all three signals; the worst one wins. An unreachable
// processor is always critical because no reconciliation can run without it.
func (s *HealthService) GetHealth(ctx context.Context) domain.HealthStatus {
	now := s.now().UTC()
	status := domain.HealthStatus{
		Status:            domain.HealthHealthy,
		ExternalReachable: true,
		CheckedAt:         now,
	}

	if err := s.processor.Ping(ctx); err != nil {
		s.LogError(ctx, err, "External processor unreachable")
		status.ExternalReachable = false
		status.Status = domain.HealthCritical
	}

	stale, err := s.ledgerRepo.CountStalePending(ctx, now.Add(-s.cfg.StalePendingAge))
	if err != nil {
		s.LogError(ctx, err, "Failed to count stale pending transactions")
	} else {
		status.StalePendingCount = stale
		if stale > s.cfg.StalePendingWarnAt {
			status.Status = worseOf(status.Status, domain.HealthWarning)
		}
	}

	discrepancies, err := s.reportRepo.CountDiscrepanciesSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		s.LogError(ctx, err, "Failed to count recent discrepancies")
	} else {
		status.RecentDiscrepancyCount = discrepancies
		switch {
		case discrepancies > s.cfg.DiscrepancyCritAt:
			status.Status = domain.HealthCritical
		case discrepancies > s.cfg.DiscrepancyWarnAt:
			status.Status = worseOf(status.Status, domain.HealthWarning)
		}
	}

	s.LogDebug(ctx, "Health probe completed",
		slog.String("status", string(status.Status)),
		slog.Int("stale_pending", status.StalePendingCount),
		slog.Int("recent_discrepancies", status.RecentDiscrepancyCount))
	return status
}

var healthRank = map[domain.HealthState]int{
	domain.HealthHealthy:  0,
	domain.HealthWarning:  1,
	domain.HealthCritical: 2,
}

func worseOf(a, b domain.HealthState) domain.HealthState {
	if healthRank[b] > healthRank[a] {
		return b
	}
	return a
}
