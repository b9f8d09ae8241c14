package services

import (
	"log/slog"

	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
)

// NewServiceContainer wires the concrete services behind their port facades.
func NewServiceContainer(
	ledgerRepo repositories.LedgerRepository,
	reportRepo repositories.ReportRepository,
	processor gateways.PaymentProcessor,
	alerts gateways.AlertSink,
	locker gateways.RunLocker,
	logger *slog.Logger,
	syncCfg SyncConfig,
	healthCfg HealthConfig,
) *portssvc.ServiceContainer {
	recon := NewReconciliationService(ledgerRepo, processor, reportRepo, alerts, locker)
	return &portssvc.ServiceContainer{
		Reconciliation: recon,
		Sync:           NewSyncService(ledgerRepo, processor, syncCfg),
		Health:         NewHealthService(ledgerRepo, reportRepo, processor, healthCfg),
		Scheduler:      NewScheduler(recon, logger),
	}
}
