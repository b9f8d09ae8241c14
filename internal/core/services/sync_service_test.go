package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/services"
)

func fastSyncConfig() services.SyncConfig {
	return services.SyncConfig{
		WorkerCount:    2,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	}
}

func pendingTx(id string, ref *string, age time.Duration) domain.Transaction {
	return localTx(id, "10.00", domain.StatusPending, ref, time.Now().UTC().Add(-age))
}

func auditWith(txID string, action domain.AuditAction, newStatus domain.TransactionStatus) interface{} {
	return mock.MatchedBy(func(entry domain.AuditEntry) bool {
		return entry.TransactionID == txID &&
			entry.Action == action &&
			entry.OldStatus == domain.StatusPending &&
			entry.NewStatus == newStatus &&
			entry.AuditID != ""
	})
}

func TestSyncPendingPayments_TerminalStatusSynced(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	tx := pendingTx("L1", stringPtr("E1"), time.Hour)
	ext := externalTx("E1", 1000, domain.ExternalStatusSucceeded, tx.CreatedAt)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{tx}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(&ext, nil)
	ledgerRepo.On("UpdateStatus", ctx, "L1", domain.StatusCompleted, mock.AnythingOfType("time.Time")).
		Return(nil)
	ledgerRepo.On("AppendAudit", ctx, auditWith("L1", domain.AuditActionExternalSync, domain.StatusCompleted)).
		Return(nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
	ledgerRepo.AssertExpectations(t)
}

func TestSyncPendingPayments_NonTerminalLeftUntouched(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	tx := pendingTx("L1", stringPtr("E1"), time.Hour)
	ext := externalTx("E1", 1000, domain.ExternalStatusProcessing, tx.CreatedAt)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{tx}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(&ext, nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	ledgerRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncPendingPayments_TimeoutWithoutReference(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	stale := pendingTx("L1", nil, 48*time.Hour)
	fresh := pendingTx("L2", nil, time.Hour)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{stale, fresh}, nil)
	ledgerRepo.On("UpdateStatus", ctx, "L1", domain.StatusFailed, mock.AnythingOfType("time.Time")).
		Return(nil)
	ledgerRepo.On("AppendAudit", ctx, auditWith("L1", domain.AuditActionTimeoutSync, domain.StatusFailed)).
		Return(nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
	// The fresh record stays pending until the timeout elapses.
	ledgerRepo.AssertNotCalled(t, "UpdateStatus", ctx, "L2", mock.Anything, mock.Anything)
	processor.AssertNotCalled(t, "GetPaymentEvent", mock.Anything, mock.Anything)
}

func TestSyncPendingPayments_NotFoundPastTimeoutFails(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	tx := pendingTx("L1", stringPtr("E1"), 48*time.Hour)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{tx}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(nil, apperrors.ErrNotFound)
	ledgerRepo.On("UpdateStatus", ctx, "L1", domain.StatusFailed, mock.AnythingOfType("time.Time")).
		Return(nil)
	ledgerRepo.On("AppendAudit", ctx, auditWith("L1", domain.AuditActionTimeoutSync, domain.StatusFailed)).
		Return(nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	ledgerRepo.AssertExpectations(t)
}

func TestSyncPendingPayments_ErrorsIsolatedPerItem(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	cfg := fastSyncConfig()
	cfg.WorkerCount = 1
	service := services.NewSyncService(ledgerRepo, processor, cfg)
	ctx := context.Background()

	broken := pendingTx("L1", stringPtr("E1"), time.Hour)
	healthy := pendingTx("L2", stringPtr("E2"), time.Hour)
	ext := externalTx("E2", 1000, domain.ExternalStatusFailed, healthy.CreatedAt)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{broken, healthy}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(nil, errors.New("boom"))
	processor.On("GetPaymentEvent", ctx, "E2").Return(&ext, nil)
	ledgerRepo.On("UpdateStatus", ctx, "L2", domain.StatusFailed, mock.AnythingOfType("time.Time")).
		Return(nil)
	ledgerRepo.On("AppendAudit", ctx, auditWith("L2", domain.AuditActionExternalSync, domain.StatusFailed)).
		Return(nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "L1", result.Errors[0].TransactionID)
	assert.Contains(t, result.Errors[0].Err, "boom")
}

func TestSyncPendingPayments_RateLimitRetriesThenRecords(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	tx := pendingTx("L1", stringPtr("E1"), time.Hour)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{tx}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(nil, apperrors.ErrRateLimited)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "L1", result.Errors[0].TransactionID)
	// Initial attempt plus the configured retries.
	processor.AssertNumberOfCalls(t, "GetPaymentEvent", 3)
}

func TestSyncPendingPayments_RateLimitRecoversWithinBudget(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	tx := pendingTx("L1", stringPtr("E1"), time.Hour)
	ext := externalTx("E1", 1000, domain.ExternalStatusSucceeded, tx.CreatedAt)

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Transaction{tx}, nil)
	processor.On("GetPaymentEvent", ctx, "E1").Return(nil, apperrors.ErrRateLimited).Once()
	processor.On("GetPaymentEvent", ctx, "E1").Return(&ext, nil).Once()
	ledgerRepo.On("UpdateStatus", ctx, "L1", domain.StatusCompleted, mock.AnythingOfType("time.Time")).
		Return(nil)
	ledgerRepo.On("AppendAudit", ctx, auditWith("L1", domain.AuditActionExternalSync, domain.StatusCompleted)).
		Return(nil)

	result, err := service.SyncPendingPayments(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
}

func TestSyncPendingPayments_ListFailure(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	processor := new(MockPaymentProcessor)
	service := services.NewSyncService(ledgerRepo, processor, fastSyncConfig())
	ctx := context.Background()

	ledgerRepo.On("ListPendingSince", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("db down"))

	result, err := service.SyncPendingPayments(ctx)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
}
