package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	portsgw "github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	portsrepo "github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepository = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListPendingSince(ctx context.Context, since time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) CountStalePending(ctx context.Context, olderThan time.Time) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, status, updatedAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock ReportRepository ---
type MockReportRepository struct {
	mock.Mock
}

var _ portsrepo.ReportRepository = (*MockReportRepository)(nil)

func (m *MockReportRepository) SaveReport(ctx context.Context, report domain.ReconciliationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) CountDiscrepanciesSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

// --- Mock PaymentProcessor ---
type MockPaymentProcessor struct {
	mock.Mock
}

var _ portsgw.PaymentProcessor = (*MockPaymentProcessor)(nil)

func (m *MockPaymentProcessor) ListPaymentEvents(ctx context.Context, start, end time.Time) ([]domain.ExternalTransaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalTransaction), args.Error(1)
}

func (m *MockPaymentProcessor) GetPaymentEvent(ctx context.Context, reference string) (*domain.ExternalTransaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalTransaction), args.Error(1)
}

func (m *MockPaymentProcessor) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock AlertSink ---
type MockAlertSink struct {
	mock.Mock
}

var _ portsgw.AlertSink = (*MockAlertSink)(nil)

func (m *MockAlertSink) Raise(severity domain.Severity, message string, alertContext map[string]string) {
	m.Called(severity, message, alertContext)
}

// --- Test run locker ---

// testRunLocker is a minimal in-process RunLocker for service tests.
type testRunLocker struct {
	mu   sync.Mutex
	held bool
}

var _ portsgw.RunLocker = (*testRunLocker)(nil)

func (l *testRunLocker) TryAcquire(_ context.Context) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, false, nil
	}
	l.held = true
	release := func() {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
	}
	return release, true, nil
}

// --- Test helpers ---

func stringPtr(s string) *string {
	return &s
}
