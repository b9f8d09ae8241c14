package gateways

import (
	"context"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// PaymentProcessor is the narrow contract against the external payment
// processor. Both calls are read-only; the engine never mutates processor
// state. ListPaymentEvents returns one logical record per economic event:
// the adapter collapses multi-representation events before returning.
type PaymentProcessor interface {
	ListPaymentEvents(ctx context.Context, start, end time.Time) ([]domain.ExternalTransaction, error)
	// GetPaymentEvent looks up a single event by its stored reference.
	// Returns apperrors.ErrNotFound when the processor has no trace of it,
	// apperrors.ErrRateLimited when the processor asks the caller to back off.
	GetPaymentEvent(ctx context.Context, reference string) (*domain.ExternalTransaction, error)
	// Ping checks reachability for the health probe.
	Ping(ctx context.Context) error
}

// AlertSink receives fire-and-forget alerts. Implementations must never block
// the reconciliation path; delivery failures are logged and dropped.
type AlertSink interface {
	Raise(severity domain.Severity, message string, context map[string]string)
}

// RunLocker enforces the single-active-run invariant. TryAcquire returns
// false immediately when another run holds the lease; callers never queue.
// Release is idempotent.
type RunLocker interface {
	TryAcquire(ctx context.Context) (release func(), acquired bool, err error)
}
