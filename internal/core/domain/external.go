package domain

import "time"

// External payment processor status vocabulary. These are the raw values the
// processor reports; internal logic never branches on them directly, only on
// the mapped TransactionStatus.
const (
	ExternalStatusSucceeded            = "succeeded"
	ExternalStatusProcessing           = "processing"
	ExternalStatusRequiresPayment      = "requires_payment_method"
	ExternalStatusRequiresAction       = "requires_action"
	ExternalStatusRequiresConfirmation = "requires_confirmation"
	ExternalStatusRequiresCapture      = "requires_capture"
	ExternalStatusCanceled             = "canceled"
	ExternalStatusFailed               = "failed"
)

// ExternalTransaction is a read-only snapshot of one logical payment event on
// the external processor. The fetcher has already collapsed multiple raw
// representations of the same economic event into a single record.
type ExternalTransaction struct {
	ExternalID   string            `json:"externalID"`
	AmountMinor  int64             `json:"amountMinor"` // Already in minor units
	CurrencyCode string            `json:"currencyCode"`
	Status       string            `json:"status"` // External vocabulary; map before comparing
	CreatedAt    time.Time         `json:"createdAt"`
	IntentID     *string           `json:"intentID,omitempty"`   // Linked payment intent, if this came from a charge
	CustomerID   *string           `json:"customerID,omitempty"` // Processor-side customer, if known
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// externalStatusMap is the single closed mapping from external status
// vocabulary to local statuses, fixed at the system boundary.
var externalStatusMap = map[string]TransactionStatus{
	ExternalStatusSucceeded:            StatusCompleted,
	ExternalStatusProcessing:           StatusPending,
	ExternalStatusRequiresPayment:      StatusPending,
	ExternalStatusRequiresAction:       StatusPending,
	ExternalStatusRequiresConfirmation: StatusPending,
	ExternalStatusRequiresCapture:      StatusPending,
	ExternalStatusCanceled:             StatusFailed,
	ExternalStatusFailed:               StatusFailed,
}

// MapExternalStatus translates the processor's status vocabulary into the
// local one. The second return value is false for vocabulary this engine does
// not recognize; callers must treat that as a discrepancy, never guess.
func MapExternalStatus(externalStatus string) (TransactionStatus, bool) {
	mapped, ok := externalStatusMap[externalStatus]
	return mapped, ok
}

// MappedStatus is a convenience accessor for the record's mapped local status.
func (e ExternalTransaction) MappedStatus() (TransactionStatus, bool) {
	return MapExternalStatus(e.Status)
}
