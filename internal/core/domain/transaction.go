package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle status of a locally-owned payment transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusRefunded  TransactionStatus = "refunded"
)

// IsTerminal reports whether no further status transition is expected.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// Transaction represents a payment transaction in the local ledger.
// Created on payment initiation and mutated on completion/failure/refund/sync;
// rows are never hard-deleted.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (UUID)
	UserID        string            `json:"userID"`        // Owning user
	Amount        decimal.Decimal   `json:"amount"`        // Precise decimal; compared only in minor units
	CurrencyCode  string            `json:"currencyCode"`  // ISO 4217
	Status        TransactionStatus `json:"status"`
	ExternalRef   *string           `json:"externalRef,omitempty"` // Reference into the payment processor, if known
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

// currencyExponents maps ISO 4217 codes to their minor-unit exponent where it
// differs from the default of 2.
var currencyExponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"MGA": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// CurrencyExponent returns the number of minor-unit digits for a currency code.
func CurrencyExponent(currencyCode string) int32 {
	if exp, ok := currencyExponents[currencyCode]; ok {
		return exp
	}
	return 2
}

// AmountMinorUnits converts the decimal amount into integer minor units
// (e.g. 19.99 USD -> 1999). All monetary comparisons happen in this
// representation to avoid floating-point rounding.
func (t Transaction) AmountMinorUnits() int64 {
	exp := CurrencyExponent(t.CurrencyCode)
	return t.Amount.Shift(exp).Round(0).IntPart()
}

// Age returns how long ago the transaction was created, relative to now.
func (t Transaction) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}
