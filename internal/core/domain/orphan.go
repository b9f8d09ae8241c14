package domain

import "time"

// OrphanSource identifies which ledger the unmatched record came from.
type OrphanSource string

const (
	OrphanSourceLocal    OrphanSource = "local"
	OrphanSourceExternal OrphanSource = "external"
)

// OrphanPayment is a record present in one system with no counterpart in the
// other after matching.
type OrphanPayment struct {
	Source          OrphanSource `json:"source"`
	ID              string       `json:"id"`
	AmountMinor     int64        `json:"amount_minor"`
	CurrencyCode    string       `json:"currency"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	Reason          string       `json:"reason"`
	SuggestedAction string       `json:"suggested_action"`
	Severity        Severity     `json:"severity"`
}
