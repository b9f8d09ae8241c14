package domain

// DiscrepancyKind classifies a detected inconsistency between the two ledgers.
type DiscrepancyKind string

const (
	DiscrepancyAmountMismatch   DiscrepancyKind = "amount_mismatch"
	DiscrepancyStatusMismatch   DiscrepancyKind = "status_mismatch"
	DiscrepancyMissingLocal     DiscrepancyKind = "missing_local"
	DiscrepancyMissingExternal  DiscrepancyKind = "missing_external"
	DiscrepancyMetadataMismatch DiscrepancyKind = "metadata_mismatch"
)

// Severity ranks how dangerous a discrepancy or orphan is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for "worst wins" comparisons.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// WorseThan reports whether s ranks strictly above other.
func (s Severity) WorseThan(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

// Discrepancy describes one inconsistency found between a matched pair or an
// unmatched record. LocalID/ExternalID reference at most one record each; an
// ambiguous-match discrepancy lists every involved id in its description.
type Discrepancy struct {
	Kind              DiscrepancyKind `json:"type"`
	Severity          Severity        `json:"severity"`
	Description       string          `json:"description"`
	RecommendedAction string          `json:"recommended_action"`
	LocalID           *string         `json:"local_transaction_id,omitempty"`
	ExternalID        *string         `json:"external_transaction_id,omitempty"`
}
