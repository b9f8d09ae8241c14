package services

import (
	"fmt"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// ComparePair inspects one 1:1 matched pair for amount and status
// discrepancies. Monetary comparison happens exclusively in minor units.
func ComparePair(pair domain.MatchedPair) []domain.Discrepancy {
	var discrepancies []domain.Discrepancy

	localID := pair.Local.TransactionID
	externalID := pair.External.ExternalID

	localMinor := pair.Local.AmountMinorUnits()
	diff := localMinor - pair.External.AmountMinor
	if diff < 0 {
		diff = -diff
	}
	if diff >= 1 {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Kind:     domain.DiscrepancyAmountMismatch,
			Severity: domain.SeverityHigh,
			Description: fmt.Sprintf("amount differs: local %d vs external %d minor units (%s)",
				localMinor, pair.External.AmountMinor, pair.Local.CurrencyCode),
			RecommendedAction: "Compare against processor records and correct the ledger amount",
			LocalID:           &localID,
			ExternalID:        &externalID,
		})
	}

	mapped, known := pair.External.MappedStatus()
	if !known {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Kind:     domain.DiscrepancyStatusMismatch,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("unrecognized external status %q for local status %q",
				pair.External.Status, pair.Local.Status),
			RecommendedAction: "Extend the status mapping table or investigate the processor event",
			LocalID:           &localID,
			ExternalID:        &externalID,
		})
		return discrepancies
	}

	if mapped == pair.Local.Status {
		return discrepancies
	}

	// Transient in-flight disagreements are left to the sync engine rather
	// than reported here; either side may simply not have caught up yet.
	if (pair.Local.Status == domain.StatusPending && mapped == domain.StatusCompleted) ||
		(pair.Local.Status == domain.StatusCompleted && mapped == domain.StatusPending) {
		return discrepancies
	}

	discrepancies = append(discrepancies, domain.Discrepancy{
		Kind:     domain.DiscrepancyStatusMismatch,
		Severity: statusMismatchSeverity(pair.Local.Status, mapped),
		Description: fmt.Sprintf("status differs: local %q vs external %q (mapped from %q)",
			pair.Local.Status, mapped, pair.External.Status),
		RecommendedAction: "Verify the transaction outcome with the processor before correcting",
		LocalID:           &localID,
		ExternalID:        &externalID,
	})
	return discrepancies
}

// statusMismatchSeverity is the fixed severity table for status mismatches
// between the local status and the mapped external status.
func statusMismatchSeverity(local, mappedExternal domain.TransactionStatus) domain.Severity {
	switch {
	case local == domain.StatusCompleted && mappedExternal == domain.StatusFailed,
		local == domain.StatusFailed && mappedExternal == domain.StatusCompleted:
		return domain.SeverityCritical
	case local == domain.StatusPending && mappedExternal == domain.StatusFailed:
		return domain.SeverityHigh
	case local == domain.StatusCompleted && mappedExternal == domain.StatusPending:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
