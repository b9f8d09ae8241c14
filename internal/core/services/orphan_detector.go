package services

import (
	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// ClassifyLocalOrphan classifies a local transaction with no external
// counterpart.
func ClassifyLocalOrphan(tx domain.Transaction) domain.OrphanPayment {
	orphan := domain.OrphanPayment{
		Source:       domain.OrphanSourceLocal,
		ID:           tx.TransactionID,
		AmountMinor:  tx.AmountMinorUnits(),
		CurrencyCode: tx.CurrencyCode,
		Status:       string(tx.Status),
		CreatedAt:    tx.CreatedAt,
	}
	if tx.Status == domain.StatusCompleted {
		orphan.Severity = domain.SeverityMedium
		orphan.Reason = "local transaction is completed but the processor has no matching record"
		orphan.SuggestedAction = "verify if processed outside normal flow"
	} else {
		orphan.Severity = domain.SeverityLow
		orphan.Reason = "local transaction never reached the processor"
		orphan.SuggestedAction = "likely abandoned; consider expiring"
	}
	return orphan
}

// ClassifyExternalOrphan classifies an external record with no local
// counterpart. The completed-equivalent case is the single most dangerous
// class a run can surface: money moved with no local record of it.
func ClassifyExternalOrphan(ext domain.ExternalTransaction) domain.OrphanPayment {
	orphan := domain.OrphanPayment{
		Source:       domain.OrphanSourceExternal,
		ID:           ext.ExternalID,
		AmountMinor:  ext.AmountMinor,
		CurrencyCode: ext.CurrencyCode,
		Status:       ext.Status,
		CreatedAt:    ext.CreatedAt,
	}
	if mapped, ok := ext.MappedStatus(); ok && mapped == domain.StatusCompleted {
		orphan.Severity = domain.SeverityHigh
		orphan.Reason = "money moved on the processor with no local record"
		orphan.SuggestedAction = "investigate exposure immediately"
	} else {
		orphan.Severity = domain.SeverityLow
		orphan.Reason = "incomplete processor event with no local record"
		orphan.SuggestedAction = "no action required"
	}
	return orphan
}

// DetectOrphans classifies every unmatched record from a match result.
// Ambiguous records are already excluded by the matcher and never appear here.
func DetectOrphans(result domain.MatchResult) (local []domain.OrphanPayment, external []domain.OrphanPayment) {
	for _, tx := range result.OrphansLocal {
		local = append(local, ClassifyLocalOrphan(tx))
	}
	for _, ext := range result.OrphansExternal {
		external = append(external, ClassifyExternalOrphan(ext))
	}
	return local, external
}
