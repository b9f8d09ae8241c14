package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// BuildReport aggregates one run's match result into an immutable
// reconciliation report: pairwise comparison of matches, ambiguity downgraded
// to metadata_mismatch discrepancies, orphan classification, summary counts
// and a fixed, deterministically-ordered recommendation rule set.
func BuildReport(reportID string, generatedAt, periodStart, periodEnd time.Time, result domain.MatchResult) domain.ReconciliationReport {
	var discrepancies []domain.Discrepancy
	for _, pair := range result.Matches {
		discrepancies = append(discrepancies, ComparePair(pair)...)
	}
	for _, amb := range result.Ambiguous {
		discrepancies = append(discrepancies, ambiguityDiscrepancy(amb))
	}

	orphansLocal, orphansExternal := DetectOrphans(result)

	externalTotal := len(result.Matches) + len(result.OrphansExternal)
	for _, amb := range result.Ambiguous {
		externalTotal += len(amb.Candidates)
	}

	report := domain.ReconciliationReport{
		ReportID:    reportID,
		GeneratedAt: generatedAt,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Summary: domain.ReportSummary{
			TotalLocal:          len(result.Matches) + len(result.Ambiguous) + len(result.OrphansLocal),
			TotalExternal:       externalTotal,
			MatchedCount:        len(result.Matches),
			DiscrepancyCount:    len(discrepancies),
			LocalOrphanCount:    len(orphansLocal),
			ExternalOrphanCount: len(orphansExternal),
			AmbiguousCount:      len(result.Ambiguous),
		},
		Discrepancies: discrepancies,
		Orphans: domain.ReportOrphans{
			Local:    orphansLocal,
			External: orphansExternal,
		},
	}
	report.Recommendations = buildRecommendations(report)
	return report
}

// ambiguityDiscrepancy converts an ambiguous heuristic match into a
// high-severity metadata_mismatch discrepancy referencing all involved ids.
func ambiguityDiscrepancy(amb domain.AmbiguousMatch) domain.Discrepancy {
	localID := amb.Local.TransactionID
	candidateIDs := make([]string, 0, len(amb.Candidates))
	for _, c := range amb.Candidates {
		candidateIDs = append(candidateIDs, c.ExternalID)
	}
	var externalID *string
	if len(candidateIDs) > 0 {
		externalID = &candidateIDs[0]
	}
	return domain.Discrepancy{
		Kind:     domain.DiscrepancyMetadataMismatch,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("ambiguous match: local %s has %d external candidates (%s)",
			localID, len(candidateIDs), strings.Join(candidateIDs, ", ")),
		RecommendedAction: "Resolve manually; the engine never guesses between candidates",
		LocalID:           &localID,
		ExternalID:        externalID,
	}
}

// buildRecommendations applies the fixed recommendation rules in a fixed
// order, so identical reports always carry identical recommendation lists.
func buildRecommendations(report domain.ReconciliationReport) []string {
	var recommendations []string

	criticalCount := 0
	statusMismatchCount := 0
	for _, d := range report.Discrepancies {
		if d.Severity == domain.SeverityCritical {
			criticalCount++
		}
		if d.Kind == domain.DiscrepancyStatusMismatch {
			statusMismatchCount++
		}
	}
	exposedExternal := 0
	for _, o := range report.Orphans.External {
		if o.Severity == domain.SeverityHigh {
			exposedExternal++
		}
	}
	completedLocal := 0
	for _, o := range report.Orphans.Local {
		if o.Severity == domain.SeverityMedium {
			completedLocal++
		}
	}

	if criticalCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("URGENT: %d critical discrepancies require immediate review", criticalCount))
	}
	if exposedExternal > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Investigate %d completed external payments with no local record; possible exposure", exposedExternal))
	}
	if statusMismatchCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Run the payment sync to resolve %d status mismatches", statusMismatchCount))
	}
	if report.Summary.AmbiguousCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Manually review %d ambiguous match groups", report.Summary.AmbiguousCount))
	}
	if completedLocal > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Verify %d completed local transactions absent from the processor", completedLocal))
	}
	if len(recommendations) == 0 && report.Clean() {
		recommendations = append(recommendations, "No discrepancies found; ledgers are consistent")
	}
	return recommendations
}
