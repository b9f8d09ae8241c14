package reportexport

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// WriteCSV renders a reconciliation report as CSV: one summary line, then a
// "Discrepancies" section covering discrepancies and both orphan sides (typed
// missing_local / missing_external).
func WriteCSV(w io.Writer, report domain.ReconciliationReport) error {
	cw := csv.NewWriter(w)

	summary := []string{
		"report_id", "generated_at", "period_start", "period_end",
		"matched", "discrepancies", "local_orphans", "external_orphans", "ambiguous",
	}
	if err := cw.Write(summary); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	if err := cw.Write([]string{
		report.ReportID,
		report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		report.PeriodStart.Format("2006-01-02T15:04:05Z07:00"),
		report.PeriodEnd.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%d", report.Summary.MatchedCount),
		fmt.Sprintf("%d", report.Summary.DiscrepancyCount),
		fmt.Sprintf("%d", report.Summary.LocalOrphanCount),
		fmt.Sprintf("%d", report.Summary.ExternalOrphanCount),
		fmt.Sprintf("%d", report.Summary.AmbiguousCount),
	}); err != nil {
		return fmt.Errorf("writing summary line: %w", err)
	}

	if err := cw.Write([]string{"Discrepancies"}); err != nil {
		return fmt.Errorf("writing section header: %w", err)
	}
	if err := cw.Write([]string{"type", "localId", "externalId", "description", "severity", "action"}); err != nil {
		return fmt.Errorf("writing discrepancy header: %w", err)
	}

	for _, d := range report.Discrepancies {
		row := []string{
			string(d.Kind),
			deref(d.LocalID),
			deref(d.ExternalID),
			d.Description,
			string(d.Severity),
			d.RecommendedAction,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing discrepancy row: %w", err)
		}
	}
	for _, o := range report.Orphans.Local {
		if err := cw.Write(orphanRow(domain.DiscrepancyMissingExternal, o.ID, "", o)); err != nil {
			return fmt.Errorf("writing local orphan row: %w", err)
		}
	}
	for _, o := range report.Orphans.External {
		if err := cw.Write(orphanRow(domain.DiscrepancyMissingLocal, "", o.ID, o)); err != nil {
			return fmt.Errorf("writing external orphan row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// orphanRow flattens an orphan into the discrepancy section: a local orphan
// is a record missing on the external side and vice versa.
func orphanRow(kind domain.DiscrepancyKind, localID, externalID string, o domain.OrphanPayment) []string {
	return []string{
		string(kind),
		localID,
		externalID,
		o.Reason,
		string(o.Severity),
		o.SuggestedAction,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
