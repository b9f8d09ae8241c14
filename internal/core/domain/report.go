package domain

import "time"

// ReportSummary holds the headline counts for one reconciliation run. The
// totals always equal the sums over the report's own partitions.
type ReportSummary struct {
	TotalLocal          int `json:"total_local_transactions"`
	TotalExternal       int `json:"total_external_transactions"`
	MatchedCount        int `json:"matched_count"`
	DiscrepancyCount    int `json:"discrepancy_count"`
	LocalOrphanCount    int `json:"local_orphan_count"`
	ExternalOrphanCount int `json:"external_orphan_count"`
	AmbiguousCount      int `json:"ambiguous_count"`
}

// ReportOrphans groups orphan payments by the side they were found on.
type ReportOrphans struct {
	Local    []OrphanPayment `json:"local"`
	External []OrphanPayment `json:"external"`
}

// ReconciliationReport is the immutable audit artifact produced by one run.
type ReconciliationReport struct {
	ReportID        string        `json:"report_id"`
	GeneratedAt     time.Time     `json:"generated_at"`
	PeriodStart     time.Time     `json:"period_start"`
	PeriodEnd       time.Time     `json:"period_end"`
	Summary         ReportSummary `json:"summary"`
	Discrepancies   []Discrepancy `json:"discrepancies"`
	Orphans         ReportOrphans `json:"orphans"`
	Recommendations []string      `json:"recommendations"`
}

// WorstSeverity returns the highest severity present across discrepancies and
// orphans, or the empty string for a clean report.
func (r ReconciliationReport) WorstSeverity() Severity {
	var worst Severity
	seen := false
	for _, d := range r.Discrepancies {
		if !seen || d.Severity.WorseThan(worst) {
			worst = d.Severity
			seen = true
		}
	}
	for _, o := range append(r.Orphans.Local, r.Orphans.External...) {
		if !seen || o.Severity.WorseThan(worst) {
			worst = o.Severity
			seen = true
		}
	}
	return worst
}

// Clean reports whether the run found nothing requiring attention.
func (r ReconciliationReport) Clean() bool {
	return len(r.Discrepancies) == 0 &&
		len(r.Orphans.Local) == 0 &&
		len(r.Orphans.External) == 0
}
