package reportexport_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrecon/payment_recon_app/internal/adapters/reportexport"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

func TestWriteCSV(t *testing.T) {
	localID := "L1"
	externalID := "E1"
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := domain.ReconciliationReport{
		ReportID:    "report-1",
		GeneratedAt: at,
		PeriodStart: at.Add(-24 * time.Hour),
		PeriodEnd:   at,
		Summary: domain.ReportSummary{
			TotalLocal:          3,
			TotalExternal:       3,
			MatchedCount:        1,
			DiscrepancyCount:    1,
			LocalOrphanCount:    1,
			ExternalOrphanCount: 1,
		},
		Discrepancies: []domain.Discrepancy{
			{
				Kind:              domain.DiscrepancyAmountMismatch,
				Severity:          domain.SeverityHigh,
				Description:       "amount differs",
				RecommendedAction: "review",
				LocalID:           &localID,
				ExternalID:        &externalID,
			},
		},
		Orphans: domain.ReportOrphans{
			Local: []domain.OrphanPayment{{
				Source:          domain.OrphanSourceLocal,
				ID:              "L2",
				Severity:        domain.SeverityMedium,
				Reason:          "no external record",
				SuggestedAction: "verify if processed outside normal flow",
			}},
			External: []domain.OrphanPayment{{
				Source:          domain.OrphanSourceExternal,
				ID:              "E3",
				Severity:        domain.SeverityHigh,
				Reason:          "money moved on the processor with no local record",
				SuggestedAction: "investigate exposure immediately",
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, reportexport.WriteCSV(&buf, report))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1 // sections have different widths
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)

	assert.Equal(t, "report_id", rows[0][0])
	assert.Equal(t, []string{
		"report-1", "2025-06-01T12:00:00Z", "2025-05-31T12:00:00Z", "2025-06-01T12:00:00Z",
		"1", "1", "1", "1", "0",
	}, rows[1])

	assert.Equal(t, []string{"Discrepancies"}, rows[2])
	assert.Equal(t, []string{"type", "localId", "externalId", "description", "severity", "action"}, rows[3])
	assert.Equal(t, []string{"amount_mismatch", "L1", "E1", "amount differs", "high", "review"}, rows[4])

	// Orphans flatten into typed rows: a local orphan is missing externally.
	assert.Equal(t, "missing_external", rows[5][0])
	assert.Equal(t, "L2", rows[5][1])
	assert.Equal(t, "", rows[5][2])
	assert.Equal(t, "missing_local", rows[6][0])
	assert.Equal(t, "", rows[6][1])
	assert.Equal(t, "E3", rows[6][2])
}

func TestWriteCSV_EmptyReportStillHasSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reportexport.WriteCSV(&buf, domain.ReconciliationReport{ReportID: "report-2"}))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Discrepancies"}, rows[2])
}
