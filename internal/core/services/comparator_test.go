package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/services"
)

func pairOf(localAmount string, localStatus domain.TransactionStatus, extMinor int64, extStatus string) domain.MatchedPair {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.MatchedPair{
		Local:    localTx("L1", localAmount, localStatus, stringPtr("E1"), at),
		External: externalTx("E1", extMinor, extStatus, at),
	}
}

func TestComparePair_EqualMinorUnitsNoMismatch(t *testing.T) {
	// 19.99 USD is exactly 1999 minor units; no float drift allowed.
	pair := pairOf("19.99", domain.StatusCompleted, 1999, domain.ExternalStatusSucceeded)

	assert.Empty(t, services.ComparePair(pair))
}

func TestComparePair_OneMinorUnitOffIsHigh(t *testing.T) {
	pair := pairOf("19.99", domain.StatusCompleted, 1998, domain.ExternalStatusSucceeded)

	discrepancies := services.ComparePair(pair)

	require.Len(t, discrepancies, 1)
	assert.Equal(t, domain.DiscrepancyAmountMismatch, discrepancies[0].Kind)
	assert.Equal(t, domain.SeverityHigh, discrepancies[0].Severity)
	require.NotNil(t, discrepancies[0].LocalID)
	assert.Equal(t, "L1", *discrepancies[0].LocalID)
	require.NotNil(t, discrepancies[0].ExternalID)
	assert.Equal(t, "E1", *discrepancies[0].ExternalID)
}

func TestComparePair_UnknownExternalStatus(t *testing.T) {
	pair := pairOf("10.00", domain.StatusCompleted, 1000, "disputed")

	discrepancies := services.ComparePair(pair)

	require.Len(t, discrepancies, 1)
	assert.Equal(t, domain.DiscrepancyStatusMismatch, discrepancies[0].Kind)
	assert.Equal(t, domain.SeverityMedium, discrepancies[0].Severity)
	assert.Contains(t, discrepancies[0].Description, "disputed")
}

func TestComparePair_InFlightSuppressed(t *testing.T) {
	cases := []struct {
		name     string
		local    domain.TransactionStatus
		external string
	}{
		{"local pending, external succeeded", domain.StatusPending, domain.ExternalStatusSucceeded},
		{"local completed, external processing", domain.StatusCompleted, domain.ExternalStatusProcessing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair := pairOf("10.00", tc.local, 1000, tc.external)
			assert.Empty(t, services.ComparePair(pair))
		})
	}
}

func TestComparePair_StatusSeverityTable(t *testing.T) {
	cases := []struct {
		name     string
		local    domain.TransactionStatus
		external string
		want     domain.Severity
	}{
		{"completed vs failed", domain.StatusCompleted, domain.ExternalStatusFailed, domain.SeverityCritical},
		{"failed vs succeeded", domain.StatusFailed, domain.ExternalStatusSucceeded, domain.SeverityCritical},
		{"pending vs failed", domain.StatusPending, domain.ExternalStatusFailed, domain.SeverityHigh},
		{"refunded vs succeeded", domain.StatusRefunded, domain.ExternalStatusSucceeded, domain.SeverityLow},
		{"failed vs processing", domain.StatusFailed, domain.ExternalStatusProcessing, domain.SeverityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair := pairOf("10.00", tc.local, 1000, tc.external)

			discrepancies := services.ComparePair(pair)

			require.Len(t, discrepancies, 1)
			assert.Equal(t, domain.DiscrepancyStatusMismatch, discrepancies[0].Kind)
			assert.Equal(t, tc.want, discrepancies[0].Severity)
		})
	}
}

func TestComparePair_AmountAndStatusBothReported(t *testing.T) {
	pair := pairOf("10.00", domain.StatusCompleted, 1500, domain.ExternalStatusFailed)

	discrepancies := services.ComparePair(pair)

	require.Len(t, discrepancies, 2)
	assert.Equal(t, domain.DiscrepancyAmountMismatch, discrepancies[0].Kind)
	assert.Equal(t, domain.DiscrepancyStatusMismatch, discrepancies[1].Kind)
	assert.Equal(t, domain.SeverityCritical, discrepancies[1].Severity)
}
