package domain

import "time"

// HealthState is the overall verdict of the reconciliation health probe.
type HealthState string

const (
	HealthHealthy  HealthState = "healthy"
	HealthWarning  HealthState = "warning"
	HealthCritical HealthState = "critical"
)

// HealthStatus is the result of one health probe.
type HealthStatus struct {
	Status                 HealthState `json:"status"`
	ExternalReachable      bool        `json:"external_reachable"`
	StalePendingCount      int         `json:"stale_pending_count"`
	RecentDiscrepancyCount int         `json:"recent_discrepancy_count"`
	CheckedAt              time.Time   `json:"checked_at"`
}
