package dto

import "time"

// RunReconciliationRequest optionally narrows the run to [start, end).
// Omitted bounds default to the trailing 24 hours.
type RunReconciliationRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ScheduleRequest configures the recurring reconciliation trigger.
type ScheduleRequest struct {
	IntervalHours int `json:"interval_hours" binding:"required,min=1"`
}

// ScheduleResponse reports the scheduler state after a control call.
type ScheduleResponse struct {
	Active        bool `json:"active"`
	IntervalHours int  `json:"interval_hours,omitempty"`
}
