package domain

import "time"

// AuditAction names the operation that produced an audit entry.
type AuditAction string

const (
	AuditActionExternalSync AuditAction = "external_sync"
	AuditActionTimeoutSync  AuditAction = "timeout_sync"
)

// AuditEntry is an immutable record of a status change applied to a local
// transaction. Entries are append-only.
type AuditEntry struct {
	AuditID       string            `json:"auditID"`
	TransactionID string            `json:"transactionID"`
	Action        AuditAction       `json:"action"`
	OldStatus     TransactionStatus `json:"oldStatus"`
	NewStatus     TransactionStatus `json:"newStatus"`
	Source        string            `json:"source"` // e.g. the external reference consulted
	CreatedAt     time.Time         `json:"createdAt"`
}
