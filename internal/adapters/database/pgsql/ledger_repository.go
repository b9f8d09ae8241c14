package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/repositories"
)

// PgxLedgerRepository implements the ledger port against PostgreSQL.
type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

var _ repositories.LedgerRepository = (*PgxLedgerRepository)(nil)

// NewPgxLedgerRepository creates a new repository for local payment transactions.
func NewPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{pool: pool}
}

const transactionColumns = `transaction_id, user_id, amount, currency_code, status, external_ref, metadata, created_at, completed_at`

// ListTransactions returns every transaction created in [start, end), ordered
// by creation time then id so runs over the same window see identical input.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListPendingSince returns pending transactions created at or after since.
func (r *PgxLedgerRepository) ListPendingSince(ctx context.Context, since time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE status = $1 AND created_at >= $2
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.pool.Query(ctx, query, domain.StatusPending, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// CountStalePending counts pending transactions created before olderThan.
func (r *PgxLedgerRepository) CountStalePending(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM payment_transactions
		WHERE status = $1 AND created_at < $2;
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, domain.StatusPending, olderThan).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stale pending transactions: %w", err)
	}
	return count, nil
}

// UpdateStatus sets the transaction's status; completed_at is stamped when
// the new status is terminal.
func (r *PgxLedgerRepository) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedAt time.Time) error {
	query := `
		UPDATE payment_transactions
		SET status = $2,
		    completed_at = CASE WHEN $3 THEN $4 ELSE completed_at END
		WHERE transaction_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, transactionID, status, status.IsTerminal(), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update status for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendAudit inserts an immutable audit entry.
func (r *PgxLedgerRepository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	query := `
		INSERT INTO transaction_audit (audit_id, transaction_id, action, old_status, new_status, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		entry.AuditID,
		entry.TransactionID,
		entry.Action,
		entry.OldStatus,
		entry.NewStatus,
		entry.Source,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for transaction %s: %w", entry.TransactionID, err)
	}
	return nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var (
			tx       domain.Transaction
			metadata []byte
		)
		if err := rows.Scan(
			&tx.TransactionID,
			&tx.UserID,
			&tx.Amount,
			&tx.CurrencyCode,
			&tx.Status,
			&tx.ExternalRef,
			&metadata,
			&tx.CreatedAt,
			&tx.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for transaction %s: %w", tx.TransactionID, err)
			}
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating transaction rows: %w", err)
	}
	return transactions, nil
}
