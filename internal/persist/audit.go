package persist

import (
	"context"
	"fmt"
)

// AuditEntry records one point-balance change for the audit trail.
type AuditEntry struct {
	Tag     string
	Delta   int64
	Balance int64 // balance after the change
	Reason  string
}

// AuditRepo appends point-change entries to the audit log. Entries are
// written in batches during the persistence flush and marked processed
// afterwards, so a crash between flushes can be reconciled against the
// ledger table.
type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append atomically writes a batch of audit entries in a single transaction.
func (r *AuditRepo) Append(ctx context.Context, entries []AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO league_points_audit (clan_tag, delta, balance, reason)
			 VALUES ($1, $2, $3, $4)`,
			e.Tag, e.Delta, e.Balance, e.Reason,
		); err != nil {
			return fmt.Errorf("audit insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all audit entries as processed (called after a
// successful batch flush of the ledger).
func (r *AuditRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE league_points_audit SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
