package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ncastellanos/till-service/internal/domain/pos"
)

// ReconciliationRepository keeps the append-only log of remote pending sales
// the till could not resolve (failed gateway initiation, confirmation
// timeout). Read by the back office, never pruned by the till.
type ReconciliationRepository struct {
	db *sql.DB
}

func NewReconciliationRepository(conn *Connection) *ReconciliationRepository {
	return &ReconciliationRepository{
		db: conn.GetDB(),
	}
}

func (r *ReconciliationRepository) Append(ctx context.Context, saleID, reason string) error {
	query := `
		INSERT INTO reconciliation_log (sale_id, reason, created_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, saleID, reason, time.Now().UTC())
	return err
}

func (r *ReconciliationRepository) List(ctx context.Context) ([]pos.ReconciliationEntry, error) {
	query := `
		SELECT sale_id, reason, created_at
		FROM reconciliation_log
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []pos.ReconciliationEntry
	for rows.Next() {
		var e pos.ReconciliationEntry
		if err := rows.Scan(&e.SaleID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
