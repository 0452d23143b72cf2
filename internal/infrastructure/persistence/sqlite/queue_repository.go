package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
)

// QueueRepository is the durable offline sale queue. Draining order follows
// insertion order (rowid); items leave the queue only through explicit
// removal after confirmed remote success.
type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(conn *Connection) *QueueRepository {
	return &QueueRepository{
		db: conn.GetDB(),
	}
}

func (r *QueueRepository) SavePendingSale(ctx context.Context, sale *pos.OfflineSale) error {
	payload, err := json.Marshal(sale.Sale)
	if err != nil {
		return fmt.Errorf("failed to encode sale payload: %w", err)
	}

	query := `
		INSERT INTO pending_sales (temp_id, payload, created_at, retry_count)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, sale.TempID, string(payload), sale.CreatedAt, sale.RetryCount)
	return err
}

func (r *QueueRepository) GetPendingSales(ctx context.Context) ([]*pos.OfflineSale, error) {
	query := `
		SELECT temp_id, payload, created_at, retry_count
		FROM pending_sales
		ORDER BY rowid
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*pos.OfflineSale
	for rows.Next() {
		var (
			s       pos.OfflineSale
			payload string
		)
		if err := rows.Scan(&s.TempID, &payload, &s.CreatedAt, &s.RetryCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &s.Sale); err != nil {
			return nil, fmt.Errorf("failed to decode sale payload %s: %w", s.TempID, err)
		}
		sales = append(sales, &s)
	}

	return sales, rows.Err()
}

func (r *QueueRepository) RemovePendingSale(ctx context.Context, tempID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM pending_sales WHERE temp_id = ?", tempID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrPendingSaleNotFound
	}

	return nil
}

func (r *QueueRepository) IncrementRetryCount(ctx context.Context, tempID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE pending_sales SET retry_count = retry_count + 1 WHERE temp_id = ?", tempID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrPendingSaleNotFound
	}

	return nil
}

func (r *QueueRepository) CountPendingSales(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_sales").Scan(&count)
	return count, err
}
