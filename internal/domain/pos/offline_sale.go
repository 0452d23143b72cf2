package pos

import (
	"time"

	"github.com/google/uuid"
)

// OfflineSale is a sale recorded locally because the remote service was
// unreachable at submission time. TempID is the idempotency key: generated
// exactly once, never regenerated across retries of the same logical sale.
// Only RetryCount mutates after creation.
type OfflineSale struct {
	TempID     string
	Sale       SalePayload
	CreatedAt  time.Time
	RetryCount int
}

func NewOfflineSale(sale SalePayload, createdAt time.Time) *OfflineSale {
	return &OfflineSale{
		TempID:    uuid.NewString(),
		Sale:      sale,
		CreatedAt: createdAt,
	}
}
