package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/domain/pos"
)

// SalesAPI is the remote business-suite API consumed by the till. The
// implementation is a black box; only the request/response contracts matter
// here.
type SalesAPI interface {
	CreateSale(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error)
	GetSale(ctx context.Context, id string) (*pos.SaleRecord, error)

	OpenShift(ctx context.Context, registerID string, openingCash decimal.Decimal) (*pos.Shift, error)
	CloseShift(ctx context.Context, shiftID string, closingCash decimal.Decimal, notes string) (*pos.Shift, error)
	GetShift(ctx context.Context, id string) (*pos.Shift, error)

	Ping(ctx context.Context) error
}
