package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/domain/pos"
)

// WebpayGateway initiates a bank-redirect payment: the returned token and URL
// feed an auto-submitted form post in a new browsing context.
type WebpayGateway interface {
	InitTransaction(ctx context.Context, saleID string, amount decimal.Decimal, returnURL string) (*pos.WebpayRedirect, error)
}

// QRGateway initiates a QR payment and returns the scannable payload.
type QRGateway interface {
	CreateQR(ctx context.Context, saleID string, amount decimal.Decimal, description string) (string, error)
}
