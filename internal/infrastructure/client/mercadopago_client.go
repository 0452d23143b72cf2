package client

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

// MercadoPagoClient initiates QR payments through the suite API's gateway
// endpoint and returns the scannable payload.
type MercadoPagoClient struct {
	api *APIClient
	log *logger.Logger
}

func NewMercadoPagoClient(baseURL string, timeout time.Duration, log *logger.Logger) *MercadoPagoClient {
	return &MercadoPagoClient{
		api: NewAPIClient(baseURL, timeout, log),
		log: log,
	}
}

type qrInitRequest struct {
	SaleID      string `json:"sale_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type qrInitResponse struct {
	QRData string `json:"qr_data"`
}

func (c *MercadoPagoClient) CreateQR(ctx context.Context, saleID string, amount decimal.Decimal, description string) (string, error) {
	req := qrInitRequest{
		SaleID:      saleID,
		Amount:      amount.String(),
		Description: description,
	}

	var resp qrInitResponse
	if err := c.api.do(ctx, http.MethodPost, "/api/v1/payments/mercadopago/qr", req, &resp); err != nil {
		return "", err
	}

	c.log.Info("MercadoPago QR created", "sale_id", saleID)

	return resp.QRData, nil
}
