package client

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

// WebpayClient initiates bank-redirect transactions through the suite API's
// gateway endpoint. The returned token is one-time and must travel to the
// gateway as form data.
type WebpayClient struct {
	api *APIClient
	log *logger.Logger
}

func NewWebpayClient(baseURL string, timeout time.Duration, log *logger.Logger) *WebpayClient {
	return &WebpayClient{
		api: NewAPIClient(baseURL, timeout, log),
		log: log,
	}
}

type webpayInitRequest struct {
	SaleID    string `json:"sale_id"`
	Amount    string `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type webpayInitResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func (c *WebpayClient) InitTransaction(ctx context.Context, saleID string, amount decimal.Decimal, returnURL string) (*pos.WebpayRedirect, error) {
	req := webpayInitRequest{
		SaleID:    saleID,
		Amount:    amount.String(),
		ReturnURL: returnURL,
	}

	var resp webpayInitResponse
	if err := c.api.do(ctx, http.MethodPost, "/api/v1/payments/webpay/init", req, &resp); err != nil {
		return nil, err
	}

	c.log.Info("Webpay transaction initiated", "sale_id", saleID, "url", resp.URL)

	return &pos.WebpayRedirect{
		Token: resp.Token,
		URL:   resp.URL,
	}, nil
}
