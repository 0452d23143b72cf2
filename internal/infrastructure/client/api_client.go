package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

// APIClient talks to the remote business-suite API. Transport failures come
// back as wrapped errors; HTTP 4xx responses become RemoteRejection so
// callers can tell a business-rule failure from a dead network.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, log *logger.Logger) *APIClient {
	return &APIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		log:     log,
	}
}

type saleLineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type createSaleRequest struct {
	CompanyID     string        `json:"company_id"`
	ShiftID       string        `json:"shift_id"`
	Items         []saleLineDTO `json:"items"`
	Total         string        `json:"total"`
	Net           string        `json:"net"`
	VAT           string        `json:"vat"`
	PaymentMethod string        `json:"payment_method"`
	Status        string        `json:"status"`
}

type saleResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CreatedAt     string `json:"created_at"`
}

func (c *APIClient) CreateSale(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
	req := createSaleRequest{
		CompanyID:     payload.CompanyID,
		ShiftID:       payload.ShiftID,
		Total:         payload.Gross.String(),
		Net:           payload.Net.String(),
		VAT:           payload.VAT.String(),
		PaymentMethod: string(payload.Method),
		Status:        string(payload.Status),
	}
	for _, line := range payload.Lines {
		req.Items = append(req.Items, saleLineDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price.String(),
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal.String(),
		})
	}

	var resp saleResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sales", req, &resp); err != nil {
		return nil, err
	}

	return saleRecordFromResponse(&resp)
}

func (c *APIClient) GetSale(ctx context.Context, id string) (*pos.SaleRecord, error) {
	var resp saleResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/sales/"+id, nil, &resp); err != nil {
		return nil, err
	}

	return saleRecordFromResponse(&resp)
}

type openShiftRequest struct {
	RegisterID  string `json:"register_id"`
	OpeningCash string `json:"opening_cash"`
}

type closeShiftRequest struct {
	ClosingCash string `json:"closing_cash"`
	Notes       string `json:"notes,omitempty"`
}

type shiftResponse struct {
	ID          string  `json:"id"`
	RegisterID  string  `json:"register_id"`
	OpeningCash string  `json:"opening_cash"`
	ClosingCash *string `json:"closing_cash"`
	Status      string  `json:"status"`
	OpenedAt    string  `json:"opened_at"`
	ClosedAt    *string `json:"closed_at"`
	Notes       string  `json:"notes"`
}

func (c *APIClient) OpenShift(ctx context.Context, registerID string, openingCash decimal.Decimal) (*pos.Shift, error) {
	req := openShiftRequest{
		RegisterID:  registerID,
		OpeningCash: openingCash.String(),
	}

	var resp shiftResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/shifts", req, &resp); err != nil {
		return nil, err
	}

	return shiftFromResponse(&resp)
}

func (c *APIClient) CloseShift(ctx context.Context, shiftID string, closingCash decimal.Decimal, notes string) (*pos.Shift, error) {
	req := closeShiftRequest{
		ClosingCash: closingCash.String(),
		Notes:       notes,
	}

	var resp shiftResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/shifts/"+shiftID+"/close", req, &resp); err != nil {
		return nil, err
	}

	return shiftFromResponse(&resp)
}

func (c *APIClient) GetShift(ctx context.Context, id string) (*pos.Shift, error) {
	var resp shiftResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/shifts/"+id, nil, &resp); err != nil {
		return nil, err
	}

	return shiftFromResponse(&resp)
}

func (c *APIClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

type remoteErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var errBody remoteErrorBody
		message := ""
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &errBody) == nil {
				message = errBody.Message
				if message == "" {
					message = errBody.Error
				}
			}
		}
		return &domainErrors.RemoteRejection{
			Status:  resp.StatusCode,
			Message: message,
		}
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("remote API returned status %d for %s", resp.StatusCode, path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}

func saleRecordFromResponse(resp *saleResponse) (*pos.SaleRecord, error) {
	record := &pos.SaleRecord{
		ID:            resp.ID,
		Status:        pos.SaleStatus(resp.Status),
		PaymentStatus: pos.PaymentStatus(resp.PaymentStatus),
	}

	if resp.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, resp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at in sale response: %w", err)
		}
		record.CreatedAt = createdAt
	}

	return record, nil
}

func shiftFromResponse(resp *shiftResponse) (*pos.Shift, error) {
	openingCash, err := decimal.NewFromString(resp.OpeningCash)
	if err != nil {
		return nil, fmt.Errorf("invalid opening_cash in shift response: %w", err)
	}

	openedAt, err := time.Parse(time.RFC3339, resp.OpenedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid opened_at in shift response: %w", err)
	}

	shift := &pos.Shift{
		ID:          resp.ID,
		RegisterID:  resp.RegisterID,
		OpeningCash: openingCash,
		Status:      pos.ShiftStatus(resp.Status),
		OpenedAt:    openedAt,
		Notes:       resp.Notes,
	}

	if resp.ClosingCash != nil {
		closingCash, err := decimal.NewFromString(*resp.ClosingCash)
		if err != nil {
			return nil, fmt.Errorf("invalid closing_cash in shift response: %w", err)
		}
		shift.ClosingCash = &closingCash
	}

	if resp.ClosedAt != nil {
		closedAt, err := time.Parse(time.RFC3339, *resp.ClosedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid closed_at in shift response: %w", err)
		}
		shift.ClosedAt = &closedAt
	}

	return shift, nil
}
