package pos

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentCard        PaymentMethod = "CARD"
	PaymentWebpay      PaymentMethod = "WEBPAY"
	PaymentMercadoPago PaymentMethod = "MERCADOPAGO"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentWebpay, PaymentMercadoPago:
		return true
	}
	return false
}

// Synchronous reports whether the method settles in person at the till.
// Synchronous methods may fall back to the offline queue; gateway methods
// never do.
func (m PaymentMethod) Synchronous() bool {
	return m == PaymentCash || m == PaymentCard
}

type SaleStatus string

const (
	// SaleStatusDelivered marks cash/card sales: paid and handed over.
	SaleStatusDelivered SaleStatus = "delivered"
	// SaleStatusPendingPayment marks gateway sales awaiting confirmation.
	SaleStatusPendingPayment SaleStatus = "pending_payment"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentDetails is the per-method variant attached to a sale payload. Each
// variant carries exactly the fields its method needs.
type PaymentDetails interface {
	Method() PaymentMethod
}

type CashPayment struct {
	AmountTendered decimal.Decimal
}

func (CashPayment) Method() PaymentMethod { return PaymentCash }

type CardPayment struct {
	// Last4 comes from the physical terminal receipt, when available.
	Last4 string
}

func (CardPayment) Method() PaymentMethod { return PaymentCard }

type WebpayPayment struct {
	ReturnURL string
}

func (WebpayPayment) Method() PaymentMethod { return PaymentWebpay }

type MercadoPagoPayment struct {
	Description string
}

func (MercadoPagoPayment) Method() PaymentMethod { return PaymentMercadoPago }

type SaleLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SalePayload is the create-sale request body. Cash and card sales go up as
// delivered; gateway sales as pending-payment until confirmed.
type SalePayload struct {
	CompanyID string          `json:"company_id"`
	ShiftID   string          `json:"shift_id"`
	Lines     []SaleLine      `json:"items"`
	Gross     decimal.Decimal `json:"total"`
	Net       decimal.Decimal `json:"net"`
	VAT       decimal.Decimal `json:"vat"`
	Method    PaymentMethod   `json:"payment_method"`
	Status    SaleStatus      `json:"status"`

	Details PaymentDetails `json:"-"`
}

func NewSalePayload(companyID, shiftID string, items []CartItem, vatRate decimal.Decimal, details PaymentDetails) (*SalePayload, error) {
	if companyID == "" {
		return nil, errors.New("company id cannot be empty")
	}

	if shiftID == "" {
		return nil, errors.New("shift id cannot be empty")
	}

	if len(items) == 0 {
		return nil, errors.New("sale must have at least one item")
	}

	if details == nil || !details.Method().Valid() {
		return nil, errors.New("payment details are required")
	}

	lines := make([]SaleLine, 0, len(items))
	gross := decimal.Zero
	for _, item := range items {
		lines = append(lines, SaleLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
		gross = gross.Add(item.Subtotal())
	}

	tax := SplitInclusiveVAT(gross, vatRate)

	status := SaleStatusPendingPayment
	if details.Method().Synchronous() {
		status = SaleStatusDelivered
	}

	return &SalePayload{
		CompanyID: companyID,
		ShiftID:   shiftID,
		Lines:     lines,
		Gross:     tax.Gross,
		Net:       tax.Net,
		VAT:       tax.VAT,
		Method:    details.Method(),
		Status:    status,
		Details:   details,
	}, nil
}

// SaleRecord is the remote API's view of a created sale, polled during
// gateway confirmation.
type SaleRecord struct {
	ID            string
	Status        SaleStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

func (r *SaleRecord) Paid() bool {
	return r.PaymentStatus == PaymentStatusPaid
}
