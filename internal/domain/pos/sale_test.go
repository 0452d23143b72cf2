package pos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vat19 = decimal.RequireFromString("0.19")

func TestNewSalePayload_CashIsDelivered(t *testing.T) {
	payload, err := NewSalePayload("co-1", "shift-1", []CartItem{item("p1", "10000", 1)}, vat19, CashPayment{})
	require.NoError(t, err)

	assert.Equal(t, PaymentCash, payload.Method)
	assert.Equal(t, SaleStatusDelivered, payload.Status)
	assert.True(t, payload.Gross.Equal(decimal.RequireFromString("10000")))
	assert.True(t, payload.Net.Equal(decimal.RequireFromString("8403.36")))
	assert.True(t, payload.VAT.Equal(decimal.RequireFromString("1596.64")))
}

func TestNewSalePayload_GatewayIsPending(t *testing.T) {
	payload, err := NewSalePayload("co-1", "shift-1", []CartItem{item("p1", "500", 2)}, vat19,
		MercadoPagoPayment{Description: "coffee"})
	require.NoError(t, err)

	assert.Equal(t, PaymentMercadoPago, payload.Method)
	assert.Equal(t, SaleStatusPendingPayment, payload.Status)
	assert.True(t, payload.Gross.Equal(decimal.RequireFromString("1000")))
}

func TestNewSalePayload_Validation(t *testing.T) {
	items := []CartItem{item("p1", "100", 1)}

	_, err := NewSalePayload("", "shift-1", items, vat19, CashPayment{})
	assert.Error(t, err)

	_, err = NewSalePayload("co-1", "", items, vat19, CashPayment{})
	assert.Error(t, err)

	_, err = NewSalePayload("co-1", "shift-1", nil, vat19, CashPayment{})
	assert.Error(t, err)

	_, err = NewSalePayload("co-1", "shift-1", items, vat19, nil)
	assert.Error(t, err)
}

func TestPaymentMethod_Synchronous(t *testing.T) {
	assert.True(t, PaymentCash.Synchronous())
	assert.True(t, PaymentCard.Synchronous())
	assert.False(t, PaymentWebpay.Synchronous())
	assert.False(t, PaymentMercadoPago.Synchronous())
}

func TestNewOfflineSale_TempIDIsUniquePerSale(t *testing.T) {
	payload, err := NewSalePayload("co-1", "shift-1", []CartItem{item("p1", "100", 1)}, vat19, CashPayment{})
	require.NoError(t, err)

	now := time.Now().UTC()
	a := NewOfflineSale(*payload, now)
	b := NewOfflineSale(*payload, now)

	assert.NotEmpty(t, a.TempID)
	assert.NotEqual(t, a.TempID, b.TempID)
	assert.Equal(t, 0, a.RetryCount)
	assert.Equal(t, now, a.CreatedAt)
}
