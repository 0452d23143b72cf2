package use_cases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/pkg/clock"
)

type paymentFixture struct {
	uc     *PaymentUseCase
	api    *fakeAPI
	webpay *fakeWebpay
	qr     *fakeQR
	queue  *fakeQueue
	recon  *fakeRecon
	conn   *fakeConn
	cart   *pos.Cart
	shifts *ShiftUseCase
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	api := &fakeAPI{}
	queue := &fakeQueue{}
	recon := &fakeRecon{}
	conn := &fakeConn{}
	store := &fakeSessionStore{}
	cart := pos.NewCart()
	log := testLogger()

	shifts := NewShiftUseCase(api, store, conn, cart, log)
	require.NoError(t, shifts.ResumeShift(context.Background(), &pos.Shift{
		ID:         "shift-1",
		RegisterID: "reg-1",
		Status:     pos.ShiftStatusOpen,
	}))

	webpay := &fakeWebpay{}
	qr := &fakeQR{}

	cfg := PaymentConfig{
		VATRate:             decimal.RequireFromString("0.19"),
		GenericCompanyID:    "generic-co",
		ReturnURL:           "https://till.local/payment/return",
		PollInterval:        5 * time.Millisecond,
		PollTimeout:         200 * time.Millisecond,
		SuccessDisplayDelay: 10 * time.Millisecond,
	}

	uc := NewPaymentUseCase(api, webpay, qr, queue, recon, conn, shifts, cart,
		clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)), log, cfg)

	cart.AddItem(pos.CartItem{ProductID: "p1", Name: "coffee", Price: decimal.RequireFromString("1190"), Quantity: 1})

	return &paymentFixture{
		uc:     uc,
		api:    api,
		webpay: webpay,
		qr:     qr,
		queue:  queue,
		recon:  recon,
		conn:   conn,
		cart:   cart,
		shifts: shifts,
	}
}

func TestProcessPayment_CashSuccess(t *testing.T) {
	f := newPaymentFixture(t)

	result, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	require.NoError(t, err)

	assert.Equal(t, "sale-1", result.SaleID)
	assert.False(t, result.QueuedOffline)
	assert.True(t, f.cart.IsEmpty())

	_, active := f.uc.Session()
	assert.False(t, active, "session should be discarded after a completed cash sale")

	created := f.api.created()
	require.Len(t, created, 1)
	assert.Equal(t, "generic-co", created[0].CompanyID)
	assert.Equal(t, pos.SaleStatusDelivered, created[0].Status)
	assert.True(t, created[0].Net.Equal(decimal.RequireFromString("1000")))
	assert.True(t, created[0].VAT.Equal(decimal.RequireFromString("190")))
}

func TestProcessPayment_CashOfflineFallsBackToQueue(t *testing.T) {
	f := newPaymentFixture(t)
	f.api.createSaleFn = func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	f.conn.probeResult = false

	result, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	require.NoError(t, err)

	assert.True(t, result.QueuedOffline)
	assert.True(t, f.cart.IsEmpty())
	assert.GreaterOrEqual(t, f.conn.reportedFailures(), 1)

	pending, err := f.queue.GetPendingSales(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEmpty(t, pending[0].TempID)
	assert.Equal(t, pos.SaleStatusDelivered, pending[0].Sale.Status)
	assert.Equal(t, 0, pending[0].RetryCount)
}

func TestProcessPayment_CashServerErrorWhileReachableIsSurfaced(t *testing.T) {
	f := newPaymentFixture(t)
	cause := errors.New("internal server error")
	f.api.createSaleFn = func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
		return nil, cause
	}
	f.conn.probeResult = true

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	require.Error(t, err)

	count, _ := f.queue.CountPendingSales(context.Background())
	assert.Equal(t, 0, count, "reachable server errors must not be queued")
	assert.False(t, f.cart.IsEmpty(), "cart stays intact on a surfaced error")

	session, active := f.uc.Session()
	require.True(t, active)
	assert.Equal(t, pos.StepError, session.Step)
}

func TestProcessPayment_RemoteRejectionNeverQueued(t *testing.T) {
	f := newPaymentFixture(t)
	f.api.createSaleFn = func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
		return nil, &domainErrors.RemoteRejection{Status: 422, Message: "shift closed remotely"}
	}
	// Offline by every signal: the rejection must still win over the queue.
	f.conn.probeResult = false
	f.conn.offline = true

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	require.Error(t, err)

	var rejection *domainErrors.RemoteRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, 422, rejection.Status)

	count, _ := f.queue.CountPendingSales(context.Background())
	assert.Equal(t, 0, count)
}

func TestProcessPayment_Validation(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentMethod("BARTER"), "")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidPaymentMethod)

	f.cart.Clear()
	_, err = f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	assert.ErrorIs(t, err, domainErrors.ErrEmptyCart)
}

func TestProcessPayment_NoBillingCompany(t *testing.T) {
	f := newPaymentFixture(t)
	f.uc.cfg.GenericCompanyID = ""

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	assert.ErrorIs(t, err, domainErrors.ErrNoBillingCompany)
}

func TestProcessPayment_RejectedWhileAnotherAttemptInFlight(t *testing.T) {
	f := newPaymentFixture(t)

	f.uc.mu.Lock()
	f.uc.session = &pos.PaymentSession{Step: pos.StepProcessing}
	f.uc.mu.Unlock()

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentCash, "")
	assert.ErrorIs(t, err, domainErrors.ErrPaymentInProgress)
}

func TestProcessPayment_WebpayConfirmationFlow(t *testing.T) {
	f := newPaymentFixture(t)

	polls := 0
	f.api.getSaleFn = func(ctx context.Context, id string) (*pos.SaleRecord, error) {
		polls++
		if polls < 3 {
			return &pos.SaleRecord{ID: id, PaymentStatus: pos.PaymentStatusPending}, nil
		}
		return &pos.SaleRecord{ID: id, PaymentStatus: pos.PaymentStatusPaid}, nil
	}

	result, err := f.uc.ProcessPayment(context.Background(), pos.PaymentWebpay, "company-7")
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, pos.StepWaitingConfirmation, result.Session.Step)
	assert.Equal(t, pos.ProviderWebpay, result.Session.Provider)
	require.NotNil(t, result.Session.Redirect)
	assert.Contains(t, result.Session.Redirect.FormHTML(), "token_ws")

	created := f.api.created()
	require.Len(t, created, 1)
	assert.Equal(t, "company-7", created[0].CompanyID)
	assert.Equal(t, pos.SaleStatusPendingPayment, created[0].Status)

	require.Eventually(t, func() bool {
		return f.cart.IsEmpty()
	}, time.Second, 5*time.Millisecond, "cart should clear once the gateway confirms")

	require.Eventually(t, func() bool {
		_, active := f.uc.Session()
		return !active
	}, time.Second, 5*time.Millisecond, "session should close after the success display delay")
}

func TestProcessPayment_MercadoPagoPollTimeout(t *testing.T) {
	f := newPaymentFixture(t)
	f.uc.cfg.PollTimeout = 30 * time.Millisecond

	result, err := f.uc.ProcessPayment(context.Background(), pos.PaymentMercadoPago, "")
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, pos.StepWaitingConfirmation, result.Session.Step)
	assert.NotEmpty(t, result.Session.QRPayload)

	require.Eventually(t, func() bool {
		reasons := f.recon.reasons()
		for _, r := range reasons {
			if r == pos.ReconReasonConfirmationTimeout {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// The remote payment may still land; the session stays open for the
	// cashier to dismiss.
	session, active := f.uc.Session()
	require.True(t, active)
	assert.Equal(t, pos.StepWaitingConfirmation, session.Step)
	assert.False(t, f.cart.IsEmpty())
}

func TestProcessPayment_GatewayInitFailureGoesToReconciliation(t *testing.T) {
	f := newPaymentFixture(t)
	f.webpay.err = errors.New("gateway unavailable")

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentWebpay, "")
	assert.ErrorIs(t, err, domainErrors.ErrGatewayInitFailed)

	reasons := f.recon.reasons()
	require.Len(t, reasons, 1)
	assert.Equal(t, pos.ReconReasonGatewayInitFailed, reasons[0])

	count, _ := f.queue.CountPendingSales(context.Background())
	assert.Equal(t, 0, count, "a sale that exists remotely must never enter the offline queue")

	session, active := f.uc.Session()
	require.True(t, active)
	assert.Equal(t, pos.StepError, session.Step)

	require.NoError(t, f.uc.RetrySelection())
	session, _ = f.uc.Session()
	assert.Equal(t, pos.StepSelect, session.Step)
}

func TestCloseModal_IgnoredDuringProcessing(t *testing.T) {
	f := newPaymentFixture(t)

	f.uc.mu.Lock()
	f.uc.session = &pos.PaymentSession{Step: pos.StepProcessing}
	f.uc.mu.Unlock()

	f.uc.CloseModal()

	session, active := f.uc.Session()
	require.True(t, active)
	assert.Equal(t, pos.StepProcessing, session.Step)
}

func TestCloseModal_StopsPollingDuringWaitingConfirmation(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.uc.ProcessPayment(context.Background(), pos.PaymentMercadoPago, "")
	require.NoError(t, err)

	f.uc.CloseModal()

	_, active := f.uc.Session()
	assert.False(t, active)

	f.uc.mu.Lock()
	assert.Nil(t, f.uc.poll)
	f.uc.mu.Unlock()
}

func TestCloseModal_DiscardsIdleSession(t *testing.T) {
	f := newPaymentFixture(t)

	f.uc.mu.Lock()
	f.uc.session = &pos.PaymentSession{Step: pos.StepError, Message: "declined"}
	f.uc.mu.Unlock()

	f.uc.CloseModal()

	_, active := f.uc.Session()
	assert.False(t, active)
}

func TestRetrySelection_NoSession(t *testing.T) {
	f := newPaymentFixture(t)

	assert.ErrorIs(t, f.uc.RetrySelection(), domainErrors.ErrNoPaymentSession)
}
