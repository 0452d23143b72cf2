package use_cases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/application/ports"
	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/monitoring"
	"github.com/ncastellanos/till-service/internal/pkg/clock"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
	"github.com/ncastellanos/till-service/internal/pkg/poller"
)

// PaymentConfig carries the checkout-time knobs: inclusive VAT rate, the
// generic billing company used when none is chosen, the bank-redirect return
// URL and the confirmation polling bounds.
type PaymentConfig struct {
	VATRate             decimal.Decimal
	GenericCompanyID    string
	ReturnURL           string
	PollInterval        time.Duration
	PollTimeout         time.Duration
	SuccessDisplayDelay time.Duration
}

// PaymentResult is what the till UI gets back from a checkout attempt.
type PaymentResult struct {
	Session       *pos.PaymentSession
	SaleID        string
	QueuedOffline bool
}

// PaymentUseCase runs one payment state machine per checkout attempt:
// SELECT -> PROCESSING -> terminal for cash/card, or -> WAITING_CONFIRMATION
// -> SUCCESS|ERROR for gateway methods, with ERROR -> SELECT as the only
// user-driven recovery. Cash and card never hard-fail on a transient network
// error; they fall back to the offline queue instead, because a till must
// never be blocked for in-person payment.
type PaymentUseCase struct {
	api    ports.SalesAPI
	webpay ports.WebpayGateway
	qr     ports.QRGateway
	queue  ports.OfflineQueue
	recon  ports.ReconciliationLog
	conn   ports.Connectivity
	shifts *ShiftUseCase
	cart   *pos.Cart
	clk    clock.Clock
	log    *logger.Logger
	cfg    PaymentConfig

	mu      sync.Mutex
	session *pos.PaymentSession
	poll    *poller.Poller
}

func NewPaymentUseCase(
	api ports.SalesAPI,
	webpay ports.WebpayGateway,
	qr ports.QRGateway,
	queue ports.OfflineQueue,
	recon ports.ReconciliationLog,
	conn ports.Connectivity,
	shifts *ShiftUseCase,
	cart *pos.Cart,
	clk clock.Clock,
	log *logger.Logger,
	cfg PaymentConfig,
) *PaymentUseCase {
	return &PaymentUseCase{
		api:    api,
		webpay: webpay,
		qr:     qr,
		queue:  queue,
		recon:  recon,
		conn:   conn,
		shifts: shifts,
		cart:   cart,
		clk:    clk,
		log:    log,
		cfg:    cfg,
	}
}

// Session returns a copy of the active payment session, if any.
func (uc *PaymentUseCase) Session() (*pos.PaymentSession, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.session == nil {
		return nil, false
	}
	s := *uc.session
	return &s, true
}

// ProcessPayment drives one checkout attempt for the given method. companyID
// may be empty, in which case the configured generic company is billed.
func (uc *PaymentUseCase) ProcessPayment(ctx context.Context, method pos.PaymentMethod, companyID string) (*PaymentResult, error) {
	if !method.Valid() {
		return nil, domainErrors.ErrInvalidPaymentMethod
	}

	company := companyID
	if company == "" {
		company = uc.cfg.GenericCompanyID
	}
	if company == "" {
		return nil, domainErrors.ErrNoBillingCompany
	}

	if uc.cart.IsEmpty() {
		return nil, domainErrors.ErrEmptyCart
	}

	shift, ok := uc.shifts.ActiveShift()
	if !ok {
		return nil, domainErrors.ErrNoOpenShift
	}

	uc.mu.Lock()
	if uc.session != nil && (uc.session.Step == pos.StepProcessing || uc.session.Step == pos.StepWaitingConfirmation) {
		uc.mu.Unlock()
		return nil, domainErrors.ErrPaymentInProgress
	}
	session := uc.session
	if session == nil || session.Terminal() {
		session = pos.NewPaymentSession()
		uc.session = session
	}
	if err := session.BeginProcessing(); err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	uc.mu.Unlock()

	monitoring.PaymentAttemptsTotal.WithLabelValues(string(method)).Inc()

	payload, err := pos.NewSalePayload(company, shift.ID, uc.cart.Items(), uc.cfg.VATRate, detailsFor(method, uc.cfg))
	if err != nil {
		uc.failSession(err.Error())
		return nil, err
	}

	if method.Synchronous() {
		return uc.processSynchronous(ctx, payload)
	}
	return uc.processGateway(ctx, method, payload)
}

// processSynchronous handles cash and card: the sale goes up paid/delivered
// and the attempt never surfaces a transient network error to the cashier.
func (uc *PaymentUseCase) processSynchronous(ctx context.Context, payload *pos.SalePayload) (*PaymentResult, error) {
	record, err := uc.api.CreateSale(ctx, payload)
	if err == nil {
		uc.cart.Clear()
		uc.completeAndDiscard()

		monitoring.PaymentSuccessTotal.WithLabelValues(string(payload.Method)).Inc()
		uc.log.Info("Sale completed", "sale_id", record.ID, "method", payload.Method)
		return &PaymentResult{SaleID: record.ID}, nil
	}

	uc.conn.ReportFailure()
	return uc.handleOfflineFallback(ctx, payload, err)
}

// handleOfflineFallback queues the sale locally when the device is actually
// offline. A remote business-rule rejection, or any failure while the API is
// still reachable, is a real problem and is surfaced instead of queued.
func (uc *PaymentUseCase) handleOfflineFallback(ctx context.Context, payload *pos.SalePayload, cause error) (*PaymentResult, error) {
	var remoteErr *domainErrors.RemoteRejection
	if errors.As(cause, &remoteErr) {
		uc.failSession(cause.Error())
		monitoring.PaymentFailureTotal.WithLabelValues(string(payload.Method), "remote_rejection").Inc()
		return nil, cause
	}

	if uc.conn.Probe(ctx) {
		// Reachable after all: a genuine server error. Queuing would mask it.
		uc.failSession(cause.Error())
		monitoring.PaymentFailureTotal.WithLabelValues(string(payload.Method), "server_error").Inc()
		return nil, cause
	}

	offline := pos.NewOfflineSale(*payload, uc.clk.Now())
	if err := uc.queue.SavePendingSale(ctx, offline); err != nil {
		uc.failSession(err.Error())
		monitoring.PaymentFailureTotal.WithLabelValues(string(payload.Method), "queue_write").Inc()
		return nil, err
	}

	uc.cart.Clear()
	uc.completeAndDiscard()
	uc.updateQueueDepth(ctx)

	uc.log.Warn("Device offline, sale saved locally",
		"temp_id", offline.TempID,
		"method", payload.Method,
		"total", payload.Gross.String(),
	)

	return &PaymentResult{QueuedOffline: true}, nil
}

// processGateway handles Webpay and MercadoPago: the sale goes up as
// pending-payment, the gateway is initiated, and confirmation is polled.
func (uc *PaymentUseCase) processGateway(ctx context.Context, method pos.PaymentMethod, payload *pos.SalePayload) (*PaymentResult, error) {
	record, err := uc.api.CreateSale(ctx, payload)
	if err != nil {
		uc.conn.ReportFailure()
		uc.failSession(err.Error())
		monitoring.PaymentFailureTotal.WithLabelValues(string(method), "sale_creation").Inc()
		return nil, err
	}

	switch method {
	case pos.PaymentWebpay:
		redirect, err := uc.webpay.InitTransaction(ctx, record.ID, payload.Gross, uc.cfg.ReturnURL)
		if err != nil {
			return nil, uc.failGatewayInit(ctx, method, record.ID, err)
		}

		uc.mu.Lock()
		uc.session.Redirect = redirect
		uc.mu.Unlock()
		uc.awaitConfirmation(pos.ProviderWebpay, record.ID)

	case pos.PaymentMercadoPago:
		qrPayload, err := uc.qr.CreateQR(ctx, record.ID, payload.Gross, qrDescription(payload))
		if err != nil {
			return nil, uc.failGatewayInit(ctx, method, record.ID, err)
		}

		uc.mu.Lock()
		uc.session.QRPayload = qrPayload
		uc.mu.Unlock()
		uc.awaitConfirmation(pos.ProviderMercadoPago, record.ID)
	}

	session, _ := uc.Session()
	return &PaymentResult{Session: session, SaleID: record.ID}, nil
}

// failGatewayInit records the orphaned pending sale for back-office
// reconciliation and moves the session to ERROR. The sale already exists
// remotely, so the offline queue must not be used: re-queueing would risk a
// duplicate financial record.
func (uc *PaymentUseCase) failGatewayInit(ctx context.Context, method pos.PaymentMethod, saleID string, cause error) error {
	uc.conn.ReportFailure()

	if err := uc.recon.Append(ctx, saleID, pos.ReconReasonGatewayInitFailed); err != nil {
		uc.log.Error("Failed to record reconciliation entry", "error", err, "sale_id", saleID)
	}

	uc.failSession(cause.Error())
	monitoring.PaymentFailureTotal.WithLabelValues(string(method), "gateway_init").Inc()

	uc.log.Error("Gateway initiation failed with pending sale left remotely",
		"error", cause, "sale_id", saleID, "method", method)
	return domainErrors.ErrGatewayInitFailed
}

func (uc *PaymentUseCase) awaitConfirmation(provider pos.GatewayProvider, saleID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.session.AwaitConfirmation(provider, saleID); err != nil {
		uc.log.Error("Invalid session transition", "error", err, "sale_id", saleID)
		return
	}

	startedAt := uc.clk.Now()
	uc.poll = poller.Start(uc.cfg.PollInterval, uc.cfg.PollTimeout,
		func() { uc.pollOnce(provider, saleID, startedAt) },
		func() { uc.pollTimedOut(saleID) },
	)
}

func (uc *PaymentUseCase) pollOnce(provider pos.GatewayProvider, saleID string, startedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), uc.cfg.PollInterval)
	defer cancel()

	record, err := uc.api.GetSale(ctx, saleID)
	if err != nil {
		uc.conn.ReportFailure()
		uc.log.Debug("Confirmation poll failed", "error", err, "sale_id", saleID)
		return
	}

	if !record.Paid() {
		return
	}

	uc.mu.Lock()
	if uc.session == nil || uc.session.Step != pos.StepWaitingConfirmation {
		uc.mu.Unlock()
		return
	}
	if err := uc.session.Complete(); err != nil {
		uc.mu.Unlock()
		return
	}
	poll := uc.poll
	uc.mu.Unlock()

	if poll != nil {
		poll.Stop()
	}

	uc.cart.Clear()
	monitoring.PaymentSuccessTotal.WithLabelValues(string(methodForProvider(provider))).Inc()
	monitoring.PaymentConfirmationDuration.Observe(uc.clk.Since(startedAt).Seconds())
	uc.log.Info("Gateway payment confirmed", "sale_id", saleID)

	// Keep SUCCESS visible briefly, then close the modal.
	time.AfterFunc(uc.cfg.SuccessDisplayDelay, func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if uc.session != nil && uc.session.Step == pos.StepSuccess {
			uc.session = nil
		}
	})
}

// pollTimedOut stops silently per the till contract: the payment may still
// complete gateway-side, so the sale id goes to the reconciliation log and
// the session stays in WAITING_CONFIRMATION until the cashier closes it.
func (uc *PaymentUseCase) pollTimedOut(saleID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := uc.recon.Append(ctx, saleID, pos.ReconReasonConfirmationTimeout); err != nil {
		uc.log.Error("Failed to record reconciliation entry", "error", err, "sale_id", saleID)
	}

	uc.log.Warn("Confirmation polling timed out", "sale_id", saleID)
}

// CloseModal applies the modal-close rules: a close during PROCESSING is
// ignored (a half-submitted sale must not be abandoned); a close during
// WAITING_CONFIRMATION stops the local poller without canceling the remote
// pending sale. Terminal or idle sessions are simply discarded.
func (uc *PaymentUseCase) CloseModal() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.session == nil {
		return
	}

	switch uc.session.Step {
	case pos.StepProcessing:
		return
	case pos.StepWaitingConfirmation:
		if uc.poll != nil {
			uc.poll.Stop()
			uc.poll = nil
		}
		uc.session = nil
	default:
		uc.session = nil
	}
}

// RetrySelection returns an errored session to method selection.
func (uc *PaymentUseCase) RetrySelection() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.session == nil {
		return domainErrors.ErrNoPaymentSession
	}
	return uc.session.Retry()
}

func (uc *PaymentUseCase) failSession(message string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.session != nil {
		if err := uc.session.Fail(message); err != nil {
			uc.log.Error("Invalid session transition", "error", err)
		}
	}
}

func (uc *PaymentUseCase) completeAndDiscard() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.session != nil {
		if err := uc.session.Complete(); err != nil {
			uc.log.Error("Invalid session transition", "error", err)
		}
		uc.session = nil
	}
}

func (uc *PaymentUseCase) updateQueueDepth(ctx context.Context) {
	count, err := uc.queue.CountPendingSales(ctx)
	if err != nil {
		uc.log.Warn("Failed to count pending sales", "error", err)
		return
	}
	monitoring.SetOfflineQueueDepth(count)
}

func detailsFor(method pos.PaymentMethod, cfg PaymentConfig) pos.PaymentDetails {
	switch method {
	case pos.PaymentCash:
		return pos.CashPayment{}
	case pos.PaymentCard:
		return pos.CardPayment{}
	case pos.PaymentWebpay:
		return pos.WebpayPayment{ReturnURL: cfg.ReturnURL}
	case pos.PaymentMercadoPago:
		return pos.MercadoPagoPayment{Description: "POS sale"}
	}
	return nil
}

func methodForProvider(provider pos.GatewayProvider) pos.PaymentMethod {
	if provider == pos.ProviderMercadoPago {
		return pos.PaymentMercadoPago
	}
	return pos.PaymentWebpay
}

func qrDescription(payload *pos.SalePayload) string {
	if len(payload.Lines) == 1 {
		return payload.Lines[0].Name
	}
	return "POS sale"
}
