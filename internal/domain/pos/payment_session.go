package pos

import (
	"fmt"
	"html"
)

type PaymentStep string

const (
	StepSelect              PaymentStep = "SELECT"
	StepProcessing          PaymentStep = "PROCESSING"
	StepWaitingConfirmation PaymentStep = "WAITING_CONFIRMATION"
	StepSuccess             PaymentStep = "SUCCESS"
	StepError               PaymentStep = "ERROR"
)

type GatewayProvider string

const (
	ProviderNone        GatewayProvider = "NONE"
	ProviderWebpay      GatewayProvider = "WEBPAY"
	ProviderMercadoPago GatewayProvider = "MERCADOPAGO"
)

// WebpayRedirect is the one-time token handoff for a bank-redirect payment.
// The token must travel as form data, so the UI gets an auto-submitted form
// post rather than a plain link.
type WebpayRedirect struct {
	Token string
	URL   string
}

// FormHTML renders the self-submitting form the UI opens in a new browsing
// context.
func (r WebpayRedirect) FormHTML() string {
	return fmt.Sprintf(
		`<form id="webpay-redirect" method="POST" action=%q target="_blank">`+
			`<input type="hidden" name="token_ws" value=%q/></form>`+
			`<script>document.getElementById("webpay-redirect").submit();</script>`,
		html.EscapeString(r.URL), html.EscapeString(r.Token))
}

// PaymentSession tracks one checkout attempt through the payment flow.
// Transitions only move forward; the single backward edge is ERROR -> SELECT
// on explicit user retry. Exists only in memory and is discarded on modal
// close or terminal state.
type PaymentSession struct {
	Step      PaymentStep
	Provider  GatewayProvider
	SaleID    string
	QRPayload string
	Redirect  *WebpayRedirect
	Message   string
}

func NewPaymentSession() *PaymentSession {
	return &PaymentSession{
		Step:     StepSelect,
		Provider: ProviderNone,
	}
}

func (s *PaymentSession) BeginProcessing() error {
	if s.Step != StepSelect {
		return fmt.Errorf("cannot begin processing from step %s", s.Step)
	}
	s.Step = StepProcessing
	return nil
}

func (s *PaymentSession) AwaitConfirmation(provider GatewayProvider, saleID string) error {
	if s.Step != StepProcessing {
		return fmt.Errorf("cannot await confirmation from step %s", s.Step)
	}
	s.Step = StepWaitingConfirmation
	s.Provider = provider
	s.SaleID = saleID
	return nil
}

func (s *PaymentSession) Complete() error {
	if s.Step != StepProcessing && s.Step != StepWaitingConfirmation {
		return fmt.Errorf("cannot complete from step %s", s.Step)
	}
	s.Step = StepSuccess
	return nil
}

func (s *PaymentSession) Fail(message string) error {
	if s.Step == StepSuccess || s.Step == StepError {
		return fmt.Errorf("cannot fail from terminal step %s", s.Step)
	}
	s.Step = StepError
	s.Message = message
	return nil
}

// Retry returns the session to method selection. Only valid from ERROR.
func (s *PaymentSession) Retry() error {
	if s.Step != StepError {
		return fmt.Errorf("cannot retry from step %s", s.Step)
	}
	s.Step = StepSelect
	s.Provider = ProviderNone
	s.SaleID = ""
	s.QRPayload = ""
	s.Redirect = nil
	s.Message = ""
	return nil
}

func (s *PaymentSession) Terminal() bool {
	return s.Step == StepSuccess || s.Step == StepError
}
