package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ncastellanos/till-service/internal/application/use_cases"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/response"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type PaymentHandler struct {
	payments *use_cases.PaymentUseCase
	log      *logger.Logger
}

func NewPaymentHandler(payments *use_cases.PaymentUseCase, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		log:      log,
	}
}

type processPaymentRequest struct {
	Method    string `json:"method"`
	CompanyID string `json:"company_id"`
}

type sessionView struct {
	Step         string `json:"step"`
	Provider     string `json:"provider"`
	SaleID       string `json:"sale_id,omitempty"`
	QRPayload    string `json:"qr_payload,omitempty"`
	RedirectForm string `json:"redirect_form,omitempty"`
	Message      string `json:"message,omitempty"`
}

type paymentResultView struct {
	SaleID        string       `json:"sale_id,omitempty"`
	QueuedOffline bool         `json:"queued_offline"`
	Session       *sessionView `json:"session,omitempty"`
}

func sessionViewFrom(session *pos.PaymentSession) *sessionView {
	if session == nil {
		return nil
	}

	view := &sessionView{
		Step:      string(session.Step),
		Provider:  string(session.Provider),
		SaleID:    session.SaleID,
		QRPayload: session.QRPayload,
		Message:   session.Message,
	}
	if session.Redirect != nil {
		view.RedirectForm = session.Redirect.FormHTML()
	}
	return view
}

func (h *PaymentHandler) HandleProcessPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	method := pos.PaymentMethod(req.Method)
	result, err := h.payments.ProcessPayment(r.Context(), method, req.CompanyID)
	if err != nil {
		h.log.Error("Payment failed", "error", err.Error(), "method", req.Method)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, paymentResultView{
		SaleID:        result.SaleID,
		QueuedOffline: result.QueuedOffline,
		Session:       sessionViewFrom(result.Session),
	})
}

func (h *PaymentHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := h.payments.Session()
	if !ok {
		response.WriteError(w, http.StatusNotFound, response.StatusNotFound, "No active payment session")
		return
	}

	response.WriteSuccess(w, sessionViewFrom(session))
}

// HandleCloseModal never fails: closing during PROCESSING is silently
// ignored, closing during WAITING_CONFIRMATION stops the poller.
func (h *PaymentHandler) HandleCloseModal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	h.payments.CloseModal()

	session, _ := h.payments.Session()
	response.WriteSuccess(w, sessionViewFrom(session))
}

func (h *PaymentHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.payments.RetrySelection(); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	session, _ := h.payments.Session()
	response.WriteSuccess(w, sessionViewFrom(session))
}
