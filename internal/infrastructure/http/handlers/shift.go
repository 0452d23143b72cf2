package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/application/use_cases"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/response"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type ShiftHandler struct {
	shifts *use_cases.ShiftUseCase
	log    *logger.Logger
}

func NewShiftHandler(shifts *use_cases.ShiftUseCase, log *logger.Logger) *ShiftHandler {
	return &ShiftHandler{
		shifts: shifts,
		log:    log,
	}
}

type shiftView struct {
	ID          string  `json:"id"`
	RegisterID  string  `json:"register_id"`
	OpeningCash string  `json:"opening_cash"`
	ClosingCash *string `json:"closing_cash,omitempty"`
	Status      string  `json:"status"`
	OpenedAt    string  `json:"opened_at"`
	ClosedAt    *string `json:"closed_at,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Degraded    bool    `json:"degraded"`
}

func (h *ShiftHandler) shiftView(shift *pos.Shift, degraded bool) shiftView {
	view := shiftView{
		ID:          shift.ID,
		RegisterID:  shift.RegisterID,
		OpeningCash: shift.OpeningCash.String(),
		Status:      string(shift.Status),
		OpenedAt:    shift.OpenedAt.Format(time.RFC3339),
		Notes:       shift.Notes,
		Degraded:    degraded,
	}
	if shift.ClosingCash != nil {
		s := shift.ClosingCash.String()
		view.ClosingCash = &s
	}
	if shift.ClosedAt != nil {
		s := shift.ClosedAt.Format(time.RFC3339)
		view.ClosedAt = &s
	}
	return view
}

type openShiftRequest struct {
	OpeningCash string `json:"opening_cash"`
}

func (h *ShiftHandler) HandleOpenShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req openShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	openingCash, err := decimal.NewFromString(req.OpeningCash)
	if err != nil || openingCash.IsNegative() {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"opening_cash": "opening_cash must be a non-negative decimal",
		})
		return
	}

	shift, err := h.shifts.OpenShift(r.Context(), openingCash)
	if err != nil {
		h.log.Error("Open shift failed", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, h.shiftView(shift, false))
}

type closeShiftRequest struct {
	ClosingCash string `json:"closing_cash"`
	Notes       string `json:"notes"`
}

func (h *ShiftHandler) HandleCloseShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req closeShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	closingCash, err := decimal.NewFromString(req.ClosingCash)
	if err != nil || closingCash.IsNegative() {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"closing_cash": "closing_cash must be a non-negative decimal",
		})
		return
	}

	shift, err := h.shifts.CloseShift(r.Context(), closingCash, req.Notes)
	if err != nil {
		h.log.Error("Close shift failed", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, h.shiftView(shift, false))
}

type refreshShiftRequest struct {
	ShiftID string `json:"shift_id"`
}

func (h *ShiftHandler) HandleRefreshShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	if req.ShiftID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"shift_id": "shift_id is required",
		})
		return
	}

	shift, err := h.shifts.RefreshShift(r.Context(), req.ShiftID)
	if err != nil {
		h.log.Warn("Shift refresh failed", "error", err.Error(), "shift_id", req.ShiftID)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, h.shiftView(shift, h.shifts.Degraded()))
}

type resumeShiftRequest struct {
	ID          string `json:"id"`
	RegisterID  string `json:"register_id"`
	OpeningCash string `json:"opening_cash"`
	OpenedAt    string `json:"opened_at"`
}

func (h *ShiftHandler) HandleResumeShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req resumeShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	openingCash, err := decimal.NewFromString(req.OpeningCash)
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"opening_cash": "opening_cash must be a decimal",
		})
		return
	}

	openedAt, err := time.Parse(time.RFC3339, req.OpenedAt)
	if err != nil {
		openedAt = time.Now().UTC()
	}

	shift, err := pos.NewShift(req.ID, req.RegisterID, openingCash, openedAt)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, err.Error())
		return
	}

	if err := h.shifts.ResumeShift(r.Context(), shift); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, h.shiftView(shift, false))
}

func (h *ShiftHandler) HandleGetShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	shift, ok := h.shifts.ActiveShift()
	if !ok {
		response.WriteError(w, http.StatusNotFound, response.StatusNotFound, "No open shift")
		return
	}

	response.WriteSuccess(w, h.shiftView(shift, h.shifts.Degraded()))
}

type selectRegisterRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *ShiftHandler) HandleSelectRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req selectRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	register := &pos.CashRegister{
		ID:       req.ID,
		Name:     req.Name,
		Location: req.Location,
	}

	if err := h.shifts.SelectRegister(r.Context(), register); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, register)
}

func (h *ShiftHandler) HandleGetRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	register, ok := h.shifts.Register()
	if !ok {
		response.WriteError(w, http.StatusNotFound, response.StatusNotFound, "No register selected")
		return
	}

	response.WriteSuccess(w, register)
}
