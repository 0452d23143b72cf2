package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrNoRegisterSelected: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "No cash register selected",
	},
	domainErrors.ErrRegisterNotFound: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Cash register not found",
	},
	domainErrors.ErrNoOpenShift: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "No open shift",
	},
	domainErrors.ErrShiftAlreadyOpen: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "A shift is already open on this register",
	},
	domainErrors.ErrShiftNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Shift not found",
	},
	domainErrors.ErrEmptyCart: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Cart is empty",
	},
	domainErrors.ErrNoBillingCompany: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "No billing company available",
	},
	domainErrors.ErrInvalidPaymentMethod: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Invalid payment method",
	},
	domainErrors.ErrPaymentInProgress: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "A payment is already in progress",
	},
	domainErrors.ErrNoPaymentSession: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "No active payment session",
	},
	domainErrors.ErrGatewayInitFailed: {
		HTTPStatus: http.StatusBadGateway,
		Status:     StatusError,
		Message:    "Payment gateway initiation failed",
	},
	domainErrors.ErrSaleNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Sale not found",
	},
	domainErrors.ErrSyncInProgress: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "A sync drain is already in progress",
	},
}

func WriteDomainError(w http.ResponseWriter, err error) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			WriteError(w, mapping.HTTPStatus, mapping.Status, mapping.Message)
			return
		}
	}

	var rejection *domainErrors.RemoteRejection
	if errors.As(err, &rejection) {
		WriteError(w, http.StatusUnprocessableEntity, StatusError, rejection.Error())
		return
	}

	WriteError(w, http.StatusBadGateway, StatusUnavailable, err.Error())
}
