package errors

import (
	"errors"
)

var (
	ErrNoRegisterSelected = errors.New("no cash register selected")
	ErrRegisterNotFound   = errors.New("cash register not found")

	ErrNoOpenShift      = errors.New("no open shift")
	ErrShiftAlreadyOpen = errors.New("a shift is already open on this register")
	ErrShiftNotFound    = errors.New("shift not found")

	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoBillingCompany = errors.New("no billing company available")

	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrPaymentInProgress    = errors.New("a payment is already in progress")
	ErrNoPaymentSession     = errors.New("no active payment session")
	ErrGatewayInitFailed    = errors.New("payment gateway initiation failed")

	ErrSaleNotFound        = errors.New("sale not found")
	ErrPendingSaleNotFound = errors.New("pending sale not found")

	ErrDeviceOnline   = errors.New("device is online, refusing offline fallback")
	ErrSyncInProgress = errors.New("a sync drain is already in progress")
)

// RemoteRejection is a business-rule failure from the remote API, as opposed
// to a transport error. Rejections are always surfaced, never queued offline.
type RemoteRejection struct {
	Status  int
	Message string
}

func (e *RemoteRejection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "remote API rejected the request"
}
