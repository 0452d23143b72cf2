package pos

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "OPEN"
	ShiftStatusClosed ShiftStatus = "CLOSED"
)

// Shift is a bounded cash-register session bracketed by an opening and a
// closing cash count. At most one shift may be OPEN per register; that rule
// is enforced by the remote API, never fabricated locally.
type Shift struct {
	ID          string
	RegisterID  string
	OpeningCash decimal.Decimal
	Status      ShiftStatus
	OpenedAt    time.Time
	ClosedAt    *time.Time
	ClosingCash *decimal.Decimal
	Notes       string
}

func NewShift(id, registerID string, openingCash decimal.Decimal, openedAt time.Time) (*Shift, error) {
	if id == "" {
		return nil, errors.New("shift id cannot be empty")
	}

	if registerID == "" {
		return nil, errors.New("register id cannot be empty")
	}

	if openingCash.IsNegative() {
		return nil, errors.New("opening cash cannot be negative")
	}

	return &Shift{
		ID:          id,
		RegisterID:  registerID,
		OpeningCash: openingCash,
		Status:      ShiftStatusOpen,
		OpenedAt:    openedAt,
	}, nil
}

func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

func (s *Shift) Close(closingCash decimal.Decimal, notes string, closedAt time.Time) {
	s.Status = ShiftStatusClosed
	s.ClosingCash = &closingCash
	s.Notes = notes
	s.ClosedAt = &closedAt
}
