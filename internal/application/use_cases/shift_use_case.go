package use_cases

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/application/ports"
	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

// ShiftUseCase owns the cash-register shift lifecycle: NONE -> OPEN ->
// CLOSED. The active shift is mirrored into the session store so a restart
// or outage recovers it without a server round trip. "At most one OPEN shift
// per register" is enforced remotely; this component only refuses to
// fabricate a second one locally.
type ShiftUseCase struct {
	api   ports.SalesAPI
	store ports.SessionStore
	conn  ports.Connectivity
	cart  *pos.Cart
	log   *logger.Logger

	mu       sync.Mutex
	register *pos.CashRegister
	shift    *pos.Shift
	degraded bool
}

func NewShiftUseCase(
	api ports.SalesAPI,
	store ports.SessionStore,
	conn ports.Connectivity,
	cart *pos.Cart,
	log *logger.Logger,
) *ShiftUseCase {
	return &ShiftUseCase{
		api:   api,
		store: store,
		conn:  conn,
		cart:  cart,
		log:   log,
	}
}

// Restore loads the cached register and shift snapshot at startup. Missing
// state is not an error; the till simply starts unselected.
func (uc *ShiftUseCase) Restore(ctx context.Context) error {
	register, err := uc.store.GetRegister(ctx)
	if err != nil {
		return err
	}

	snapshot, err := uc.store.GetShiftSnapshot(ctx)
	if err != nil {
		return err
	}

	uc.mu.Lock()
	uc.register = register
	if snapshot != nil && snapshot.IsOpen() {
		uc.shift = snapshot
	}
	uc.mu.Unlock()

	if snapshot != nil && snapshot.IsOpen() {
		uc.log.Info("Restored shift snapshot", "shift_id", snapshot.ID, "register_id", snapshot.RegisterID)
	}

	return nil
}

func (uc *ShiftUseCase) SelectRegister(ctx context.Context, register *pos.CashRegister) error {
	if register == nil || register.ID == "" {
		return domainErrors.ErrRegisterNotFound
	}

	if err := uc.store.SaveRegister(ctx, register); err != nil {
		return err
	}

	uc.mu.Lock()
	uc.register = register
	uc.mu.Unlock()

	uc.log.Info("Register selected", "register_id", register.ID, "name", register.Name)
	return nil
}

func (uc *ShiftUseCase) Register() (*pos.CashRegister, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.register == nil {
		return nil, false
	}
	r := *uc.register
	return &r, true
}

// ActiveShift returns a copy of the current shift, if one is open.
func (uc *ShiftUseCase) ActiveShift() (*pos.Shift, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.shift == nil || !uc.shift.IsOpen() {
		return nil, false
	}
	s := *uc.shift
	return &s, true
}

// Degraded reports whether the session is running from a local snapshot
// because the remote API was unreachable. Surfaced to the cashier.
func (uc *ShiftUseCase) Degraded() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.degraded
}

// OpenShift opens a shift on the selected register. Remote errors while
// online are surfaced loudly, never swallowed.
func (uc *ShiftUseCase) OpenShift(ctx context.Context, openingCash decimal.Decimal) (*pos.Shift, error) {
	uc.mu.Lock()
	register := uc.register
	current := uc.shift
	uc.mu.Unlock()

	if register == nil {
		return nil, domainErrors.ErrNoRegisterSelected
	}

	if current != nil && current.IsOpen() {
		return nil, domainErrors.ErrShiftAlreadyOpen
	}

	shift, err := uc.api.OpenShift(ctx, register.ID, openingCash)
	if err != nil {
		uc.conn.ReportFailure()
		uc.log.Error("Failed to open shift", "error", err, "register_id", register.ID)
		return nil, err
	}

	if err := uc.store.SaveShiftSnapshot(ctx, shift); err != nil {
		uc.log.Warn("Failed to persist shift snapshot", "error", err, "shift_id", shift.ID)
	}

	uc.mu.Lock()
	uc.shift = shift
	uc.degraded = false
	uc.mu.Unlock()

	uc.log.Info("Shift opened", "shift_id", shift.ID, "register_id", register.ID)
	return shift, nil
}

// CloseShift closes the active shift, clears the persisted snapshot and
// empties the cart.
func (uc *ShiftUseCase) CloseShift(ctx context.Context, closingCash decimal.Decimal, notes string) (*pos.Shift, error) {
	uc.mu.Lock()
	current := uc.shift
	uc.mu.Unlock()

	if current == nil || !current.IsOpen() {
		return nil, domainErrors.ErrNoOpenShift
	}

	closed, err := uc.api.CloseShift(ctx, current.ID, closingCash, notes)
	if err != nil {
		uc.conn.ReportFailure()
		uc.log.Error("Failed to close shift", "error", err, "shift_id", current.ID)
		return nil, err
	}

	if err := uc.store.ClearShiftSnapshot(ctx); err != nil {
		uc.log.Warn("Failed to clear shift snapshot", "error", err, "shift_id", current.ID)
	}

	uc.mu.Lock()
	uc.shift = nil
	uc.degraded = false
	uc.mu.Unlock()

	uc.cart.Clear()

	uc.log.Info("Shift closed", "shift_id", closed.ID)
	return closed, nil
}

// RefreshShift re-fetches shift state by id. On fetch failure while offline
// it falls back to the persisted snapshot with the same id and marks the
// session degraded; on failure while apparently online the remote source of
// truth wins and local state is cleared.
func (uc *ShiftUseCase) RefreshShift(ctx context.Context, id string) (*pos.Shift, error) {
	shift, err := uc.api.GetShift(ctx, id)
	if err == nil {
		if err := uc.store.SaveShiftSnapshot(ctx, shift); err != nil {
			uc.log.Warn("Failed to persist shift snapshot", "error", err, "shift_id", shift.ID)
		}

		uc.mu.Lock()
		if shift.IsOpen() {
			uc.shift = shift
		} else {
			uc.shift = nil
		}
		uc.degraded = false
		uc.mu.Unlock()

		return shift, nil
	}

	uc.conn.ReportFailure()

	if uc.conn.Offline() {
		snapshot, storeErr := uc.store.GetShiftSnapshot(ctx)
		if storeErr == nil && snapshot != nil && snapshot.ID == id && snapshot.IsOpen() {
			uc.mu.Lock()
			uc.shift = snapshot
			uc.degraded = true
			uc.mu.Unlock()

			uc.log.Warn("Shift refresh failed offline, using local snapshot", "shift_id", id)
			return snapshot, nil
		}
		return nil, err
	}

	// Reachable but the shift could not be fetched: treat it as invalid.
	if clearErr := uc.store.ClearShiftSnapshot(ctx); clearErr != nil {
		uc.log.Warn("Failed to clear shift snapshot", "error", clearErr, "shift_id", id)
	}

	uc.mu.Lock()
	uc.shift = nil
	uc.degraded = false
	uc.mu.Unlock()

	uc.log.Error("Shift refresh failed while online, clearing local state", "error", err, "shift_id", id)
	return nil, err
}

// ResumeShift adopts a shift obtained out-of-band (shift-recovery screen)
// as the active session.
func (uc *ShiftUseCase) ResumeShift(ctx context.Context, shift *pos.Shift) error {
	if shift == nil || !shift.IsOpen() {
		return domainErrors.ErrNoOpenShift
	}

	if err := uc.store.SaveShiftSnapshot(ctx, shift); err != nil {
		return err
	}

	uc.mu.Lock()
	uc.shift = shift
	uc.degraded = false
	uc.mu.Unlock()

	uc.log.Info("Shift resumed", "shift_id", shift.ID, "register_id", shift.RegisterID)
	return nil
}
