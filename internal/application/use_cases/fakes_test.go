package use_cases

import (
	"context"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLoggerWithOutput(io.Discard)
}

type fakeAPI struct {
	mu sync.Mutex

	createSaleFn func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error)
	getSaleFn    func(ctx context.Context, id string) (*pos.SaleRecord, error)
	openShiftFn  func(ctx context.Context, registerID string, openingCash decimal.Decimal) (*pos.Shift, error)
	closeShiftFn func(ctx context.Context, shiftID string, closingCash decimal.Decimal, notes string) (*pos.Shift, error)
	getShiftFn   func(ctx context.Context, id string) (*pos.Shift, error)
	pingErr      error

	createdSales []*pos.SalePayload
}

func (f *fakeAPI) CreateSale(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
	f.mu.Lock()
	copied := *payload
	f.createdSales = append(f.createdSales, &copied)
	fn := f.createSaleFn
	f.mu.Unlock()

	if fn == nil {
		return &pos.SaleRecord{ID: "sale-1", Status: payload.Status}, nil
	}
	return fn(ctx, payload)
}

func (f *fakeAPI) GetSale(ctx context.Context, id string) (*pos.SaleRecord, error) {
	f.mu.Lock()
	fn := f.getSaleFn
	f.mu.Unlock()

	if fn == nil {
		return &pos.SaleRecord{ID: id, PaymentStatus: pos.PaymentStatusPending}, nil
	}
	return fn(ctx, id)
}

func (f *fakeAPI) OpenShift(ctx context.Context, registerID string, openingCash decimal.Decimal) (*pos.Shift, error) {
	if f.openShiftFn == nil {
		return &pos.Shift{ID: "shift-1", RegisterID: registerID, OpeningCash: openingCash, Status: pos.ShiftStatusOpen}, nil
	}
	return f.openShiftFn(ctx, registerID, openingCash)
}

func (f *fakeAPI) CloseShift(ctx context.Context, shiftID string, closingCash decimal.Decimal, notes string) (*pos.Shift, error) {
	if f.closeShiftFn == nil {
		closed := &pos.Shift{ID: shiftID, Status: pos.ShiftStatusClosed, ClosingCash: &closingCash, Notes: notes}
		return closed, nil
	}
	return f.closeShiftFn(ctx, shiftID, closingCash, notes)
}

func (f *fakeAPI) GetShift(ctx context.Context, id string) (*pos.Shift, error) {
	if f.getShiftFn == nil {
		return &pos.Shift{ID: id, Status: pos.ShiftStatusOpen}, nil
	}
	return f.getShiftFn(ctx, id)
}

func (f *fakeAPI) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeAPI) created() []*pos.SalePayload {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*pos.SalePayload, len(f.createdSales))
	copy(out, f.createdSales)
	return out
}

type fakeQueue struct {
	mu    sync.Mutex
	items []*pos.OfflineSale

	saveErr   error
	removeErr error
}

func (f *fakeQueue) SavePendingSale(ctx context.Context, sale *pos.OfflineSale) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *sale
	f.items = append(f.items, &copied)
	return nil
}

func (f *fakeQueue) GetPendingSales(ctx context.Context) ([]*pos.OfflineSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*pos.OfflineSale, 0, len(f.items))
	for _, item := range f.items {
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeQueue) RemovePendingSale(ctx context.Context, tempID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, item := range f.items {
		if item.TempID == tempID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeQueue) IncrementRetryCount(ctx context.Context, tempID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if item.TempID == tempID {
			item.RetryCount++
			return nil
		}
	}
	return nil
}

func (f *fakeQueue) CountPendingSales(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.items), nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	register *pos.CashRegister
	snapshot *pos.Shift

	saveSnapshotErr error
}

func (f *fakeSessionStore) SaveRegister(ctx context.Context, register *pos.CashRegister) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *register
	f.register = &copied
	return nil
}

func (f *fakeSessionStore) GetRegister(ctx context.Context) (*pos.CashRegister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.register == nil {
		return nil, nil
	}
	copied := *f.register
	return &copied, nil
}

func (f *fakeSessionStore) SaveShiftSnapshot(ctx context.Context, shift *pos.Shift) error {
	if f.saveSnapshotErr != nil {
		return f.saveSnapshotErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *shift
	f.snapshot = &copied
	return nil
}

func (f *fakeSessionStore) GetShiftSnapshot(ctx context.Context) (*pos.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snapshot == nil {
		return nil, nil
	}
	copied := *f.snapshot
	return &copied, nil
}

func (f *fakeSessionStore) ClearShiftSnapshot(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snapshot = nil
	return nil
}

type fakeRecon struct {
	mu      sync.Mutex
	entries []pos.ReconciliationEntry
}

func (f *fakeRecon) Append(ctx context.Context, saleID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, pos.ReconciliationEntry{SaleID: saleID, Reason: reason})
	return nil
}

func (f *fakeRecon) List(ctx context.Context) ([]pos.ReconciliationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]pos.ReconciliationEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeRecon) reasons() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Reason)
	}
	return out
}

type fakeConn struct {
	mu          sync.Mutex
	offline     bool
	probeResult bool
	failures    int

	// pinOnline keeps Offline() false even after reported failures, for
	// exercising reachable-but-failing paths.
	pinOnline bool
}

func (f *fakeConn) Offline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.offline
}

func (f *fakeConn) Probe(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.probeResult
}

func (f *fakeConn) ReportFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures++
	if !f.pinOnline {
		f.offline = true
	}
}

func (f *fakeConn) reportedFailures() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failures
}

type fakeWebpay struct {
	redirect *pos.WebpayRedirect
	err      error
}

func (f *fakeWebpay) InitTransaction(ctx context.Context, saleID string, amount decimal.Decimal, returnURL string) (*pos.WebpayRedirect, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.redirect != nil {
		return f.redirect, nil
	}
	return &pos.WebpayRedirect{Token: "tok-" + saleID, URL: "https://webpay.example/init"}, nil
}

type fakeQR struct {
	payload string
	err     error
}

func (f *fakeQR) CreateQR(ctx context.Context, saleID string, amount decimal.Decimal, description string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.payload != "" {
		return f.payload, nil
	}
	return "qr-" + saleID, nil
}
