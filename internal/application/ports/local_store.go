package ports

import (
	"context"

	"github.com/ncastellanos/till-service/internal/domain/pos"
)

// OfflineQueue is the durable local store of sales awaiting synchronization.
// Items survive restarts and are removed only after confirmed remote success.
type OfflineQueue interface {
	SavePendingSale(ctx context.Context, sale *pos.OfflineSale) error
	// GetPendingSales returns items in insertion order.
	GetPendingSales(ctx context.Context) ([]*pos.OfflineSale, error)
	RemovePendingSale(ctx context.Context, tempID string) error
	IncrementRetryCount(ctx context.Context, tempID string) error
	CountPendingSales(ctx context.Context) (int, error)
}

// SessionStore persists the selected register and the active shift snapshot
// so a restart or outage recovers the session without a server round trip.
type SessionStore interface {
	SaveRegister(ctx context.Context, register *pos.CashRegister) error
	GetRegister(ctx context.Context) (*pos.CashRegister, error)

	SaveShiftSnapshot(ctx context.Context, shift *pos.Shift) error
	GetShiftSnapshot(ctx context.Context) (*pos.Shift, error)
	ClearShiftSnapshot(ctx context.Context) error
}

// ReconciliationLog records remote pending sales the till could not resolve,
// for manual back-office follow-up.
type ReconciliationLog interface {
	Append(ctx context.Context, saleID, reason string) error
	List(ctx context.Context) ([]pos.ReconciliationEntry, error)
}
