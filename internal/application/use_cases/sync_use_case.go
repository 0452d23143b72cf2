package use_cases

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ncastellanos/till-service/internal/application/ports"
	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/infrastructure/monitoring"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type SyncReport struct {
	Submitted int
	Failed    int
	Remaining int
}

// SyncUseCase drains the offline queue against the remote API when
// connectivity returns. The drain is sequential and gives each queued sale at
// most one submission attempt per run; failures stay queued for the next
// reconnect. An atomic guard ensures a tempID is never in flight twice.
type SyncUseCase struct {
	api   ports.SalesAPI
	queue ports.OfflineQueue
	log   *logger.Logger

	draining atomic.Bool
}

func NewSyncUseCase(api ports.SalesAPI, queue ports.OfflineQueue, log *logger.Logger) *SyncUseCase {
	return &SyncUseCase{
		api:   api,
		queue: queue,
		log:   log,
	}
}

func (uc *SyncUseCase) SyncPendingSales(ctx context.Context) (SyncReport, error) {
	if !uc.draining.CompareAndSwap(false, true) {
		return SyncReport{}, domainErrors.ErrSyncInProgress
	}
	defer uc.draining.Store(false)

	monitoring.SyncDrainsTotal.Inc()

	pending, err := uc.queue.GetPendingSales(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	var report SyncReport
	for _, offline := range pending {
		// Local-only fields (tempID, createdAt, retryCount) never leave the
		// device; the payload goes up as a normal sale.
		payload := offline.Sale

		record, err := uc.api.CreateSale(ctx, &payload)
		if err != nil {
			report.Failed++
			monitoring.SyncFailedTotal.Inc()
			if incErr := uc.queue.IncrementRetryCount(ctx, offline.TempID); incErr != nil {
				uc.log.Warn("Failed to increment retry count", "error", incErr, "temp_id", offline.TempID)
			}
			uc.log.Warn("Queued sale submission failed, retained for next sync",
				"error", err, "temp_id", offline.TempID, "retry_count", offline.RetryCount+1)
			continue
		}

		if err := uc.queue.RemovePendingSale(ctx, offline.TempID); err != nil {
			// The remote sale exists; losing the removal would resubmit it on
			// the next drain.
			uc.log.Error("Failed to remove synced sale from queue",
				"error", err, "temp_id", offline.TempID, "sale_id", record.ID)
			report.Failed++
			continue
		}

		report.Submitted++
		monitoring.SyncSubmittedTotal.Inc()
		uc.log.Info("Offline sale synchronized", "temp_id", offline.TempID, "sale_id", record.ID)
	}

	remaining, err := uc.queue.CountPendingSales(ctx)
	if err == nil {
		report.Remaining = remaining
		monitoring.SetOfflineQueueDepth(remaining)
	}

	return report, nil
}

func (uc *SyncUseCase) PendingCount(ctx context.Context) (int, error) {
	count, err := uc.queue.CountPendingSales(ctx)
	if err != nil {
		return 0, err
	}
	monitoring.SetOfflineQueueDepth(count)
	return count, nil
}

func (uc *SyncUseCase) PendingSales(ctx context.Context) ([]*SyncPendingSale, error) {
	pending, err := uc.queue.GetPendingSales(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*SyncPendingSale, 0, len(pending))
	for _, offline := range pending {
		out = append(out, &SyncPendingSale{
			TempID:     offline.TempID,
			Method:     string(offline.Sale.Method),
			Total:      offline.Sale.Gross.String(),
			CreatedAt:  offline.CreatedAt,
			RetryCount: offline.RetryCount,
		})
	}
	return out, nil
}

type SyncPendingSale struct {
	TempID     string    `json:"temp_id"`
	Method     string    `json:"method"`
	Total      string    `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
	RetryCount int       `json:"retry_count"`
}
