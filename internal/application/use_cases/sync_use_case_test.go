package use_cases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/ncastellanos/till-service/internal/domain/errors"
	"github.com/ncastellanos/till-service/internal/domain/pos"
)

func queuedSale(t *testing.T, queue *fakeQueue, productID string) *pos.OfflineSale {
	t.Helper()

	payload, err := pos.NewSalePayload("co-1", "shift-1",
		[]pos.CartItem{{ProductID: productID, Name: "item " + productID, Price: decimal.RequireFromString("1190"), Quantity: 1}},
		decimal.RequireFromString("0.19"), pos.CashPayment{})
	require.NoError(t, err)

	offline := pos.NewOfflineSale(*payload, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, queue.SavePendingSale(context.Background(), offline))
	return offline
}

func TestSyncPendingSales_DrainsInOrder(t *testing.T) {
	api := &fakeAPI{}
	queue := &fakeQueue{}
	uc := NewSyncUseCase(api, queue, testLogger())

	queuedSale(t, queue, "p1")
	queuedSale(t, queue, "p2")

	report, err := uc.SyncPendingSales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Submitted)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Remaining)

	created := api.created()
	require.Len(t, created, 2)
	assert.Equal(t, "p1", created[0].Lines[0].ProductID)
	assert.Equal(t, "p2", created[1].Lines[0].ProductID)

	count, _ := queue.CountPendingSales(context.Background())
	assert.Equal(t, 0, count)
}

func TestSyncPendingSales_FailureRetainsSaleAndBumpsRetry(t *testing.T) {
	api := &fakeAPI{}
	queue := &fakeQueue{}
	uc := NewSyncUseCase(api, queue, testLogger())

	failing := queuedSale(t, queue, "p1")
	queuedSale(t, queue, "p2")

	api.createSaleFn = func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
		if payload.Lines[0].ProductID == "p1" {
			return nil, errors.New("connection reset")
		}
		return &pos.SaleRecord{ID: "sale-p2"}, nil
	}

	report, err := uc.SyncPendingSales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Remaining)

	pending, err := queue.GetPendingSales(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, failing.TempID, pending[0].TempID)
	assert.Equal(t, 1, pending[0].RetryCount)
}

func TestSyncPendingSales_RemoveFailureCountsAsFailed(t *testing.T) {
	api := &fakeAPI{}
	queue := &fakeQueue{removeErr: errors.New("disk full")}
	uc := NewSyncUseCase(api, queue, testLogger())

	queuedSale(t, queue, "p1")

	report, err := uc.SyncPendingSales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Submitted)
	assert.Equal(t, 1, report.Failed)
}

func TestSyncPendingSales_SingleDrainAtATime(t *testing.T) {
	api := &fakeAPI{}
	queue := &fakeQueue{}
	uc := NewSyncUseCase(api, queue, testLogger())

	queuedSale(t, queue, "p1")

	entered := make(chan struct{})
	release := make(chan struct{})
	api.createSaleFn = func(ctx context.Context, payload *pos.SalePayload) (*pos.SaleRecord, error) {
		close(entered)
		<-release
		return &pos.SaleRecord{ID: "sale-1"}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := uc.SyncPendingSales(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := uc.SyncPendingSales(context.Background())
	assert.ErrorIs(t, err, domainErrors.ErrSyncInProgress)

	close(release)
	wg.Wait()
}

func TestPendingSales_ProjectsQueueForBadge(t *testing.T) {
	api := &fakeAPI{}
	queue := &fakeQueue{}
	uc := NewSyncUseCase(api, queue, testLogger())

	offline := queuedSale(t, queue, "p1")

	count, err := uc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	views, err := uc.PendingSales(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, offline.TempID, views[0].TempID)
	assert.Equal(t, string(pos.PaymentCash), views[0].Method)
	assert.Equal(t, "1190", views[0].Total)
	assert.Equal(t, 0, views[0].RetryCount)
}
