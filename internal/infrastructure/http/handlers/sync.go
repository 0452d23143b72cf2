package handlers

import (
	"net/http"
	"time"

	"github.com/ncastellanos/till-service/internal/application/ports"
	"github.com/ncastellanos/till-service/internal/application/use_cases"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/response"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type SyncHandler struct {
	sync  *use_cases.SyncUseCase
	recon ports.ReconciliationLog
	log   *logger.Logger
}

func NewSyncHandler(sync *use_cases.SyncUseCase, recon ports.ReconciliationLog, log *logger.Logger) *SyncHandler {
	return &SyncHandler{
		sync:  sync,
		recon: recon,
		log:   log,
	}
}

type pendingView struct {
	Count int                          `json:"count"`
	Items []*use_cases.SyncPendingSale `json:"items"`
}

// HandleGetPending backs the cashier-facing badge of queued offline sales.
func (h *SyncHandler) HandleGetPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	items, err := h.sync.PendingSales(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, pendingView{
		Count: len(items),
		Items: items,
	})
}

func (h *SyncHandler) HandleDrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	report, err := h.sync.SyncPendingSales(r.Context())
	if err != nil {
		h.log.Warn("Manual sync drain failed", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, report)
}

type reconciliationView struct {
	SaleID    string `json:"sale_id"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

func (h *SyncHandler) HandleGetReconciliation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.recon.List(r.Context())
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	views := make([]reconciliationView, 0, len(entries))
	for _, e := range entries {
		views = append(views, reconciliationView{
			SaleID:    e.SaleID,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	response.WriteSuccess(w, views)
}
