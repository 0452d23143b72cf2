package handlers

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/ncastellanos/till-service/internal/application/ports"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/response"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type HealthHandler struct {
	db        *sql.DB
	conn      ports.Connectivity
	log       *logger.Logger
	startTime time.Time
}

func NewHealthHandler(db *sql.DB, conn ports.Connectivity, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		conn:      conn,
		log:       log,
		startTime: time.Now().UTC(),
	}
}

type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

type ServicesStatus struct {
	App       string `json:"app"`
	LocalDB   string `json:"local_db"`
	RemoteAPI string `json:"remote_api"`
}

type HealthData struct {
	ServicesStatus ServicesStatus `json:"services_status"`
	Uptime         string         `json:"uptime"`
	Memory         MemoryMetrics  `json:"memory"`
	Goroutines     int            `json:"goroutines"`
}

func (h *HealthHandler) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "UP"
		if err := h.db.Ping(); err != nil {
			dbStatus = "DOWN"
		}

		// The till stays healthy while offline; the remote API state is
		// informational.
		apiStatus := "UP"
		if h.conn.Offline() {
			apiStatus = "DOWN"
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		data := HealthData{
			ServicesStatus: ServicesStatus{
				App:       "UP",
				LocalDB:   dbStatus,
				RemoteAPI: apiStatus,
			},
			Uptime: time.Since(h.startTime).String(),
			Memory: MemoryMetrics{
				Alloc:      mem.Alloc,
				TotalAlloc: mem.TotalAlloc,
				Sys:        mem.Sys,
				NumGC:      mem.NumGC,
			},
			Goroutines: runtime.NumGoroutine(),
		}

		response.WriteSuccess(w, data)
	}
}
