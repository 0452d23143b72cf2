package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/ncastellanos/till-service/internal/application/ports"
	"github.com/ncastellanos/till-service/internal/application/use_cases"
	"github.com/ncastellanos/till-service/internal/config"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/handlers"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	healthHandler  *handlers.HealthHandler
	cartHandler    *handlers.CartHandler
	shiftHandler   *handlers.ShiftHandler
	paymentHandler *handlers.PaymentHandler
	syncHandler    *handlers.SyncHandler
}

type Dependencies struct {
	DB       *sql.DB
	Conn     ports.Connectivity
	Cart     *pos.Cart
	Shifts   *use_cases.ShiftUseCase
	Payments *use_cases.PaymentUseCase
	Sync     *use_cases.SyncUseCase
	Recon    ports.ReconciliationLog
}

func NewServer(cfg *config.Config, deps Dependencies, log *logger.Logger) *Server {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:         server,
		logger:         log,
		healthHandler:  handlers.NewHealthHandler(deps.DB, deps.Conn, log),
		cartHandler:    handlers.NewCartHandler(deps.Cart, log),
		shiftHandler:   handlers.NewShiftHandler(deps.Shifts, log),
		paymentHandler: handlers.NewPaymentHandler(deps.Payments, log),
		syncHandler:    handlers.NewSyncHandler(deps.Sync, deps.Recon, log),
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
