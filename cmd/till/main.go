package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/application/use_cases"
	"github.com/ncastellanos/till-service/internal/config"
	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/client"
	"github.com/ncastellanos/till-service/internal/infrastructure/connectivity"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/server"
	"github.com/ncastellanos/till-service/internal/infrastructure/persistence/sqlite"
	"github.com/ncastellanos/till-service/internal/pkg/clock"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	// Optional .env next to the binary; environment wins over the file.
	_ = godotenv.Load()

	log := logger.NewLogger()
	log.Info("Starting Till Service")

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}

	vatRate, vatErr := decimal.NewFromString(cfg.Till.VATRate)
	if vatErr != nil {
		log.Fatal("Invalid VAT rate", "error", vatErr, "vat_rate", cfg.Till.VATRate)
	}

	db, dbErr := sqlite.NewConnection(cfg.Storage.Path)
	if dbErr != nil {
		log.Fatal("Failed to open local database", "error", dbErr)
	}
	defer db.Close()

	if migrationErr := sqlite.RunMigrations(db); migrationErr != nil {
		log.Fatal("Failed to run migrations", "error", migrationErr)
	}

	apiTimeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	apiClient := client.NewAPIClient(cfg.API.BaseURL, apiTimeout, log)
	webpayClient := client.NewWebpayClient(cfg.API.BaseURL, apiTimeout, log)
	mercadoPagoClient := client.NewMercadoPagoClient(cfg.API.BaseURL, apiTimeout, log)

	queueRepo := sqlite.NewQueueRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	reconRepo := sqlite.NewReconciliationRepository(db)

	monitor := connectivity.NewMonitor(apiClient, log,
		time.Duration(cfg.Connectivity.ProbeIntervalSeconds)*time.Second)

	cart := pos.NewCart()
	clk := clock.NewRealClock()

	shiftUseCase := use_cases.NewShiftUseCase(apiClient, sessionRepo, monitor, cart, log)
	syncUseCase := use_cases.NewSyncUseCase(apiClient, queueRepo, log)
	paymentUseCase := use_cases.NewPaymentUseCase(
		apiClient,
		webpayClient,
		mercadoPagoClient,
		queueRepo,
		reconRepo,
		monitor,
		shiftUseCase,
		cart,
		clk,
		log,
		use_cases.PaymentConfig{
			VATRate:             vatRate,
			GenericCompanyID:    cfg.Till.GenericCompanyID,
			ReturnURL:           cfg.Till.ReturnURL,
			PollInterval:        time.Duration(cfg.Payment.PollIntervalSeconds) * time.Second,
			PollTimeout:         time.Duration(cfg.Payment.PollTimeoutSeconds) * time.Second,
			SuccessDisplayDelay: time.Duration(cfg.Payment.SuccessDisplayMillis) * time.Millisecond,
		},
	)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	if err := shiftUseCase.Restore(serverCtx); err != nil {
		log.Warn("Failed to restore session state", "error", err)
	}

	if count, err := syncUseCase.PendingCount(serverCtx); err == nil && count > 0 {
		log.Info("Offline sales pending from previous session", "count", count)
	}

	monitor.OnOnline(func(ctx context.Context) {
		report, err := syncUseCase.SyncPendingSales(ctx)
		if err != nil {
			log.Warn("Sync drain on reconnect failed", "error", err)
			return
		}
		if report.Submitted > 0 || report.Failed > 0 {
			log.Info("Sync drain finished",
				"submitted", report.Submitted,
				"failed", report.Failed,
				"remaining", report.Remaining,
			)
		}
	})

	httpServer := server.NewServer(cfg, server.Dependencies{
		DB:       db.GetDB(),
		Conn:     monitor,
		Cart:     cart,
		Shifts:   shiftUseCase,
		Payments: paymentUseCase,
		Sync:     syncUseCase,
		Recon:    reconRepo,
	}, log)

	go monitor.Start(serverCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		monitor.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Server starting", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
