package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ncastellanos/till-service/internal/infrastructure/http/middleware"
	"github.com/ncastellanos/till-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/cart", s.cartHandler.HandleGetCart)
	mux.HandleFunc("/cart/items", s.cartHandler.HandleAddItem)
	mux.HandleFunc("/cart/items/", s.handleCartItemRoutes)
	mux.HandleFunc("/cart/clear", s.cartHandler.HandleClear)

	mux.HandleFunc("/register/select", s.shiftHandler.HandleSelectRegister)
	mux.HandleFunc("/register", s.shiftHandler.HandleGetRegister)

	mux.HandleFunc("/shift", s.shiftHandler.HandleGetShift)
	mux.HandleFunc("/shift/open", s.shiftHandler.HandleOpenShift)
	mux.HandleFunc("/shift/close", s.shiftHandler.HandleCloseShift)
	mux.HandleFunc("/shift/refresh", s.shiftHandler.HandleRefreshShift)
	mux.HandleFunc("/shift/resume", s.shiftHandler.HandleResumeShift)

	mux.HandleFunc("/payment/process", s.paymentHandler.HandleProcessPayment)
	mux.HandleFunc("/payment/session", s.paymentHandler.HandleGetSession)
	mux.HandleFunc("/payment/close", s.paymentHandler.HandleCloseModal)
	mux.HandleFunc("/payment/retry", s.paymentHandler.HandleRetry)

	mux.HandleFunc("/sync/pending", s.syncHandler.HandleGetPending)
	mux.HandleFunc("/sync/drain", s.syncHandler.HandleDrain)
	mux.HandleFunc("/sync/reconciliation", s.syncHandler.HandleGetReconciliation)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = s.corsMiddleware(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) handleCartItemRoutes(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/cart/items/")
	if productID == "" || strings.Contains(productID, "/") {
		http.NotFound(w, r)
		return
	}

	s.cartHandler.HandleRemoveItem(w, r, productID)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
