// Package http exposes the club treasury ledger as a JSON API.
package http

import (
	"net/http"
	"time"

	"kasklub/internal/auth"
	applog "kasklub/internal/log"
	"kasklub/internal/services"
)

// NewServer builds the HTTP server with all routes and middleware wired.
// Mutating endpoints sit behind the admin gate; everything shares the
// rate limiter, CORS headers and request logging.
func NewServer(addr string, svc *services.LedgerService, gate *auth.Gate, logger *applog.Logger) *http.Server {
	h := &handlers{svc: svc, gate: gate}

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/", h.root)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("GET /api/transactions", h.listTransactions)
	mux.HandleFunc("GET /api/summary", h.summary)

	// Protected routes - wrap with the admin gate
	guard := auth.Middleware(gate)
	mux.Handle("POST /api/transactions", guard(http.HandlerFunc(h.createTransaction)))
	mux.Handle("DELETE /api/transactions/{id}", guard(http.HandlerFunc(h.deleteTransaction)))

	// Liveness and readiness
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /readyz", h.ready)

	limiter := newRateLimiter()
	handler := applog.HTTPMiddleware(logger.WithComponent(applog.ComponentHTTP), extractClientIP)(
		securityHeaders(corsMiddleware(limiter.middleware(mux))))

	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}
