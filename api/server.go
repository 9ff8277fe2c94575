/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware stack and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, copied into the request logger
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. hlog:       zerolog request logger and access log line
  4. instrument: Prometheus request count and latency
  5. CORS:       Cross-origin requests

ROUTE GROUPS:
  /api/accounts/*     Account lifecycle, deposits, payments, history
  /api/transfers      Transfers
  /api/merges         Merges
  /api/top-spenders   Ranking
  /api/policy         Active cashback policy
  /api/commands       Raw query batches
  /api/journal        Executed command log
  /api/scenarios/*    Worked examples
  /api/reset          Empty ledger (dev only)
  /metrics            Prometheus

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(log))
	r.Use(requestIDField)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Get("/{id}/balance", h.GetBalance)
			r.Post("/{id}/deposits", h.Deposit)
			r.Post("/{id}/payments", h.Pay)
			r.Get("/{id}/payments/{paymentID}", h.GetPayment)
		})

		r.Post("/transfers", h.Transfer)
		r.Post("/merges", h.Merge)
		r.Get("/top-spenders", h.TopSpenders)

		r.Get("/policy", h.GetPolicy)
		r.Post("/commands", h.RunCommands)
		r.Get("/journal", h.GetJournal)
		r.Get("/journal/stats", h.GetJournalStats)
		r.Post("/reset", h.Reset)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// requestIDField adds chi's request id to the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			log := hlog.FromRequest(r).With().Str("request_id", id).Logger()
			r = r.WithContext(log.WithContext(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}
