// Package api provides the HTTP server for showup.
// It exposes every journey, ledger and fee-beneficiary operation as JSON
// over chi, plus a live SSE event feed and Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/showup-club/showup/internal/app/access"
	"github.com/showup-club/showup/internal/app/journey"
	"github.com/showup-club/showup/internal/app/ledger"
	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/infra/observability"
)

// Version is reported by /api/version.
const Version = "0.1.0"

// Server is the showup HTTP API server.
type Server struct {
	journeys       *journey.Engine
	access         *access.Controller
	ledger         *ledger.Service
	auth           *Authenticator
	hub            *EventHub
	tracer         *observability.Tracer
	metricsEnabled bool
	log            *slog.Logger
}

// NewServer creates a new API server.
func NewServer(j *journey.Engine, a *access.Controller, l *ledger.Service, auth *Authenticator) *Server {
	return &Server{
		journeys: j,
		access:   a,
		ledger:   l,
		auth:     auth,
		log:      slog.Default().With("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetEventHub sets the live event hub served at /api/events.
func (s *Server) SetEventHub(h *EventHub) { s.hub = h }

// SetTracer exposes recent operation spans at /api/traces.
func (s *Server) SetTracer(t *observability.Tracer) { s.tracer = t }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(traceMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(s.auth.Middleware)

	// Long-lived SSE stream, outside the request timeout
	if s.hub != nil {
		r.Get("/api/events", s.hub.HandleSSE)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/journeys", func(r chi.Router) {
				r.With(requireCaller).Post("/", s.handleCreateJourney)
				r.With(requireCaller).Get("/", s.handleMyJourneys)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetJourney)
					r.With(requireCaller).Post("/show-ups", s.handleShowUp)
					r.With(requireCaller).Post("/complete", s.handleComplete)
					r.Get("/events", s.handleJourneyEvents)
				})
			})
			r.Get("/users/{identity}/journeys", s.handleUserJourneys)
			r.Get("/balances/{identity}", s.handleBalance)
			r.Get("/balances/{identity}/statement", s.handleStatement)
			r.With(requireCaller).Post("/withdrawals", s.handleWithdraw)
			r.Get("/fee-beneficiary", s.handleFeeBeneficiary)
			r.With(requireCaller).Put("/fee-beneficiary", s.handleTransferFeeBeneficiary)
		})

		if s.tracer != nil {
			r.Get("/api/traces", s.handleTraces)
		}
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleTraces returns the most recent operation spans.
// GET /api/traces?limit=N
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"spans": s.tracer.Spans(limit),
		"total": s.tracer.SpanCount(),
	})
}

// traceMiddleware carries chi's request id into operation spans.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(observability.WithTraceID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// requireCaller rejects anonymous requests.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Caller(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "bearer token required", "unauthenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    kind,
		},
	})
}

// writeDomainError maps an engine error to its HTTP status.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error(), domain.ErrorKind(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrJourneyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWindowClosed), errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFeeExceedsDeposit), errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoFeeBeneficiary), errors.Is(err, ledger.ErrNoCustody):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
