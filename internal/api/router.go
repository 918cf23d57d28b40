package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/internal/realtime"
	"github.com/wonny/folio/pkg/logger"
)

// HealthCheck reports a dependency failure; nil means healthy
type HealthCheck func(ctx context.Context) error

// Handlers bundles everything the router mounts.
// Jobs, Hub, Health는 선택 (nil이면 라우트 생략)
type Handlers struct {
	Plan       *handlers.PlanHandler
	Gate       *handlers.GateHandler
	Projection *handlers.ProjectionHandler
	Policy     *handlers.PolicyHandler
	Jobs       *handlers.JobsHandler
	Hub        *realtime.Hub
	Health     HealthCheck
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Health)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Engine endpoints
	api.HandleFunc("/plan", h.Plan.Compute).Methods("POST")
	api.HandleFunc("/portfolios/{id}/plan", h.Plan.GetPortfolioPlan).Methods("GET")
	api.HandleFunc("/gate", h.Gate.Evaluate).Methods("POST")
	api.HandleFunc("/projection", h.Projection.Project).Methods("POST")
	api.HandleFunc("/policy", h.Policy.Get).Methods("GET")

	if h.Jobs != nil {
		api.HandleFunc("/jobs", h.Jobs.List).Methods("GET")
	}

	// Live plan push
	if h.Hub != nil {
		r.HandleFunc("/ws/plans", h.Hub.ServeWS).Methods("GET")
	}

	// Apply middleware (바깥쪽부터: logging → recovery → rate limit)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if limiter != nil {
		r.Use(rateLimitMiddleware(limiter))
	}

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "folio-api",
		}

		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["error"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
