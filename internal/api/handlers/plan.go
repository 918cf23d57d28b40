package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/holdings"
	"github.com/wonny/folio/internal/portfolio"
	"github.com/wonny/folio/pkg/logger"
)

// Refresher recomputes and publishes one stored portfolio
type Refresher interface {
	RefreshOne(ctx context.Context, portfolioID string) (*contracts.Result, error)
}

// PlanCache reads and drops cached plans
type PlanCache interface {
	Get(ctx context.Context, portfolioID string) (*contracts.Result, bool, error)
	Invalidate(ctx context.Context, portfolioID string) error
}

// PlanArchive reads the most recently archived plan
type PlanArchive interface {
	LatestPlan(ctx context.Context, portfolioID string) (*contracts.Result, error)
}

// PlanHandler serves allocation plans
// ⭐ SSOT: 플랜 API 핸들러는 이 구조체에서만
type PlanHandler struct {
	engine       *portfolio.Engine
	refresher    Refresher  // nil이면 저장소 없는 모드
	cache        PlanCache   // nil 허용
	archive      PlanArchive // nil 허용, 재계산 실패 시 폴백
	baseCurrency string
	logger       *logger.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(
	engine *portfolio.Engine,
	refresher Refresher,
	cache PlanCache,
	archive PlanArchive,
	baseCurrency string,
	log *logger.Logger,
) *PlanHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanHandler{
		engine:       engine,
		refresher:    refresher,
		cache:        cache,
		archive:      archive,
		baseCurrency: baseCurrency,
		logger:       log,
	}
}

// PlanRequest is a caller-supplied snapshot plus an optional budget override
type PlanRequest struct {
	contracts.Snapshot
	MonthlyBudget decimal.NullDecimal `json:"monthly_budget"`
}

// Compute enriches a posted snapshot
// POST /api/plan
func (h *PlanHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := &req.Snapshot
	snap.Normalize()
	if snap.BaseCurrency == "" {
		snap.BaseCurrency = h.baseCurrency
	}

	if err := contracts.ValidateSnapshot(snap); err != nil {
		var verr contracts.ValidationError
		if errors.As(err, &verr) {
			respondFieldError(w, http.StatusBadRequest, verr.Field, verr.Message)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.MonthlyBudget.Valid {
		if req.MonthlyBudget.Decimal.IsNegative() {
			respondFieldError(w, http.StatusBadRequest, "monthly_budget", "must be >= 0")
			return
		}
		respondJSON(w, http.StatusOK, h.engine.RunWithBudget(snap, req.MonthlyBudget.Decimal))
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Run(snap))
}

// GetPortfolioPlan returns the cached plan or recomputes it from storage
// GET /api/portfolios/{id}/plan?refresh=true
func (h *PlanHandler) GetPortfolioPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "portfolio id is required")
		return
	}
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "portfolio storage is not configured")
		return
	}

	if h.cache != nil {
		if r.URL.Query().Get("refresh") == "true" {
			// 재계산이 실패해도 이전 캐시가 다시 서빙되지 않도록 먼저 제거
			if err := h.cache.Invalidate(ctx, id); err != nil {
				h.logger.WithError(err).WithField("portfolio", id).Warn("Plan cache invalidate failed")
			}
		} else {
			cached, found, err := h.cache.Get(ctx, id)
			if err != nil {
				h.logger.WithError(err).WithField("portfolio", id).Warn("Plan cache read failed")
			}
			if found {
				w.Header().Set("X-Plan-Cache", "hit")
				respondJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	result, err := h.refresher.RefreshOne(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, holdings.ErrNotFound):
		respondError(w, http.StatusNotFound, "portfolio not found")
		return
	case errors.As(err, new(contracts.ValidationError)):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case result != nil:
		// 계산은 성공, 아카이브만 실패
		h.logger.WithError(err).WithField("portfolio", id).Warn("Plan computed but not archived")
	default:
		h.logger.WithError(err).WithField("portfolio", id).Error("Failed to refresh plan")
		if archived := h.latestArchived(ctx, id); archived != nil {
			w.Header().Set("X-Plan-Cache", "archive")
			respondJSON(w, http.StatusOK, archived)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to compute plan")
		return
	}

	w.Header().Set("X-Plan-Cache", "miss")
	respondJSON(w, http.StatusOK, result)
}

// latestArchived returns the last archived plan, or nil when none can be read
func (h *PlanHandler) latestArchived(ctx context.Context, id string) *contracts.Result {
	if h.archive == nil {
		return nil
	}
	result, err := h.archive.LatestPlan(ctx, id)
	if err != nil {
		if !errors.Is(err, holdings.ErrNotFound) {
			h.logger.WithError(err).WithField("portfolio", id).Warn("Plan archive read failed")
		}
		return nil
	}
	return result
}
