package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/projection"
)

// ProjectionHandler serves goal countdowns
type ProjectionHandler struct {
	calc *projection.Calculator
}

// NewProjectionHandler creates a new projection handler
func NewProjectionHandler(calc *projection.Calculator) *ProjectionHandler {
	return &ProjectionHandler{calc: calc}
}

// ProjectionRequest describes one goal simulation
type ProjectionRequest struct {
	Current      decimal.Decimal `json:"current"`
	Target       decimal.Decimal `json:"target"`
	Monthly      decimal.Decimal `json:"monthly"`
	AnnualReturn float64         `json:"annual_return"` // 0.15 = 15%
	SeriesMonths int             `json:"series_months,omitempty"`
}

// ProjectionResponse is the countdown plus an optional chart series
type ProjectionResponse struct {
	Months        int                `json:"months"`
	CeilingMonths int                `json:"ceiling_months"`
	Reachable     bool               `json:"reachable"`
	Series        []projection.Point `json:"series,omitempty"`
}

// Project computes months-to-target
// POST /api/projection
func (h *ProjectionHandler) Project(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.Current.IsNegative():
		respondFieldError(w, http.StatusBadRequest, "current", "must be >= 0")
		return
	case !req.Target.IsPositive():
		respondFieldError(w, http.StatusBadRequest, "target", "must be > 0")
		return
	case req.Monthly.IsNegative():
		respondFieldError(w, http.StatusBadRequest, "monthly", "must be >= 0")
		return
	case !projection.ValidAnnualReturn(req.AnnualReturn):
		respondFieldError(w, http.StatusBadRequest, "annual_return", "must be in (-1, 10]")
		return
	case req.SeriesMonths < 0:
		respondFieldError(w, http.StatusBadRequest, "series_months", "must be >= 0")
		return
	}

	months := h.calc.MonthsToTarget(req.Current, req.Target, req.Monthly, req.AnnualReturn)
	resp := ProjectionResponse{
		Months:        months,
		CeilingMonths: h.calc.CeilingMonths(),
		// ceiling에 도달했는데도 목표 미달이면 도달 불가로 봄
		Reachable: months < h.calc.CeilingMonths() || req.Current.GreaterThanOrEqual(req.Target),
	}
	if req.SeriesMonths > 0 {
		resp.Series = h.calc.Series(req.Current, req.Monthly, req.AnnualReturn, req.SeriesMonths)
	}

	respondJSON(w, http.StatusOK, resp)
}
