package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/folio/internal/gatekeeper"
)

// GateHandler evaluates trading gate signals
type GateHandler struct {
	gate *gatekeeper.Gatekeeper
}

// NewGateHandler creates a new gate handler
func NewGateHandler(gate *gatekeeper.Gatekeeper) *GateHandler {
	return &GateHandler{gate: gate}
}

// GateRequest carries one or more tickers' signals
type GateRequest struct {
	Signals []gatekeeper.Signals `json:"signals"`
}

// GateResponse maps ticker → decision
type GateResponse struct {
	Decisions map[string]gatekeeper.Decision `json:"decisions"`
}

// Evaluate resolves the shield state per ticker
// POST /api/gate
func (h *GateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req GateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Signals) == 0 {
		respondFieldError(w, http.StatusBadRequest, "signals", "at least one entry is required")
		return
	}

	seen := make(map[string]struct{}, len(req.Signals))
	for i, s := range req.Signals {
		if s.Ticker == "" {
			respondFieldError(w, http.StatusBadRequest, fmt.Sprintf("signals[%d].ticker", i), "required")
			return
		}
		if _, dup := seen[s.Ticker]; dup {
			respondFieldError(w, http.StatusBadRequest, fmt.Sprintf("signals[%d].ticker", i), "duplicate ticker")
			return
		}
		seen[s.Ticker] = struct{}{}
	}

	respondJSON(w, http.StatusOK, GateResponse{Decisions: h.gate.EvaluateAll(req.Signals)})
}
