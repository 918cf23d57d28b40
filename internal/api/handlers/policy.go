package handlers

import (
	"net/http"

	"github.com/wonny/folio/internal/policy"
)

// PolicyHandler exposes the active allocation policy
type PolicyHandler struct {
	cfg  *policy.Config
	hash string
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(cfg *policy.Config, hash string) *PolicyHandler {
	return &PolicyHandler{cfg: cfg, hash: hash}
}

// PolicyResponse is the active policy with its fingerprint
type PolicyResponse struct {
	PolicyHash string           `json:"policy_hash"`
	Policy     *policy.Config   `json:"policy"`
	Warnings   []policy.Warning `json:"warnings,omitempty"`
}

// Get returns the active policy
// GET /api/policy
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PolicyResponse{
		PolicyHash: h.hash,
		Policy:     h.cfg,
		Warnings:   policy.Warn(h.cfg),
	})
}
