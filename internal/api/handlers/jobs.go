package handlers

import (
	"net/http"

	"github.com/wonny/folio/internal/scheduler"
)

// JobStatsProvider reports scheduler job statistics
type JobStatsProvider interface {
	GetJobStats() map[string]scheduler.JobStats
}

// JobsHandler exposes background job health
type JobsHandler struct {
	stats JobStatsProvider
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(stats JobStatsProvider) *JobsHandler {
	return &JobsHandler{stats: stats}
}

// List returns per-job statistics
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.GetJobStats())
}
