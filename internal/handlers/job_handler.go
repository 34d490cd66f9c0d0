// -----------------------------------------------------------------------
// Job Handler - Research job status and listing
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/services/registry"
)

// JobHandler exposes research job snapshots over HTTP. Errors during
// processing surface only through these polling endpoints.
type JobHandler struct {
	registry *registry.Registry
	logger   arbor.ILogger
}

func NewJobHandler(reg *registry.Registry) *JobHandler {
	return &JobHandler{
		registry: reg,
		logger:   common.GetLogger(),
	}
}

// StatusHandler handles GET /status/{job_id}
func (h *JobHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		WriteError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	snapshot, found := h.registry.Get(jobID)
	if !found {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// ListJobsHandler handles GET /jobs
func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobs := h.registry.List()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
