package handler

import (
	"context"
	"net/http"

	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/api/response"
)

// Pinger checks backing-store connectivity. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version string
	pinger  Pinger
}

// NewOpsHandler creates a new OpsHandler. pinger may be nil, in which
// case readiness reports ok unconditionally.
func NewOpsHandler(version string, pinger Pinger) *OpsHandler {
	return &OpsHandler{version: version, pinger: pinger}
}

// Health handles GET /healthz - liveness check.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready handles GET /readyz - readiness check including the backing store.
func (h *OpsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			response.Error(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	response.JSON(w, r, http.StatusOK, models.Health{Status: "ok"})
}
