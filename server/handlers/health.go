package handlers

import (
	"context"
	"net/http"

	"github.com/nnnkkk7/sql-playground/pkg/health"
	"github.com/nnnkkk7/sql-playground/server/types"
)

// Prober reports database liveness.
type Prober interface {
	Probe(ctx context.Context) health.Status
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	prober Prober
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(prober Prober) *HealthHandler {
	return &HealthHandler{prober: prober}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.prober.Probe(r.Context())

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, types.NewHealthResponse(status))
}
