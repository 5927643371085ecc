package api

import (
	"context"
	"net/http"

	"github.com/okian/xpoints/internal/domain/aggregate"
)

// PositionDependencies defines the interface for the per-position breakdown.
type PositionDependencies interface {
	Positions(ctx context.Context) ([]aggregate.PositionSummary, error)
}

// PositionsHandler handles position breakdown requests.
type PositionsHandler struct {
	deps PositionDependencies
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler(deps PositionDependencies) *PositionsHandler {
	return &PositionsHandler{deps: deps}
}

// HandleGetPositions handles GET /positions requests.
func (h *PositionsHandler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	groups, err := h.deps.Positions(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_positions", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
