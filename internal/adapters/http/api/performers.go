package api

import (
	"context"
	"net/http"

	"github.com/okian/xpoints/internal/domain/types"
)

// PerformerDependencies defines the interface for over/underperformer queries.
type PerformerDependencies interface {
	Performers(ctx context.Context, direction string, limit int) ([]types.ResultView, error)
}

// PerformersHandler handles performer requests.
type PerformersHandler struct {
	deps     PerformerDependencies
	maxLimit int
}

// NewPerformersHandler creates a new performers handler.
func NewPerformersHandler(deps PerformerDependencies, maxLimit int) *PerformersHandler {
	return &PerformersHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetPerformers handles GET /performers?direction=over|under&limit=N.
// direction defaults to over.
func (h *PerformersHandler) HandleGetPerformers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_performers"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, ok := parseLimit(r, h.maxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "over"
	}
	rows, err := h.deps.Performers(r.Context(), direction, n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
