package api

import (
	"context"
	"net/http"

	"github.com/okian/xpoints/internal/domain/types"
)

// ValueDependencies defines the interface for per-90 value rankings.
type ValueDependencies interface {
	Value(ctx context.Context, limit int) ([]types.ValueEntry, error)
}

// ValueHandler handles value requests.
type ValueHandler struct {
	deps     ValueDependencies
	maxLimit int
}

// NewValueHandler creates a new value handler.
func NewValueHandler(deps ValueDependencies, maxLimit int) *ValueHandler {
	return &ValueHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetValue handles GET /value?limit=N requests.
func (h *ValueHandler) HandleGetValue(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_value"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, ok := parseLimit(r, h.maxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	rows, err := h.deps.Value(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
