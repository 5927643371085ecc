// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/xpoints/internal/domain/aggregate"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, metric aggregate.Metric, limit int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?metric=M&limit=N requests.
// metric defaults to actual_total_points.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, ok := parseLimit(r, h.maxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	metric := aggregate.MetricActualTotal
	if name := r.URL.Query().Get("metric"); name != "" {
		m, err := aggregate.ParseMetric(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_metric", BadRequest(op, err))
			return
		}
		metric = m
	}
	entries, err := h.deps.Leaderboard(r.Context(), metric, n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
