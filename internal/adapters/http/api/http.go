// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	service "github.com/okian/xpoints/internal/app"
	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/types"
)

const defaultLimit = 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	LeaderboardDependencies
	ValueDependencies
	PositionDependencies
	PerformerDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	valueHandler       *ValueHandler
	positionsHandler   *PositionsHandler
	performersHandler  *PerformersHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps every
// limit query parameter.
func NewServer(deps Dependencies, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		valueHandler:       NewValueHandler(deps, maxLimit),
		positionsHandler:   NewPositionsHandler(deps),
		performersHandler:  NewPerformersHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/value", MetricsMiddleware(s.valueHandler.HandleGetValue, "value"))
	mux.HandleFunc("/positions", MetricsMiddleware(s.positionsHandler.HandleGetPositions, "positions"))
	mux.HandleFunc("/performers", MetricsMiddleware(s.performersHandler.HandleGetPerformers, "performers"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps errors returned by the service to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoReport):
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
	case errors.Is(err, aggregate.ErrUnknownMetric):
		writeError(w, http.StatusBadRequest, "unknown_metric", BadRequest(op, err))
	case errors.Is(err, aggregate.ErrInvalidLimit), errors.Is(err, service.ErrUnknownDirection):
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// parseLimit reads the limit query parameter. A missing value means
// defaultLimit, capped at maxLimit.
func parseLimit(r *http.Request, maxLimit int) (n int, code string, ok bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return min(defaultLimit, maxLimit), "", true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, "bad_request", false
	}
	if n > maxLimit {
		return 0, "limit_exceeded", false
	}
	return n, "", true
}
