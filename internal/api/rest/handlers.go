package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fortuna/propline/internal/ingest/nbastats"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/service"
	"github.com/fortuna/propline/internal/store"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
	maxBatchPlayers    = 50
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	stats *service.StatsService
	props *service.PropsService
	log   *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(stats *service.StatsService, props *service.PropsService, log *logger.Logger) *Handler {
	return &Handler{stats: stats, props: props, log: log}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "propline",
		"sport":   store.Sport,
	})
}

// SearchPlayers searches the player directory by name
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("name")
	if query == "" {
		query = r.URL.Query().Get("q")
	}
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'name'", nil)
		return
	}

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxSearchLimit {
			limit = l
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"players": h.stats.SearchPlayers(query, limit)})
}

// GetPlayerGameLogs handles GET /api/v1/players/gamelogs?name=&season=&mock=
func (h *Handler) GetPlayerGameLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if strings.TrimSpace(name) == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'name'", nil)
		return
	}
	mock, err := parseBool(q.Get("mock"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'mock' parameter", err)
		return
	}

	res, err := h.stats.FetchGameLogs(r.Context(), store.PlayerQuery{
		Name:    name,
		Season:  q.Get("season"),
		UseMock: mock,
	})
	if err != nil {
		respondStatsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Players []string `json:"players"`
	Season  string   `json:"season"`
	Mock    bool     `json:"mock"`
}

// GetMultiplePlayersGameLogs handles POST /api/v1/players/gamelogs/batch
func (h *Handler) GetMultiplePlayersGameLogs(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Players) == 0 {
		respondError(w, http.StatusBadRequest, "'players' must not be empty", nil)
		return
	}
	if len(req.Players) > maxBatchPlayers {
		respondError(w, http.StatusBadRequest, "Too many players (max "+strconv.Itoa(maxBatchPlayers)+")", nil)
		return
	}
	if req.Season != "" {
		if _, err := store.ParseSeason(req.Season); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid season", err)
			return
		}
	}

	results := h.stats.GetMultiplePlayersGameLogs(r.Context(), req.Players, req.Season, req.Mock)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":  req.Season,
		"results": results,
	})
}

// GetTodaysProps resolves and validates today's props without exporting them
func (h *Handler) GetTodaysProps(w http.ResponseWriter, r *http.Request) {
	mock, err := parseBool(r.URL.Query().Get("mock"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'mock' parameter", err)
		return
	}

	res, err := h.props.Collect(r.Context(), mock, false)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch props", err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func respondStatsError(w http.ResponseWriter, err error) {
	var notFound *nbastats.PlayerNotFoundError
	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "Player not found", err)
	case errors.Is(err, store.ErrInvalidSeason):
		respondError(w, http.StatusBadRequest, "Invalid season", err)
	default:
		respondError(w, http.StatusBadGateway, "Failed to fetch game logs", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
