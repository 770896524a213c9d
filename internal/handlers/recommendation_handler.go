package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/presenter"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/recommend"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/service"
)

// RecommendationRequest holds the parsed query parameters of GET /api/recommendations
type RecommendationRequest struct {
	Strategy string   `validate:"required,max=50"`
	Cuisine  string   `validate:"max=100"`
	Lat      *float64 `validate:"omitempty,latitude"`
	Lon      *float64 `validate:"omitempty,longitude"`
	Limit    int      `validate:"omitempty,min=1,max=10"`
	Columns  []string
	Map      bool
}

// RecommendationResponse is the table view of one recommendation, plus the optional map
type RecommendationResponse struct {
	RequestID   string             `json:"request_id"`
	Strategy    string             `json:"strategy"`
	Cuisine     string             `json:"cuisine,omitempty"`
	Table       presenter.Table    `json:"table"`
	Map         *presenter.MapView `json:"map,omitempty"`
	Message     string             `json:"message,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// StrategyInfo describes one selectable strategy
type StrategyInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	service *service.RecommendationService
	logger  *slog.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service *service.RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

// ListStrategies handles GET /api/strategies
func (h *RecommendationHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies := recommend.Strategies()
	out := make([]StrategyInfo, len(strategies))
	for i, s := range strategies {
		out[i] = StrategyInfo{Name: s.String(), Label: s.Label()}
	}

	WriteJSON(w, http.StatusOK, out, h.logger)
}

// Recommend handles GET /api/recommendations
// - 200: table of up to 10 restaurants, with a message when empty
// - 400: unknown strategy or invalid parameters
// - 422: unknown display columns
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRecommendationRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("invalid recommendation request", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := validateRequest(&req); err != nil {
		h.logger.Warn("invalid recommendation request", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		WriteError(w, http.StatusBadRequest, "lat and lon must be provided together", h.logger)
		return
	}

	strategy, err := recommend.ParseStrategy(req.Strategy)
	if err != nil {
		h.logger.Warn("unknown strategy", "strategy", req.Strategy)
		WriteError(w, http.StatusBadRequest, "Unknown strategy: "+req.Strategy, h.logger)
		return
	}

	if err := presenter.ValidateColumns(req.Columns); err != nil {
		h.logger.Warn("unknown display columns", "error", err)
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), h.logger)
		return
	}

	var origin *models.Coordinates
	if req.Lat != nil {
		origin = &models.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}

	result, err := h.service.Recommend(ctx, service.RecommendRequest{
		Strategy: strategy,
		Cuisine:  req.Cuisine,
		Origin:   origin,
		Limit:    req.Limit,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownStrategy) {
			WriteError(w, http.StatusBadRequest, "Unknown strategy: "+req.Strategy, h.logger)
			return
		}
		h.logger.Error("failed to compute recommendations", "strategy", strategy.String(), "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	table, err := presenter.BuildTable(result.Recommendations, req.Columns)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), h.logger)
		return
	}

	resp := RecommendationResponse{
		RequestID:   result.RequestID,
		Strategy:    result.StrategyLabel,
		Cuisine:     result.Cuisine,
		Table:       table,
		GeneratedAt: result.GeneratedAt,
	}
	if len(result.Recommendations) == 0 {
		resp.Message = presenter.EmptyMessage
	}
	if req.Map {
		view := presenter.BuildMap(result.Recommendations)
		resp.Map = &view
	}

	WriteJSON(w, http.StatusOK, resp, h.logger)
}

func parseRecommendationRequest(q url.Values) (RecommendationRequest, error) {
	req := RecommendationRequest{
		Strategy: strings.TrimSpace(q.Get("strategy")),
		Cuisine:  strings.TrimSpace(q.Get("cuisine")),
		Columns:  presenter.ParseColumns(q.Get("columns")),
	}

	var err error
	if req.Lat, err = parseOptionalFloat(q, "lat"); err != nil {
		return req, err
	}
	if req.Lon, err = parseOptionalFloat(q, "lon"); err != nil {
		return req, err
	}

	if raw := q.Get("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			return req, errors.New("limit must be an integer")
		}
	}

	if raw := q.Get("map"); raw != "" {
		if req.Map, err = strconv.ParseBool(raw); err != nil {
			return req, errors.New("map must be true or false")
		}
	}

	return req, nil
}

func parseOptionalFloat(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(key + " must be a number")
	}
	return &v, nil
}
