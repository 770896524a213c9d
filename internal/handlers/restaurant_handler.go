package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/repository"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/service"
)

// RestaurantHandler handles restaurant catalog HTTP requests
type RestaurantHandler struct {
	service *service.RestaurantService
	logger  *slog.Logger
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(service *service.RestaurantService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
		logger:  logger,
	}
}

// ListRestaurants handles GET /api/restaurant
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	restaurants, err := h.service.ListRestaurants(ctx)
	if err != nil {
		h.logger.Error("failed to list restaurants", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, restaurants, h.logger)
}

// GetRestaurant handles GET /api/restaurant/{restaurantId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Restaurant not found
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID := chi.URLParam(r, "restaurantId")

	id, err := strconv.ParseInt(restaurantID, 10, 64)
	if err != nil {
		h.logger.Warn("invalid restaurant ID format", "restaurantId", restaurantID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	restaurant, err := h.service.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			h.logger.Info("restaurant not found", "restaurantId", id)
			WriteError(w, http.StatusNotFound, "Restaurant not found", h.logger)
			return
		}

		h.logger.Error("failed to get restaurant", "restaurantId", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, restaurant, h.logger)
}

// ListCuisines handles GET /api/cuisines
func (h *RestaurantHandler) ListCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := h.service.ListCuisines(r.Context())
	if err != nil {
		h.logger.Error("failed to list cuisines", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, cuisines, h.logger)
}
