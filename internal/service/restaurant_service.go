package service

import (
	"context"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/repository"
)

// RestaurantService handles catalog lookups for restaurants
type RestaurantService struct {
	repo repository.RestaurantRepository
}

// NewRestaurantService creates a new restaurant service
func NewRestaurantService(repo repository.RestaurantRepository) *RestaurantService {
	return &RestaurantService{
		repo: repo,
	}
}

// ListRestaurants returns all loaded restaurants
func (s *RestaurantService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.repo.GetAll(ctx)
}

// GetRestaurant returns a restaurant by ID
func (s *RestaurantService) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCuisines returns the cuisines offered in the selector
func (s *RestaurantService) ListCuisines(ctx context.Context) ([]string, error) {
	return s.repo.Cuisines(ctx)
}
