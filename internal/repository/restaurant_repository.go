package repository

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// RestaurantRepository defines the interface for restaurant data access
type RestaurantRepository interface {
	GetAll(ctx context.Context) ([]models.Restaurant, error)
	GetByID(ctx context.Context, id int64) (*models.Restaurant, error)
	Cuisines(ctx context.Context) ([]string, error)
}

// InMemoryRestaurantRepository serves restaurants from a loaded dataset
type InMemoryRestaurantRepository struct {
	data *dataset.Dataset
}

// NewInMemoryRestaurantRepository creates a repository over an already loaded dataset
func NewInMemoryRestaurantRepository(data *dataset.Dataset) *InMemoryRestaurantRepository {
	return &InMemoryRestaurantRepository{
		data: data,
	}
}

// GetAll returns all restaurants in load order
func (r *InMemoryRestaurantRepository) GetAll(ctx context.Context) ([]models.Restaurant, error) {
	restaurants := make([]models.Restaurant, len(r.data.Restaurants))
	copy(restaurants, r.data.Restaurants)
	return restaurants, nil
}

// GetByID returns a restaurant by its ID
func (r *InMemoryRestaurantRepository) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	restaurant, exists := r.data.Restaurant(id)
	if !exists {
		return nil, ErrRestaurantNotFound
	}
	return &restaurant, nil
}

// Cuisines returns the distinct cuisine names in sorted order
func (r *InMemoryRestaurantRepository) Cuisines(ctx context.Context) ([]string, error) {
	return r.data.Cuisines(), nil
}
