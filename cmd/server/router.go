package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/config"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/handlers"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/service"
)

func newRouter(
	cfg *config.Config,
	stats handlers.StatsProvider,
	restaurants *service.RestaurantService,
	recommendations *service.RecommendationService,
	log *slog.Logger,
) http.Handler {
	healthHandler := handlers.NewHealthHandler(stats, version, log)
	restaurantHandler := handlers.NewRestaurantHandler(restaurants, log)
	recommendationHandler := handlers.NewRecommendationHandler(recommendations, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		r.Get("/cuisines", restaurantHandler.ListCuisines)
		r.Get("/strategies", recommendationHandler.ListStrategies)
		r.Get("/recommendations", recommendationHandler.Recommend)

		r.Get("/restaurant", restaurantHandler.ListRestaurants)
		r.Get("/restaurant/{restaurantId}", restaurantHandler.GetRestaurant)
	})

	return r
}
