package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/config"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/events"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/recommend"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/repository"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/service"
	"github.com/Lixing-Zhang/restaurant-recommender/pkg/logger"
)

const version = "1.0.0"

func main() {
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if dotenvErr != nil {
		log.Debug("no .env file found, using environment variables")
	}

	log.Info("starting restaurant recommendation server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"dataset_source", cfg.Dataset.Source,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	// Load the dataset once; every request reads the same immutable copy
	reader, closeReader, err := dataset.OpenReader(ctx, cfg.Dataset.SourceConfig(), log)
	if err != nil {
		log.Error("failed to open dataset source", "error", err)
		os.Exit(1)
	}

	loader := dataset.NewLoader(reader, log)
	data, err := loader.Load(ctx)
	closeReader()
	if err != nil {
		log.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, log)
		log.Info("publishing recommendation events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close event publisher", "error", err)
		}
	}()

	// Initialize repositories and services
	restaurantRepo := repository.NewInMemoryRestaurantRepository(data)
	restaurantService := service.NewRestaurantService(restaurantRepo)
	recommendationService := service.NewRecommendationService(recommend.NewEngine(data), publisher, log)

	r := newRouter(cfg, data, restaurantService, recommendationService, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("server failed to start", "error", err)
		return
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}
