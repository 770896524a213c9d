package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/events"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/recommend"
)

// Recommender ranks restaurants for a query
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) ([]models.Recommendation, error)
}

// RecommendRequest is a validated recommendation request
type RecommendRequest struct {
	Strategy recommend.Strategy
	Cuisine  string
	Origin   *models.Coordinates
	Limit    int
}

// RecommendResult is one answered request
type RecommendResult struct {
	RequestID       string                  `json:"request_id"`
	Strategy        recommend.Strategy      `json:"strategy"`
	StrategyLabel   string                  `json:"strategy_label"`
	Cuisine         string                  `json:"cuisine,omitempty"`
	Recommendations []models.Recommendation `json:"recommendations"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// RecommendationService runs the engine and records what was served
type RecommendationService struct {
	engine    Recommender
	publisher events.Publisher
	logger    *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
// A nil publisher disables events.
func NewRecommendationService(engine Recommender, publisher events.Publisher, logger *slog.Logger) *RecommendationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RecommendationService{
		engine:    engine,
		publisher: publisher,
		logger:    logger,
	}
}

// Recommend returns the top restaurants for the request
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	start := time.Now()
	recs, err := s.engine.Recommend(ctx, recommend.Query{
		Strategy: req.Strategy,
		Cuisine:  req.Cuisine,
		Origin:   req.Origin,
		Limit:    req.Limit,
	})
	metrics.RecordRecommendation(req.Strategy.String(), len(recs), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result := &RecommendResult{
		RequestID:       generateRequestID(),
		Strategy:        req.Strategy,
		StrategyLabel:   req.Strategy.Label(),
		Cuisine:         req.Cuisine,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC(),
	}

	s.logger.Debug("recommendation served",
		"request_id", result.RequestID,
		"strategy", req.Strategy.String(),
		"cuisine", req.Cuisine,
		"results", len(recs),
	)

	s.publish(ctx, result)

	return result, nil
}

// publish hands the served event to the publisher. Failures are logged and
// never fail the request.
func (s *RecommendationService) publish(ctx context.Context, result *RecommendResult) {
	ids := make([]int64, len(result.Recommendations))
	for i, r := range result.Recommendations {
		ids[i] = r.Restaurant.ID
	}

	err := s.publisher.Publish(context.WithoutCancel(ctx), events.RecommendationServed{
		RequestID:     result.RequestID,
		Strategy:      result.Strategy.String(),
		Cuisine:       result.Cuisine,
		RestaurantIDs: ids,
		ServedAt:      result.GeneratedAt,
	})
	if err != nil {
		s.logger.Warn("failed to publish recommendation event",
			"request_id", result.RequestID,
			"error", err,
		)
	}
}

// generateRequestID generates a unique request ID using UUID
func generateRequestID() string {
	return uuid.New().String()
}
