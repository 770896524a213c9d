package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/config"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/events"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/handlers"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/recommend"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/repository"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/service"
	"github.com/Lixing-Zhang/restaurant-recommender/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New("error")
	reader, closeReader, err := dataset.OpenReader(context.Background(), dataset.SourceConfig{Type: dataset.SourceDir, Dir: "../../data"}, log)
	if err != nil {
		t.Fatalf("failed to open dataset: %v", err)
	}
	defer closeReader()

	data, err := dataset.NewLoader(reader, log).Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load sample dataset: %v", err)
	}

	cfg := &config.Config{
		Server:    config.ServerConfig{RequestTimeout: 10 * time.Second},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 1000, Window: time.Minute},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	restaurants := service.NewRestaurantService(repository.NewInMemoryRestaurantRepository(data))
	recommendations := service.NewRecommendationService(recommend.NewEngine(data), events.NopPublisher{}, log)

	srv := httptest.NewServer(newRouter(cfg, data, restaurants, recommendations, log))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func tableNames(resp handlers.RecommendationResponse) []string {
	out := make([]string, 0, len(resp.Table.Rows))
	for _, row := range resp.Table.Rows {
		name, _ := row[0].(string)
		out = append(out, name)
	}
	return out
}

func TestRouter_Recommendations(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		path      string
		wantNames []string
	}{
		{
			name: "rating italian",
			path: "/api/recommendations?strategy=Rating&cuisine=Italian",
			wantNames: []string{
				"La Pergola", "Luigi's", "Trattoria Roma", "Forno Campo", "Pizzeria Da Mario", "Osteria del Sole",
			},
		},
		{
			name:      "price pizza drops duplicate listing",
			path:      "/api/recommendations?strategy=Price&cuisine=Pizza",
			wantNames: []string{"Pizzeria Da Mario", "Luigi's"},
		},
		{
			name:      "nearby japanese skips restaurant without location",
			path:      "/api/recommendations?strategy=Nearby&cuisine=Japanese",
			wantNames: []string{"Tokyo Bar"},
		},
		{
			name:      "unknown cuisine",
			path:      "/api/recommendations?strategy=Personalized&cuisine=Sushi",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp handlers.RecommendationResponse
			if code := get(t, srv, tt.path, &resp); code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", code)
			}
			got := tableNames(resp)
			if strings.Join(got, "|") != strings.Join(tt.wantNames, "|") {
				t.Errorf("expected %v, got %v", tt.wantNames, got)
			}
		})
	}
}

func TestRouter_TopTenLimit(t *testing.T) {
	srv := newTestServer(t)

	for _, s := range recommend.Strategies() {
		var resp handlers.RecommendationResponse
		if code := get(t, srv, "/api/recommendations?strategy="+s.String(), &resp); code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", s, code)
		}
		if len(resp.Table.Rows) > recommend.DefaultLimit {
			t.Errorf("%s: expected at most %d rows, got %d", s, recommend.DefaultLimit, len(resp.Table.Rows))
		}
	}
}

func TestRouter_Endpoints(t *testing.T) {
	srv := newTestServer(t)

	var health handlers.HealthResponse
	if code := get(t, srv, "/health", &health); code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", code)
	}
	if health.Dataset == nil || health.Dataset.Rows[dataset.TableRestaurant] != 12 {
		t.Errorf("expected 12 restaurant rows in health stats, got %+v", health.Dataset)
	}

	var cuisines []string
	if code := get(t, srv, "/api/cuisines", &cuisines); code != http.StatusOK {
		t.Fatalf("expected cuisines 200, got %d", code)
	}
	if len(cuisines) != 6 {
		t.Errorf("expected 6 cuisines, got %v", cuisines)
	}

	if code := get(t, srv, "/api/restaurant/3", nil); code != http.StatusOK {
		t.Errorf("expected restaurant 200, got %d", code)
	}
	if code := get(t, srv, "/api/restaurant/300", nil); code != http.StatusNotFound {
		t.Errorf("expected restaurant 404, got %d", code)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "api_requests_total") {
		t.Error("expected api_requests_total in metrics output")
	}
}
