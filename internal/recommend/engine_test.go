package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
)

func restaurant(id int64, name string, rating, price float64, lat, lon float64) models.Restaurant {
	r := models.Restaurant{
		ID:      id,
		Name:    name,
		Address: fmt.Sprintf("%d Main Street", id),
		City:    "Rome",
		Rating:  models.Float(rating),
		Price:   models.Float(price),
	}
	if lat != 0 && lon != 0 {
		r.Latitude = models.Float(lat)
		r.Longitude = models.Float(lon)
	}
	return r
}

func scenarioDataset() *dataset.Dataset {
	r4 := restaurant(4, "Curry House", 0, 12, 41.91, 12.50)
	r4.Rating = nil

	return &dataset.Dataset{
		Restaurants: []models.Restaurant{
			restaurant(2, "Luigi's", 4.8, 35, 41.95, 12.55),
			restaurant(1, "Trattoria Roma", 4.5, 20, 41.90, 12.49),
			restaurant(3, "Sushi Zero", 4.9, 50, 0, 0),
			r4,
		},
		CuisineLinks: []models.CuisineLink{
			{RestaurantID: 1, Cuisine: "Italian"},
			{RestaurantID: 2, Cuisine: "Italian"},
			{RestaurantID: 2, Cuisine: "Italian"},
			{RestaurantID: 3, Cuisine: "Japanese"},
			{RestaurantID: 4, Cuisine: "Indian"},
		},
		Reviews: []models.Review{
			{RestaurantID: 1, Rating: models.Float(5)},
			{RestaurantID: 1, Rating: models.Float(4)},
			{RestaurantID: 2, Rating: models.Float(3)},
			{RestaurantID: 4, Rating: nil},
		},
		Timing: []models.TimingSlot{
			{RestaurantID: 1, Window: map[string]string{"hours": "12-23"}},
			{RestaurantID: 3, Window: map[string]string{"hours": "18-23"}},
		},
	}
}

func ids(recs []models.Recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.Restaurant.ID
	}
	return out
}

func TestEngine_Recommend_Scenarios(t *testing.T) {
	engine := NewEngine(scenarioDataset())

	tests := []struct {
		name    string
		query   Query
		wantIDs []int64
	}{
		{"rating italian", Query{Strategy: Rating, Cuisine: "Italian"}, []int64{2, 1}},
		{"price italian", Query{Strategy: Price, Cuisine: "Italian"}, []int64{1, 2}},
		{"rating all, missing rating last", Query{Strategy: Rating}, []int64{3, 2, 1, 4}},
		{"price all", Query{Strategy: Price}, []int64{4, 1, 2, 3}},
		{"nearby excludes zero coordinates", Query{Strategy: Nearby}, []int64{2, 1, 4}},
		{"nearby with cuisine", Query{Strategy: Nearby, Cuisine: "Japanese"}, []int64{}},
		{"personalized unreviewed last by price", Query{Strategy: Personalized}, []int64{1, 2, 4, 3}},
		{"timing based only timed restaurants", Query{Strategy: TimingBased}, []int64{3, 1}},
		{"timing based with cuisine", Query{Strategy: TimingBased, Cuisine: "Italian"}, []int64{1}},
		{"unknown cuisine", Query{Strategy: Rating, Cuisine: "Sushi"}, []int64{}},
		{"cuisine is case sensitive", Query{Strategy: Rating, Cuisine: "italian"}, []int64{}},
		{"limit", Query{Strategy: Rating, Limit: 2}, []int64{3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := engine.Recommend(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(recs); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("expected ids %v, got %v", tt.wantIDs, got)
			}
			for i, r := range recs {
				if r.Rank != i+1 {
					t.Errorf("expected rank %d at position %d, got %d", i+1, i, r.Rank)
				}
			}
		})
	}
}

func TestEngine_Recommend_UnknownCuisineEmptyForEveryStrategy(t *testing.T) {
	engine := NewEngine(scenarioDataset())

	for _, s := range Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			recs, err := engine.Recommend(context.Background(), Query{Strategy: s, Cuisine: "Sushi"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("expected empty result, got %v", ids(recs))
			}
		})
	}
}

func TestEngine_Recommend_PersonalizedScores(t *testing.T) {
	engine := NewEngine(scenarioDataset())

	recs, err := engine.Recommend(context.Background(), Query{Strategy: Personalized})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recs[0].UserScore == nil || *recs[0].UserScore != 4.5 {
		t.Errorf("expected mean score 4.5 for first result, got %v", recs[0].UserScore)
	}
	if recs[2].UserScore != nil {
		t.Errorf("expected no score for unreviewed restaurant, got %v", *recs[2].UserScore)
	}
}

func TestEngine_Recommend_NearbyWithOrigin(t *testing.T) {
	engine := NewEngine(scenarioDataset())

	// next to Curry House
	origin := &models.Coordinates{Lat: 41.91, Lon: 12.50}
	recs, err := engine.Recommend(context.Background(), Query{Strategy: Nearby, Origin: origin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(recs); !reflect.DeepEqual(got, []int64{4, 1, 2}) {
		t.Fatalf("expected distance order [4 1 2], got %v", got)
	}
	for i, r := range recs {
		if r.DistanceKm == nil {
			t.Fatalf("expected distance on result %d", i)
		}
		if i > 0 && *recs[i-1].DistanceKm > *r.DistanceKm {
			t.Errorf("distances not ascending at %d: %v > %v", i, *recs[i-1].DistanceKm, *r.DistanceKm)
		}
	}
	if *recs[0].DistanceKm != 0 {
		t.Errorf("expected zero distance at origin, got %v", *recs[0].DistanceKm)
	}
}

func TestEngine_Recommend_Deduplicates(t *testing.T) {
	ds := scenarioDataset()
	dup := restaurant(9, "Luigi's", 3.0, 10, 41.95, 12.55)
	dup.Address = "2 Main Street"
	ds.Restaurants = append(ds.Restaurants, dup)

	engine := NewEngine(ds)

	// Price puts the cheaper duplicate first, so it is the one kept
	recs, err := engine.Recommend(context.Background(), Query{Strategy: Price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(recs); !reflect.DeepEqual(got, []int64{9, 4, 1, 3}) {
		t.Errorf("expected ids [9 4 1 3], got %v", got)
	}
}

func largeDataset(n int) *dataset.Dataset {
	ds := &dataset.Dataset{}
	for i := 1; i <= n; i++ {
		id := int64(i)
		r := restaurant(id, fmt.Sprintf("Place %d", i%7), float64(i%5), float64((i*37)%90), 40+float64(i)/100, 10+float64(i)/100)
		// share addresses so some (name, address) pairs collide
		r.Address = fmt.Sprintf("%d Via Roma", i%11)
		if i%6 == 0 {
			r.Rating = nil
		}
		if i%8 == 0 {
			r.Price = nil
		}
		ds.Restaurants = append(ds.Restaurants, r)
		ds.CuisineLinks = append(ds.CuisineLinks, models.CuisineLink{RestaurantID: id, Cuisine: "Italian"})
		ds.Reviews = append(ds.Reviews, models.Review{RestaurantID: id, Rating: models.Float(float64(i % 4))})
		if i%2 == 0 {
			ds.Timing = append(ds.Timing, models.TimingSlot{RestaurantID: id})
		}
	}
	return ds
}

func TestEngine_Recommend_Properties(t *testing.T) {
	engine := NewEngine(largeDataset(120))

	for _, s := range Strategies() {
		for _, cuisine := range []string{"", "Italian"} {
			t.Run(s.String()+"/"+cuisine, func(t *testing.T) {
				q := Query{Strategy: s, Cuisine: cuisine}
				recs, err := engine.Recommend(context.Background(), q)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if len(recs) > DefaultLimit {
					t.Errorf("expected at most %d results, got %d", DefaultLimit, len(recs))
				}

				seen := make(map[[2]string]bool)
				for _, r := range recs {
					key := [2]string{r.Restaurant.Name, r.Restaurant.Address}
					if seen[key] {
						t.Errorf("duplicate (name, address) %v", key)
					}
					seen[key] = true
				}

				for i := 1; i < len(recs); i++ {
					a, b := recs[i-1].Restaurant, recs[i].Restaurant
					switch s {
					case Rating:
						if b.Rating != nil && (a.Rating == nil || *a.Rating < *b.Rating) {
							t.Errorf("rating not descending at %d", i)
						}
					case Price:
						if b.Price != nil && (a.Price == nil || *a.Price > *b.Price) {
							t.Errorf("price not ascending at %d", i)
						}
					}
				}

				again, err := engine.Recommend(context.Background(), q)
				if err != nil {
					t.Fatalf("unexpected error on second call: %v", err)
				}
				if !reflect.DeepEqual(recs, again) {
					t.Error("expected identical output for identical queries")
				}
			})
		}
	}
}

func TestEngine_Recommend_Errors(t *testing.T) {
	engine := NewEngine(scenarioDataset())

	_, err := engine.Recommend(context.Background(), Query{Strategy: Strategy(42)})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Recommend(ctx, Query{Strategy: Rating})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHaversineKm(t *testing.T) {
	// Rome to Milan is roughly 477 km
	d := haversineKm(41.9028, 12.4964, 45.4642, 9.1900)
	if d < 470 || d > 485 {
		t.Errorf("expected about 477 km, got %.1f", d)
	}
	if d := haversineKm(10, 10, 10, 10); d != 0 {
		t.Errorf("expected zero distance, got %v", d)
	}
}
