package recommend

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
)

// DefaultLimit is the maximum number of restaurants returned per recommendation
const DefaultLimit = 10

// Query describes one recommendation request
type Query struct {
	Strategy Strategy
	// Cuisine filters to restaurants linked to this exact cuisine name.
	// Empty means no cuisine filter.
	Cuisine string
	// Origin switches Nearby to true distance ranking when set
	Origin *models.Coordinates
	// Limit caps the result size; values outside 1..DefaultLimit use DefaultLimit
	Limit int
}

// Engine ranks restaurants from an immutable dataset.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	restaurants []models.Restaurant
	byCuisine   map[string]map[int64]struct{}
	timed       map[int64]struct{}
	scores      map[int64]float64
}

// candidate is a restaurant plus the derived values a strategy may rank on
type candidate struct {
	restaurant models.Restaurant
	userScore  *float64
	distanceKm *float64
}

type dedupeKey struct {
	name    string
	address string
}

// NewEngine indexes the dataset for ranking
func NewEngine(ds *dataset.Dataset) *Engine {
	e := &Engine{
		restaurants: slices.Clone(ds.Restaurants),
		byCuisine:   make(map[string]map[int64]struct{}),
		timed:       make(map[int64]struct{}, len(ds.Timing)),
		scores:      AggregateUserScores(ds.Reviews),
	}

	slices.SortFunc(e.restaurants, func(a, b models.Restaurant) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, link := range ds.CuisineLinks {
		ids, ok := e.byCuisine[link.Cuisine]
		if !ok {
			ids = make(map[int64]struct{})
			e.byCuisine[link.Cuisine] = ids
		}
		ids[link.RestaurantID] = struct{}{}
	}

	for _, slot := range ds.Timing {
		e.timed[slot.RestaurantID] = struct{}{}
	}

	return e
}

// Recommend filters, ranks, de-duplicates on (name, address) and truncates.
// An empty result is not an error.
func (e *Engine) Recommend(ctx context.Context, q Query) ([]models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Strategy < Nearby || q.Strategy > TimingBased {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, q.Strategy)
	}

	limit := q.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	candidates := e.candidates(q)
	slices.SortFunc(candidates, comparator(q))

	results := make([]models.Recommendation, 0, limit)
	seen := make(map[dedupeKey]struct{}, limit)
	for _, c := range candidates {
		if len(results) == limit {
			break
		}

		key := dedupeKey{name: c.restaurant.Name, address: c.restaurant.Address}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		results = append(results, models.Recommendation{
			Rank:       len(results) + 1,
			Restaurant: c.restaurant,
			UserScore:  c.userScore,
			DistanceKm: c.distanceKm,
		})
	}

	return results, nil
}

// candidates applies the cuisine filter and the strategy's own filter
func (e *Engine) candidates(q Query) []candidate {
	var cuisineIDs map[int64]struct{}
	if q.Cuisine != "" {
		ids, ok := e.byCuisine[q.Cuisine]
		if !ok {
			return nil
		}
		cuisineIDs = ids
	}

	useDistance := q.Strategy == Nearby && q.Origin != nil

	var out []candidate
	for _, r := range e.restaurants {
		if cuisineIDs != nil {
			if _, ok := cuisineIDs[r.ID]; !ok {
				continue
			}
		}

		switch q.Strategy {
		case Nearby:
			if !r.HasLocation() {
				continue
			}
		case TimingBased:
			if _, ok := e.timed[r.ID]; !ok {
				continue
			}
		}

		c := candidate{restaurant: r}
		if score, ok := e.scores[r.ID]; ok {
			c.userScore = &score
		}
		if useDistance {
			d := haversineKm(q.Origin.Lat, q.Origin.Lon, *r.Latitude, *r.Longitude)
			c.distanceKm = &d
		}
		out = append(out, c)
	}

	return out
}

// comparator returns the strategy's total order. Restaurant id breaks every tie
// so identical queries always produce identical output.
func comparator(q Query) func(a, b candidate) int {
	var keys []func(a, b candidate) int

	switch q.Strategy {
	case Nearby:
		if q.Origin != nil {
			keys = append(keys, func(a, b candidate) int { return ascending(a.distanceKm, b.distanceKm) })
		}
		keys = append(keys, byRating, byPrice)
	case Rating, TimingBased:
		keys = append(keys, byRating)
	case Price:
		keys = append(keys, byPrice)
	case Personalized:
		keys = append(keys, func(a, b candidate) int { return descending(a.userScore, b.userScore) }, byPrice)
	}

	return func(a, b candidate) int {
		for _, key := range keys {
			if c := key(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.restaurant.ID, b.restaurant.ID)
	}
}

func byRating(a, b candidate) int {
	return descending(a.restaurant.Rating, b.restaurant.Rating)
}

func byPrice(a, b candidate) int {
	return ascending(a.restaurant.Price, b.restaurant.Price)
}

// ascending orders low to high with missing values last
func ascending(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

// descending orders high to low with missing values last
func descending(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}
