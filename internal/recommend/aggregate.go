package recommend

import "github.com/Lixing-Zhang/restaurant-recommender/internal/models"

// AggregateUserScores returns the mean review rating per restaurant.
// Restaurants without a usable review are absent from the map, not zero.
func AggregateUserScores(reviews []models.Review) map[int64]float64 {
	type acc struct {
		sum   float64
		count int
	}

	totals := make(map[int64]*acc)
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		a, ok := totals[r.RestaurantID]
		if !ok {
			a = &acc{}
			totals[r.RestaurantID] = a
		}
		a.sum += *r.Rating
		a.count++
	}

	scores := make(map[int64]float64, len(totals))
	for id, a := range totals {
		scores[id] = a.sum / float64(a.count)
	}
	return scores
}
