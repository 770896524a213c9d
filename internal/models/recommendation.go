package models

// Recommendation is a ranked restaurant decorated with the values used for display
type Recommendation struct {
	Rank       int        `json:"rank"`
	Restaurant Restaurant `json:"restaurant"`
	UserScore  *float64   `json:"user_score,omitempty"`
	DistanceKm *float64   `json:"distance_km,omitempty"`
}
