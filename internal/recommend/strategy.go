package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStrategy = errors.New("unknown recommendation strategy")

// Strategy selects how restaurants are filtered and ranked
type Strategy int

const (
	// Nearby ranks located restaurants by rating, or by distance when an origin is given
	Nearby Strategy = iota
	// Rating ranks by restaurant rating, highest first
	Rating
	// Price ranks by price, cheapest first
	Price
	// Personalized ranks by mean user review score, then price
	Personalized
	// TimingBased ranks restaurants that publish opening hours by rating
	TimingBased
)

var strategyLabels = []string{"Nearby", "Rating", "Price", "Personalized", "Timing Based"}

// Strategies returns every strategy in display order
func Strategies() []Strategy {
	return []Strategy{Nearby, Rating, Price, Personalized, TimingBased}
}

// Label returns the display label, e.g. "Timing Based"
func (s Strategy) Label() string {
	if s < Nearby || s > TimingBased {
		return "Unknown"
	}
	return strategyLabels[s]
}

// String returns the snake_case name used in metrics and events
func (s Strategy) String() string {
	if s < Nearby || s > TimingBased {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(strategyLabels[s]), " ", "_")
}

// ParseStrategy maps a display label or snake_case name to a Strategy.
// Matching is case-insensitive.
func ParseStrategy(label string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)

	for _, s := range Strategies() {
		if normalized == strings.ToLower(s.Label()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, label)
}

// MarshalText encodes the strategy as its snake_case name
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
