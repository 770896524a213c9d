package models

// Restaurant is a single row of the restaurant table.
// Optional numeric fields are nil when the source value is missing or unparseable.
// A zero latitude or longitude is stored as nil ("no location").
type Restaurant struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Rating    *float64 `json:"rating"`
	Price     *float64 `json:"price"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasLocation reports whether both coordinates are known
func (r Restaurant) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// CuisineLink ties a restaurant to one cuisine it serves
type CuisineLink struct {
	RestaurantID int64  `json:"rid"`
	Cuisine      string `json:"cuisine"`
}

// Review is one user review score for a restaurant
type Review struct {
	RestaurantID int64    `json:"rid"`
	Rating       *float64 `json:"rating"`
}

// TimingSlot records that a restaurant declared open-hours data.
// Window holds every non-key column of the timing row.
type TimingSlot struct {
	RestaurantID int64             `json:"rid"`
	Window       map[string]string `json:"window,omitempty"`
}

// PaymentOption is a payment method accepted by a restaurant
type PaymentOption struct {
	RestaurantID int64  `json:"rid"`
	Method       string `json:"method"`
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Float returns a pointer to v, for building optional fields
func Float(v float64) *float64 {
	return &v
}
