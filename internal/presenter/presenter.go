// Package presenter shapes ranked recommendations into the table and map views
// shown to users, along with the messages for empty or partial results.
package presenter

import (
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
)

const (
	// EmptyMessage is shown when a recommendation returns no restaurants
	EmptyMessage = "No matching recommendations found."
	// NoLocationMessage is shown when no recommended restaurant can be placed on a map
	NoLocationMessage = "No location data available for these recommendations."
)

// Display columns
const (
	ColumnName       = "name"
	ColumnAddress    = "address"
	ColumnCity       = "city"
	ColumnRating     = "rating"
	ColumnPrice      = "price"
	ColumnLatitude   = "latitude"
	ColumnLongitude  = "longitude"
	ColumnUserScore  = "user_score"
	ColumnDistanceKm = "distance_km"
)

// DefaultColumns is the column set used when the caller asks for none
var DefaultColumns = []string{ColumnName, ColumnAddress, ColumnCity, ColumnRating, ColumnPrice}

var columnValues = map[string]func(models.Recommendation) any{
	ColumnName:       func(r models.Recommendation) any { return r.Restaurant.Name },
	ColumnAddress:    func(r models.Recommendation) any { return r.Restaurant.Address },
	ColumnCity:       func(r models.Recommendation) any { return r.Restaurant.City },
	ColumnRating:     func(r models.Recommendation) any { return optional(r.Restaurant.Rating) },
	ColumnPrice:      func(r models.Recommendation) any { return optional(r.Restaurant.Price) },
	ColumnLatitude:   func(r models.Recommendation) any { return optional(r.Restaurant.Latitude) },
	ColumnLongitude:  func(r models.Recommendation) any { return optional(r.Restaurant.Longitude) },
	ColumnUserScore:  func(r models.Recommendation) any { return optional(r.UserScore) },
	ColumnDistanceKm: func(r models.Recommendation) any { return optional(r.DistanceKm) },
}

// MissingColumnError reports display columns that do not exist
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("unknown display columns: %s", strings.Join(e.Columns, ", "))
}

// Table is a row-major projection of recommendations onto display columns.
// Missing values are nil.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// MapPoint is one restaurant marker
type MapPoint struct {
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapView holds the markers for located restaurants
type MapView struct {
	Points  []MapPoint `json:"points"`
	Message string     `json:"message,omitempty"`
}

// ParseColumns splits a comma separated column list.
// An empty list yields DefaultColumns.
func ParseColumns(raw string) []string {
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return append([]string(nil), DefaultColumns...)
	}
	return cols
}

// ValidateColumns returns a *MissingColumnError naming every unknown column
func ValidateColumns(cols []string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := columnValues[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// BuildTable projects recs onto cols in rank order
func BuildTable(recs []models.Recommendation, cols []string) (Table, error) {
	if len(cols) == 0 {
		cols = DefaultColumns
	}

	if err := ValidateColumns(cols); err != nil {
		return Table{}, err
	}

	table := Table{
		Columns: append([]string(nil), cols...),
		Rows:    make([][]any, 0, len(recs)),
	}
	for _, r := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = columnValues[c](r)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// BuildMap returns markers for every recommendation with both coordinates
func BuildMap(recs []models.Recommendation) MapView {
	view := MapView{Points: make([]MapPoint, 0, len(recs))}
	for _, r := range recs {
		if !r.Restaurant.HasLocation() {
			continue
		}
		view.Points = append(view.Points, MapPoint{
			Rank:      r.Rank,
			Name:      r.Restaurant.Name,
			Address:   r.Restaurant.Address,
			Latitude:  *r.Restaurant.Latitude,
			Longitude: *r.Restaurant.Longitude,
		})
	}
	if len(view.Points) == 0 {
		view.Message = NoLocationMessage
	}
	return view
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
