package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/models"
)

// Required columns per table. The restaurant table additionally needs price or cost.
var requiredColumns = map[string][]string{
	TableRestaurant: {"id", "name", "address", "city", "rating", "latitude", "longitude"},
	TableCuisine:    {"rid", "cuisine"},
	TableReviews:    {"rid", "rating"},
	TableTiming:     {"rid"},
	TablePayment:    {"rid"},
}

// Dataset is the immutable in-memory form of the six source tables
type Dataset struct {
	Restaurants   []models.Restaurant
	CuisineLinks  []models.CuisineLink
	Payments      []models.PaymentOption
	Reviews       []models.Review
	Timing        []models.TimingSlot
	TimingCuisine *Table

	byID     map[int64]int
	cuisines []string
	stats    Stats
}

// Stats summarizes a loaded dataset
type Stats struct {
	Rows    map[string]int `json:"rows"`
	Skipped map[string]int `json:"skipped_rows"`
}

// Build validates raw tables and converts them into typed entities
func Build(tables map[string]*Table) (*Dataset, error) {
	for _, name := range TableNames {
		t, ok := tables[name]
		if !ok || t == nil {
			return nil, &DataLoadError{Table: name, Err: fmt.Errorf("table not provided")}
		}
		if err := t.Require(requiredColumns[name]...); err != nil {
			return nil, &DataLoadError{Table: name, Err: err}
		}
	}

	ds := &Dataset{
		TimingCuisine: tables[TableTimingCuisine],
		byID:          make(map[int64]int),
		stats: Stats{
			Rows:    make(map[string]int, len(TableNames)),
			Skipped: make(map[string]int),
		},
	}

	if err := ds.buildRestaurants(tables[TableRestaurant]); err != nil {
		return nil, &DataLoadError{Table: TableRestaurant, Err: err}
	}
	ds.buildCuisineLinks(tables[TableCuisine])
	ds.buildReviews(tables[TableReviews])
	ds.buildTiming(tables[TableTiming])
	ds.buildPayments(tables[TablePayment])

	for _, name := range TableNames {
		ds.stats.Rows[name] = tables[name].Len()
	}

	return ds, nil
}

func (ds *Dataset) buildRestaurants(t *Table) error {
	priceColumn := "price"
	if !t.Has(priceColumn) {
		priceColumn = "cost"
		if !t.Has(priceColumn) {
			return ErrNoPriceColumn
		}
	}

	ds.Restaurants = make([]models.Restaurant, 0, t.Len())
	for i, row := range t.Rows {
		id, err := parseID(t.Value(row, "id"))
		if err != nil {
			// header is line 1
			return fmt.Errorf("line %d: %w", i+2, err)
		}
		if _, exists := ds.byID[id]; exists {
			return fmt.Errorf("line %d: %w: %d", i+2, ErrDuplicateID, id)
		}

		r := models.Restaurant{
			ID:        id,
			Name:      t.Value(row, "name"),
			Address:   t.Value(row, "address"),
			City:      t.Value(row, "city"),
			Rating:    parseNumber(t.Value(row, "rating")),
			Price:     parseNumber(t.Value(row, priceColumn)),
			Latitude:  parseCoordinate(t.Value(row, "latitude")),
			Longitude: parseCoordinate(t.Value(row, "longitude")),
		}

		ds.byID[id] = len(ds.Restaurants)
		ds.Restaurants = append(ds.Restaurants, r)
	}
	return nil
}

func (ds *Dataset) buildCuisineLinks(t *Table) {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		rid, err := parseID(t.Value(row, "rid"))
		cuisine := t.Value(row, "cuisine")
		if err != nil || cuisine == "" {
			ds.stats.Skipped[t.Name]++
			continue
		}
		ds.CuisineLinks = append(ds.CuisineLinks, models.CuisineLink{RestaurantID: rid, Cuisine: cuisine})
		if _, ok := seen[cuisine]; !ok {
			seen[cuisine] = struct{}{}
			ds.cuisines = append(ds.cuisines, cuisine)
		}
	}
	sort.Strings(ds.cuisines)
}

func (ds *Dataset) buildReviews(t *Table) {
	for _, row := range t.Rows {
		rid, err := parseID(t.Value(row, "rid"))
		if err != nil {
			ds.stats.Skipped[t.Name]++
			continue
		}
		ds.Reviews = append(ds.Reviews, models.Review{
			RestaurantID: rid,
			Rating:       parseNumber(t.Value(row, "rating")),
		})
	}
}

func (ds *Dataset) buildTiming(t *Table) {
	for _, row := range t.Rows {
		rid, err := parseID(t.Value(row, "rid"))
		if err != nil {
			ds.stats.Skipped[t.Name]++
			continue
		}

		window := make(map[string]string)
		for i, col := range t.Columns {
			if col == "rid" || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				window[col] = v
			}
		}
		ds.Timing = append(ds.Timing, models.TimingSlot{RestaurantID: rid, Window: window})
	}
}

func (ds *Dataset) buildPayments(t *Table) {
	methodColumn := ""
	for _, candidate := range []string{"method", "payment", "rpayment"} {
		if t.Has(candidate) {
			methodColumn = candidate
			break
		}
	}

	for _, row := range t.Rows {
		rid, err := parseID(t.Value(row, "rid"))
		if err != nil {
			ds.stats.Skipped[t.Name]++
			continue
		}
		p := models.PaymentOption{RestaurantID: rid}
		if methodColumn != "" {
			p.Method = t.Value(row, methodColumn)
		}
		ds.Payments = append(ds.Payments, p)
	}
}

// Restaurant returns the restaurant with the given id
func (ds *Dataset) Restaurant(id int64) (models.Restaurant, bool) {
	i, ok := ds.byID[id]
	if !ok {
		return models.Restaurant{}, false
	}
	return ds.Restaurants[i], true
}

// Cuisines returns the distinct cuisine names in sorted order
func (ds *Dataset) Cuisines() []string {
	out := make([]string, len(ds.cuisines))
	copy(out, ds.cuisines)
	return out
}

// Stats returns row counts per table
func (ds *Dataset) Stats() Stats {
	return ds.stats
}

// parseID accepts integer ids, including the "12.0" form produced by dataframe exports
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return int64(f), nil
}

// parseNumber returns nil for missing or unparseable values.
// Thousands separators and a leading currency symbol are tolerated.
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	for prefixed := false; s != "" && !startsNumber(s, !prefixed); prefixed = true {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// startsNumber reports whether s begins with an optionally signed digit.
// A bare leading dot (".5") only counts when no prefix was stripped, so
// "Rs.500" reads as 500.
func startsNumber(s string, allowDot bool) bool {
	s = strings.TrimPrefix(s, "-")
	if allowDot {
		s = strings.TrimPrefix(s, ".")
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// parseCoordinate treats an exact zero as "no location"
func parseCoordinate(s string) *float64 {
	f := parseNumber(s)
	if f == nil || *f == 0 {
		return nil
	}
	return f
}
