package models

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const maxSeatedTravelers = 9

type SearchFilters struct {
	MaxPrice         *float64 `json:"max_price,omitempty"`
	NonStop          bool     `json:"non_stop,omitempty"`
	IncludedAirlines []string `json:"included_airlines,omitempty"`
	ExcludedAirlines []string `json:"excluded_airlines,omitempty"`
}

type SearchQuery struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    string         `json:"return_date,omitempty"`
	Adults        int            `json:"adults"`
	Children      int            `json:"children"`
	Infants       int            `json:"infants"`
	CabinClass    string         `json:"cabin_class,omitempty"`
	Currency      string         `json:"currency,omitempty"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by,omitempty"`
	SortOrder     string         `json:"sort_order,omitempty"`
}

// Validate checks the query's structural rules and returns a field-keyed map
// of messages. An empty map means the query is valid. Defaults for cabin
// class and sorting are filled in here so callers see one canonical query.
func (q *SearchQuery) Validate(now time.Time) map[string][]string {
	errs := map[string][]string{}
	add := func(field, msg string) {
		errs[field] = append(errs[field], msg)
	}

	if !isAirportCode(q.Origin) {
		add("origin", "must be a 3-letter IATA airport code")
	}
	if !isAirportCode(q.Destination) {
		add("destination", "must be a 3-letter IATA airport code")
	}
	if isAirportCode(q.Origin) && isAirportCode(q.Destination) && strings.EqualFold(q.Origin, q.Destination) {
		add("destination", "must differ from origin")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var departure time.Time
	if q.DepartureDate == "" {
		add("departure_date", "is required")
	} else if d, err := time.ParseInLocation(dateLayout, q.DepartureDate, now.Location()); err != nil {
		add("departure_date", "must use the yyyy-MM-dd format")
	} else if d.Before(today) {
		add("departure_date", "must not be in the past")
	} else {
		departure = d
	}

	if q.ReturnDate != "" {
		if r, err := time.ParseInLocation(dateLayout, q.ReturnDate, now.Location()); err != nil {
			add("return_date", "must use the yyyy-MM-dd format")
		} else if r.Before(today) {
			add("return_date", "must not be in the past")
		} else if !departure.IsZero() && r.Before(departure) {
			add("return_date", "must not be before the departure date")
		}
	}

	if q.Adults < 1 {
		add("adults", "at least one adult is required")
	}
	if q.Children < 0 {
		add("children", "must not be negative")
	}
	if q.Infants < 0 {
		add("infants", "must not be negative")
	}
	if seated := q.Adults + q.Children; seated > maxSeatedTravelers {
		add("adults", fmt.Sprintf("total seated travelers must not exceed %d", maxSeatedTravelers))
	}
	if q.Infants > q.Adults {
		add("infants", "must not exceed the number of adults")
	}

	if len(errs) > 0 {
		return errs
	}

	if q.CabinClass == "" {
		q.CabinClass = "economy"
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}
	if q.SortBy == "" {
		q.SortBy = "price"
	}
	if q.SortOrder == "" {
		q.SortOrder = "asc"
	}
	return errs
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
