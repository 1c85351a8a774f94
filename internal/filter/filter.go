package filter

import (
	"sort"
	"strings"

	"github.com/tobikareem/desola-flights/internal/models"
)

// Apply runs the query's optional filters over the combined offers and sorts
// the survivors. The input slice is not reordered.
func Apply(offers []models.Offer, filters *models.SearchFilters, sortBy, sortOrder string) []models.Offer {
	filtered := applyFilters(offers, filters)
	return applySort(filtered, sortBy, sortOrder)
}

func applyFilters(offers []models.Offer, filters *models.SearchFilters) []models.Offer {
	result := make([]models.Offer, 0, len(offers))
	if filters == nil {
		return append(result, offers...)
	}

	included := normalizeCodes(filters.IncludedAirlines)
	excluded := normalizeCodes(filters.ExcludedAirlines)

	for _, offer := range offers {
		if matchesFilters(offer, filters, included, excluded) {
			result = append(result, offer)
		}
	}
	return result
}

func matchesFilters(offer models.Offer, filters *models.SearchFilters, included, excluded map[string]struct{}) bool {
	if filters.MaxPrice != nil && offer.Price.Amount > *filters.MaxPrice {
		return false
	}

	if filters.NonStop {
		for _, itinerary := range offer.Itineraries {
			if itinerary.Stops > 0 {
				return false
			}
		}
	}

	if len(included) > 0 && !carriesAirlineFrom(offer, included) {
		return false
	}
	if len(excluded) > 0 && carriesAirlineFrom(offer, excluded) {
		return false
	}

	return true
}

func carriesAirlineFrom(offer models.Offer, codes map[string]struct{}) bool {
	if _, ok := codes[strings.ToUpper(offer.ValidatingCarrier)]; ok {
		return true
	}
	for _, itinerary := range offer.Itineraries {
		for _, segment := range itinerary.Segments {
			if _, ok := codes[strings.ToUpper(segment.MarketingAirline.Code)]; ok {
				return true
			}
		}
	}
	return false
}

func applySort(offers []models.Offer, sortBy, sortOrder string) []models.Offer {
	if len(offers) == 0 {
		return offers
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	var less func(i, j int) bool
	switch strings.ToLower(sortBy) {
	case "duration":
		less = func(i, j int) bool {
			return totalDuration(offers[i]) < totalDuration(offers[j])
		}
	case "stops":
		less = func(i, j int) bool {
			return totalStops(offers[i]) < totalStops(offers[j])
		}
	default:
		less = func(i, j int) bool {
			return offers[i].Price.Amount < offers[j].Price.Amount
		}
	}

	if ascending {
		sort.SliceStable(offers, less)
	} else {
		sort.SliceStable(offers, func(i, j int) bool { return less(j, i) })
	}
	return offers
}

func totalDuration(offer models.Offer) int {
	total := 0
	for _, itinerary := range offer.Itineraries {
		total += itinerary.DurationMinutes
	}
	return total
}

func totalStops(offer models.Offer) int {
	total := 0
	for _, itinerary := range offer.Itineraries {
		total += itinerary.Stops
	}
	return total
}

func normalizeCodes(codes []string) map[string]struct{} {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}
