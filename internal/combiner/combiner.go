// Package combiner merges per-provider responses into one result set:
// offers for the same route collapse to their cheapest representative, and
// missing airline logos are repaired from the shared index.
package combiner

import (
	"sort"

	"github.com/tobikareem/desola-flights/internal/models"
)

// Combine flattens the provider responses, groups offers by route key, keeps
// the cheapest offer per group (first encountered wins ties) and returns the
// representatives sorted by price. The input offers are not mutated; logo
// repair happens on copies.
func Combine(responses []*models.SearchResponse, logos map[string]string) *models.SearchResponse {
	var flattened []models.Offer
	for _, resp := range responses {
		if resp == nil {
			continue
		}
		flattened = append(flattened, resp.Offers...)
	}

	if len(flattened) == 0 {
		return models.EmptySearchResponse()
	}

	bestByRoute := make(map[string]models.Offer, len(flattened))
	routeOrder := make([]string, 0, len(flattened))

	for _, offer := range flattened {
		key := RouteKey(&offer)
		current, seen := bestByRoute[key]
		if !seen {
			bestByRoute[key] = offer
			routeOrder = append(routeOrder, key)
			continue
		}
		if offer.Price.Amount < current.Price.Amount {
			bestByRoute[key] = offer
		}
	}

	representatives := make([]models.Offer, 0, len(routeOrder))
	for _, key := range routeOrder {
		representatives = append(representatives, repairLogos(bestByRoute[key], logos))
	}

	sort.SliceStable(representatives, func(i, j int) bool {
		return representatives[i].Price.Amount < representatives[j].Price.Amount
	})

	currency := "USD"
	if representatives[0].Price.Currency != "" {
		currency = representatives[0].Price.Currency
	}

	return &models.SearchResponse{
		Currency: currency,
		Total:    len(representatives),
		Offers:   representatives,
	}
}

// RouteKey is "{outboundOrigin}-{outboundDestination}|{inboundOrigin}-{inboundDestination}",
// built from each leg's first departure and final arrival so connections on
// the same route group together. A missing leg contributes an empty
// component, so a one-way JFK-LAX offer keys as "JFK-LAX|".
func RouteKey(offer *models.Offer) string {
	return legKey(offer.Outbound()) + "|" + legKey(offer.Return())
}

func legKey(itinerary *models.Itinerary) string {
	if itinerary == nil || len(itinerary.Segments) == 0 {
		return ""
	}
	first := itinerary.Segments[0]
	last := itinerary.Segments[len(itinerary.Segments)-1]
	return first.Departure.Airport + "-" + last.Arrival.Airport
}

// repairLogos fills empty segment logos from the index, copying the offer's
// itinerary slices so the input stays untouched.
func repairLogos(offer models.Offer, logos map[string]string) models.Offer {
	if len(logos) == 0 {
		return offer
	}

	needsRepair := false
	for _, itinerary := range offer.Itineraries {
		for _, segment := range itinerary.Segments {
			if segment.AirlineLogo == "" {
				if _, ok := logos[segment.MarketingAirline.Code]; ok {
					needsRepair = true
				}
			}
		}
	}
	if !needsRepair {
		return offer
	}

	itineraries := make([]models.Itinerary, len(offer.Itineraries))
	copy(itineraries, offer.Itineraries)
	for i := range itineraries {
		segments := make([]models.Segment, len(itineraries[i].Segments))
		copy(segments, itineraries[i].Segments)
		for j := range segments {
			if segments[j].AirlineLogo == "" {
				if url, ok := logos[segments[j].MarketingAirline.Code]; ok {
					segments[j].AirlineLogo = url
				}
			}
		}
		itineraries[i].Segments = segments
	}
	offer.Itineraries = itineraries
	return offer
}
