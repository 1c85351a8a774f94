package models

import "time"

const (
	DirectionOutbound = "Outbound"
	DirectionReturn   = "Return"
)

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SegmentPoint struct {
	Airport string    `json:"airport"`
	Time    time.Time `json:"time"`
}

type Segment struct {
	Departure        SegmentPoint `json:"departure"`
	Arrival          SegmentPoint `json:"arrival"`
	DurationMinutes  int          `json:"duration_minutes"`
	MarketingAirline Airline      `json:"marketing_airline"`
	OperatingAirline Airline      `json:"operating_airline"`
	FlightNumber     string       `json:"flight_number"`
	Aircraft         string       `json:"aircraft,omitempty"`
	CabinClass       string       `json:"cabin_class,omitempty"`
	AirlineLogo      string       `json:"airline_logo,omitempty"`
}

type Itinerary struct {
	Direction       string    `json:"direction"`
	DurationMinutes int       `json:"duration_minutes"`
	Stops           int       `json:"stops"`
	Segments        []Segment `json:"segments"`
}

type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted,omitempty"`
}

type Baggage struct {
	CabinKg   float64 `json:"cabin_kg"`
	CheckedKg float64 `json:"checked_kg"`
}

// Offer is the canonical provider-agnostic flight offer. Adapters produce it
// from native payloads; everything downstream treats it as read-only.
type Offer struct {
	ID                string      `json:"id"`
	Provider          string      `json:"provider"`
	Price             Price       `json:"price"`
	Itineraries       []Itinerary `json:"itineraries"`
	Baggage           Baggage     `json:"baggage"`
	Refundable        bool        `json:"refundable"`
	AvailableSeats    int         `json:"available_seats"`
	ValidatingCarrier string      `json:"validating_carrier,omitempty"`
	FareConditions    []string    `json:"fare_conditions,omitempty"`
	LastTicketingDate string      `json:"last_ticketing_date,omitempty"`
}

// Outbound returns the outbound itinerary, or nil when the offer has none.
func (o *Offer) Outbound() *Itinerary {
	return o.itinerary(DirectionOutbound)
}

// Return returns the inbound itinerary, or nil for one-way offers.
func (o *Offer) Return() *Itinerary {
	return o.itinerary(DirectionReturn)
}

func (o *Offer) itinerary(direction string) *Itinerary {
	for i := range o.Itineraries {
		if o.Itineraries[i].Direction == direction {
			return &o.Itineraries[i]
		}
	}
	return nil
}
