package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tobikareem/desola-flights/internal/models"
	"github.com/tobikareem/desola-flights/pkg/currency"
)

const (
	amadeusName       = "amadeus"
	amadeusTimeLayout = "2006-01-02T15:04:05"
)

var defaultFareConditions = []string{"Changes allowed with fee", "Non-refundable unless stated"}

type amadeusResponse struct {
	Data         []amadeusOffer      `json:"data"`
	Dictionaries amadeusDictionaries `json:"dictionaries"`
}

type amadeusDictionaries struct {
	Carriers map[string]string `json:"carriers"`
	Aircraft map[string]string `json:"aircraft"`
}

type amadeusOffer struct {
	ID                       string             `json:"id"`
	Itineraries              []amadeusItinerary `json:"itineraries"`
	Price                    amadeusPrice       `json:"price"`
	ValidatingAirlineCodes   []string           `json:"validatingAirlineCodes"`
	NumberOfBookableSeats    int                `json:"numberOfBookableSeats"`
	LastTicketingDate        string             `json:"lastTicketingDate"`
	TravelerPricings         []amadeusTraveler  `json:"travelerPricings"`
	PricingOptions           amadeusPricingOpts `json:"pricingOptions"`
}

type amadeusPricingOpts struct {
	Refundable bool `json:"refundableFare"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure amadeusEndpoint `json:"departure"`
	Arrival   amadeusEndpoint `json:"arrival"`
	Carrier   string          `json:"carrierCode"`
	Number    string          `json:"number"`
	Aircraft  amadeusAircraft `json:"aircraft"`
	Operating amadeusCarrier  `json:"operating"`
	Duration  string          `json:"duration"`
}

type amadeusEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type amadeusAircraft struct {
	Code string `json:"code"`
}

type amadeusCarrier struct {
	CarrierCode string `json:"carrierCode"`
}

type amadeusPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type amadeusTraveler struct {
	FareDetailsBySegment []amadeusFareDetail `json:"fareDetailsBySegment"`
}

type amadeusFareDetail struct {
	Cabin               string              `json:"cabin"`
	IncludedCheckedBags amadeusCheckedBags  `json:"includedCheckedBags"`
	AmenitiesProvided   []amadeusFareAmenit `json:"amenities"`
}

type amadeusCheckedBags struct {
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weightUnit"`
}

type amadeusFareAmenit struct {
	Description string `json:"description"`
}

type amadeusErrorEnvelope struct {
	Errors []struct {
		Status int    `json:"status"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// AmadeusProvider talks to the Amadeus flight-offers API using OAuth2
// client-credentials.
type AmadeusProvider struct {
	client  *http.Client
	baseURL string
	tokens  *TokenSource
	raw     RawSink
}

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Client       *http.Client
	Raw          RawSink
}

func NewAmadeusProvider(cfg AmadeusConfig) *AmadeusProvider {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &AmadeusProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  NewTokenSource(client, amadeusName, cfg.BaseURL+"/v1/security/oauth2/token", cfg.ClientID, cfg.ClientSecret),
		raw:     cfg.Raw,
	}
}

func (p *AmadeusProvider) Name() string {
	return amadeusName
}

func (p *AmadeusProvider) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v2/shopping/flight-offers", nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = p.buildQuery(query).Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: amadeusName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: amadeusName, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.translateError(resp.StatusCode, body)
	}

	var native amadeusResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, &ResponseFormatError{Provider: amadeusName, Err: err}
	}

	if p.raw != nil {
		p.raw.StoreRaw(amadeusName+":raw:"+strings.ToUpper(query.Origin)+":"+strings.ToUpper(query.Destination), body)
	}

	return p.normalize(native, query), nil
}

func (p *AmadeusProvider) buildQuery(query models.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("originLocationCode", strings.ToUpper(query.Origin))
	v.Set("destinationLocationCode", strings.ToUpper(query.Destination))
	v.Set("departureDate", query.DepartureDate)
	if query.ReturnDate != "" {
		v.Set("returnDate", query.ReturnDate)
	}
	v.Set("adults", strconv.Itoa(query.Adults))
	if query.Children > 0 {
		v.Set("children", strconv.Itoa(query.Children))
	}
	if query.Infants > 0 {
		v.Set("infants", strconv.Itoa(query.Infants))
	}
	v.Set("travelClass", amadeusCabinClass(query.CabinClass))
	v.Set("currencyCode", strings.ToUpper(query.Currency))
	if query.Filters != nil && query.Filters.NonStop {
		v.Set("nonStop", "true")
	}
	return v
}

func (p *AmadeusProvider) translateError(status int, body []byte) error {
	var envelope amadeusErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return &AuthenticationError{Provider: amadeusName, Detail: first.Detail}
		}
		return &APIError{Provider: amadeusName, StatusCode: status, Title: first.Title, Detail: first.Detail}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthenticationError{Provider: amadeusName, Detail: http.StatusText(status)}
	case http.StatusNotFound:
		return &ResourceNotFoundError{Provider: amadeusName, Resource: "flight-offers"}
	default:
		return &APIError{Provider: amadeusName, StatusCode: status, Title: http.StatusText(status)}
	}
}

func (p *AmadeusProvider) normalize(native amadeusResponse, query models.SearchQuery) *models.SearchResponse {
	offers := make([]models.Offer, 0, len(native.Data))
	for _, n := range native.Data {
		offers = append(offers, p.normalizeOffer(n, native.Dictionaries))
	}

	currency := strings.ToUpper(query.Currency)
	if len(offers) > 0 && offers[0].Price.Currency != "" {
		currency = offers[0].Price.Currency
	}

	return &models.SearchResponse{
		Currency: currency,
		Total:    len(offers),
		Offers:   offers,
	}
}

func (p *AmadeusProvider) normalizeOffer(n amadeusOffer, dict amadeusDictionaries) models.Offer {
	amount, _ := strconv.ParseFloat(n.Price.Total, 64)

	cabin, baggage, conditions := amadeusFareInfo(n)

	itineraries := make([]models.Itinerary, 0, len(n.Itineraries))
	for i, it := range n.Itineraries {
		direction := models.DirectionOutbound
		if i == 1 {
			direction = models.DirectionReturn
		}

		segments := make([]models.Segment, 0, len(it.Segments))
		for _, s := range it.Segments {
			operating := s.Operating.CarrierCode
			if operating == "" {
				operating = s.Carrier
			}
			segments = append(segments, models.Segment{
				Departure:        amadeusPoint(s.Departure),
				Arrival:          amadeusPoint(s.Arrival),
				DurationMinutes:  parseISODuration(s.Duration),
				MarketingAirline: models.Airline{Code: s.Carrier, Name: dict.Carriers[s.Carrier]},
				OperatingAirline: models.Airline{Code: operating, Name: dict.Carriers[operating]},
				FlightNumber:     s.Carrier + s.Number,
				Aircraft:         dict.Aircraft[s.Aircraft.Code],
				CabinClass:       cabin,
			})
		}

		itineraries = append(itineraries, models.Itinerary{
			Direction:       direction,
			DurationMinutes: parseISODuration(it.Duration),
			Stops:           maxInt(len(it.Segments)-1, 0),
			Segments:        segments,
		})
	}

	id := n.ID
	if id == "" {
		id = uuid.NewString()
	}

	validating := ""
	if len(n.ValidatingAirlineCodes) > 0 {
		validating = n.ValidatingAirlineCodes[0]
	}

	return models.Offer{
		ID:                amadeusName + "-" + id,
		Provider:          amadeusName,
		Price:             models.Price{Amount: amount, Currency: n.Price.Currency, Formatted: currency.Format(n.Price.Currency, amount)},
		Itineraries:       itineraries,
		Baggage:           baggage,
		Refundable:        n.PricingOptions.Refundable,
		AvailableSeats:    n.NumberOfBookableSeats,
		ValidatingCarrier: validating,
		FareConditions:    conditions,
		LastTicketingDate: n.LastTicketingDate,
	}
}

func amadeusFareInfo(n amadeusOffer) (cabin string, baggage models.Baggage, conditions []string) {
	baggage = models.Baggage{CabinKg: 7, CheckedKg: 23}
	conditions = defaultFareConditions

	if len(n.TravelerPricings) == 0 || len(n.TravelerPricings[0].FareDetailsBySegment) == 0 {
		return cabin, baggage, conditions
	}

	detail := n.TravelerPricings[0].FareDetailsBySegment[0]
	cabin = strings.ToLower(detail.Cabin)
	if detail.IncludedCheckedBags.Weight > 0 && strings.EqualFold(detail.IncludedCheckedBags.WeightUnit, "KG") {
		baggage.CheckedKg = detail.IncludedCheckedBags.Weight
	}
	if len(detail.AmenitiesProvided) > 0 {
		parsed := make([]string, 0, len(detail.AmenitiesProvided))
		for _, a := range detail.AmenitiesProvided {
			if a.Description != "" {
				parsed = append(parsed, a.Description)
			}
		}
		if len(parsed) > 0 {
			conditions = parsed
		}
	}
	return cabin, baggage, conditions
}

func amadeusPoint(e amadeusEndpoint) models.SegmentPoint {
	t, _ := time.Parse(amadeusTimeLayout, e.At)
	return models.SegmentPoint{Airport: e.IATACode, Time: t}
}

func amadeusCabinClass(cabin string) string {
	switch strings.ToLower(cabin) {
	case "premium_economy", "premium economy":
		return "PREMIUM_ECONOMY"
	case "business":
		return "BUSINESS"
	case "first":
		return "FIRST"
	default:
		return "ECONOMY"
	}
}

// parseISODuration converts an ISO 8601 duration such as "PT5H30M" to
// minutes. Unsupported shapes yield 0.
func parseISODuration(s string) int {
	s = strings.TrimPrefix(strings.ToUpper(s), "PT")
	minutes := 0
	num := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
		case c == 'H':
			minutes += num * 60
			num = 0
		case c == 'M':
			minutes += num
			num = 0
		default:
			num = 0
		}
	}
	return minutes
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
